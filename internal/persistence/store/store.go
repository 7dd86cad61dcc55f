// Package store persists account state: profile stats, inventory, the farm
// snapshot blob, and the friend list. The sync engine writes through it in a
// fixed order (farm, inventory, profile) so a crash mid-sequence leaves the
// grid persisted before the cheaper tables.
package store

import (
	"context"
	"errors"
	"time"

	"farmgrid.app/internal/persistence/snapshot"
	"farmgrid.app/internal/sim/world"
)

var ErrNotFound = errors.New("store: not found")

type Profile struct {
	AccountID string
	Name      string
	Avatar    string
	Stats     world.Stats
	UpdatedAt time.Time
}

type Friend struct {
	AccountID string
	Name      string
	Avatar    string
}

type Store interface {
	LoadProfile(ctx context.Context, accountID string) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error

	LoadInventory(ctx context.Context, accountID string) (world.Inventory, error)
	SaveInventory(ctx context.Context, accountID string, inv world.Inventory) error

	LoadFarm(ctx context.Context, accountID string) (snapshot.FarmV1, error)
	SaveFarm(ctx context.Context, accountID string, snap snapshot.FarmV1) error

	Friends(ctx context.Context, accountID string) ([]Friend, error)
	AddFriend(ctx context.Context, accountID string, f Friend) error
	RemoveFriend(ctx context.Context, accountID, friendID string) error

	// Reset wipes everything the account owns. The caller re-seeds a fresh
	// profile afterwards.
	Reset(ctx context.Context, accountID string) error

	Close() error
}
