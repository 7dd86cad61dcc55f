package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"farmgrid.app/internal/persistence/snapshot"
)

// CachedStore keeps recently loaded farm snapshots in an LRU so hopping
// between friends' farms does not re-decode the same blobs. Writes through
// to the inner store and refreshes the cached entry.
type CachedStore struct {
	Store
	farms *lru.Cache[string, snapshot.FarmV1]
}

func NewCached(inner Store, size int) (*CachedStore, error) {
	c, err := lru.New[string, snapshot.FarmV1](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{Store: inner, farms: c}, nil
}

func (c *CachedStore) LoadFarm(ctx context.Context, accountID string) (snapshot.FarmV1, error) {
	if snap, ok := c.farms.Get(accountID); ok {
		return snap, nil
	}
	snap, err := c.Store.LoadFarm(ctx, accountID)
	if err != nil {
		return snapshot.FarmV1{}, err
	}
	c.farms.Add(accountID, snap)
	return snap, nil
}

func (c *CachedStore) SaveFarm(ctx context.Context, accountID string, snap snapshot.FarmV1) error {
	if err := c.Store.SaveFarm(ctx, accountID, snap); err != nil {
		return err
	}
	c.farms.Add(accountID, snap)
	return nil
}

func (c *CachedStore) Reset(ctx context.Context, accountID string) error {
	c.farms.Remove(accountID)
	return c.Store.Reset(ctx, accountID)
}
