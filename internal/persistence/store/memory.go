package store

import (
	"context"
	"sync"
	"time"

	"farmgrid.app/internal/persistence/snapshot"
	"farmgrid.app/internal/sim/world"
)

// MemoryStore is an in-process Store for tests and the demo client. It keeps
// the same not-found semantics as the sqlite implementation.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
	invs     map[string]world.Inventory
	farms    map[string][]byte
	friends  map[string][]Friend
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		profiles: map[string]Profile{},
		invs:     map[string]world.Inventory{},
		farms:    map[string][]byte{},
		friends:  map[string][]Friend{},
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) LoadProfile(_ context.Context, accountID string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[accountID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) SaveProfile(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = time.Now()
	m.profiles[p.AccountID] = p
	return nil
}

func (m *MemoryStore) LoadInventory(_ context.Context, accountID string) (world.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invs[accountID]
	if !ok {
		return world.Inventory{}, nil
	}
	return inv.Clone(), nil
}

func (m *MemoryStore) SaveInventory(_ context.Context, accountID string, inv world.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invs[accountID] = inv.Clone()
	return nil
}

func (m *MemoryStore) LoadFarm(_ context.Context, accountID string) (snapshot.FarmV1, error) {
	m.mu.Lock()
	blob, ok := m.farms[accountID]
	m.mu.Unlock()
	if !ok {
		return snapshot.FarmV1{}, ErrNotFound
	}
	return snapshot.Unmarshal(blob)
}

func (m *MemoryStore) SaveFarm(_ context.Context, accountID string, snap snapshot.FarmV1) error {
	blob, err := snapshot.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.farms[accountID] = blob
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Friends(_ context.Context, accountID string) ([]Friend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Friend(nil), m.friends[accountID]...), nil
}

func (m *MemoryStore) AddFriend(_ context.Context, accountID string, f Friend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, got := range m.friends[accountID] {
		if got.AccountID == f.AccountID {
			m.friends[accountID][i] = f
			return nil
		}
	}
	m.friends[accountID] = append(m.friends[accountID], f)
	return nil
}

func (m *MemoryStore) RemoveFriend(_ context.Context, accountID, friendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.friends[accountID]
	for i, got := range list {
		if got.AccountID == friendID {
			m.friends[accountID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, accountID)
	delete(m.invs, accountID)
	delete(m.farms, accountID)
	return nil
}
