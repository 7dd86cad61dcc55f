package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"farmgrid.app/internal/persistence/snapshot"
	"farmgrid.app/internal/sim/world"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL keeps reads cheap while the sync engine writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			account_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			avatar TEXT NOT NULL,
			coins INTEGER NOT NULL,
			energy INTEGER NOT NULL,
			max_energy INTEGER NOT NULL,
			day INTEGER NOT NULL,
			exp INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS inventories (
			account_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (account_id, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS player_maps (
			account_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			snapshot BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS friendships (
			account_id TEXT NOT NULL,
			friend_id TEXT NOT NULL,
			name TEXT NOT NULL,
			avatar TEXT NOT NULL,
			PRIMARY KEY (account_id, friend_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_friend ON friendships(friend_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) LoadProfile(ctx context.Context, accountID string) (Profile, error) {
	var p Profile
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id, name, avatar, coins, energy, max_energy, day, exp, updated_at
		 FROM profiles WHERE account_id = ?`, accountID).
		Scan(&p.AccountID, &p.Name, &p.Avatar,
			&p.Stats.Coins, &p.Stats.Energy, &p.Stats.MaxEnergy, &p.Stats.Day, &p.Stats.Exp,
			&updated)
	if err == sql.ErrNoRows {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return p, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (account_id, name, avatar, coins, energy, max_energy, day, exp, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET
			name=excluded.name, avatar=excluded.avatar,
			coins=excluded.coins, energy=excluded.energy, max_energy=excluded.max_energy,
			day=excluded.day, exp=excluded.exp, updated_at=excluded.updated_at`,
		p.AccountID, p.Name, p.Avatar,
		p.Stats.Coins, p.Stats.Energy, p.Stats.MaxEnergy, p.Stats.Day, p.Stats.Exp,
		time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) LoadInventory(ctx context.Context, accountID string) (world.Inventory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, count FROM inventories WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inv := world.Inventory{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		if n > 0 {
			inv[id] = n
		}
	}
	return inv, rows.Err()
}

// SaveInventory replaces the whole inventory in one transaction. Entries are
// few (tens), so diffing is not worth the bookkeeping.
func (s *SQLiteStore) SaveInventory(ctx context.Context, accountID string, inv world.Inventory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM inventories WHERE account_id = ?`, accountID); err != nil {
		return err
	}
	for id, n := range inv {
		if n <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventories (account_id, item_id, count) VALUES (?, ?, ?)`,
			accountID, id, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadFarm(ctx context.Context, accountID string) (snapshot.FarmV1, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM player_maps WHERE account_id = ?`, accountID).Scan(&blob)
	if err == sql.ErrNoRows {
		return snapshot.FarmV1{}, ErrNotFound
	}
	if err != nil {
		return snapshot.FarmV1{}, err
	}
	return snapshot.Unmarshal(blob)
}

func (s *SQLiteStore) SaveFarm(ctx context.Context, accountID string, snap snapshot.FarmV1) error {
	blob, err := snapshot.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO player_maps (account_id, seed, snapshot, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET
			seed=excluded.seed, snapshot=excluded.snapshot, updated_at=excluded.updated_at`,
		accountID, snap.Seed, blob, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) Friends(ctx context.Context, accountID string) ([]Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT friend_id, name, avatar FROM friendships WHERE account_id = ? ORDER BY friend_id`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Friend
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.AccountID, &f.Name, &f.Avatar); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddFriend(ctx context.Context, accountID string, f Friend) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (account_id, friend_id, name, avatar) VALUES (?, ?, ?, ?)
		 ON CONFLICT(account_id, friend_id) DO UPDATE SET name=excluded.name, avatar=excluded.avatar`,
		accountID, f.AccountID, f.Name, f.Avatar)
	return err
}

func (s *SQLiteStore) RemoveFriend(ctx context.Context, accountID, friendID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE account_id = ? AND friend_id = ?`, accountID, friendID)
	return err
}

func (s *SQLiteStore) Reset(ctx context.Context, accountID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM player_maps WHERE account_id = ?`,
		`DELETE FROM inventories WHERE account_id = ?`,
		`DELETE FROM profiles WHERE account_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, accountID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
