// Package client is the game-facing facade: it owns the local world, keeps
// it durable through the sync engine, and mirrors multiplayer state through
// the room transport. One Client is one signed-in session.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"

	"farmgrid.app/internal/persistence/snapshot"
	"farmgrid.app/internal/persistence/store"
	"farmgrid.app/internal/presence"
	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/sim/catalogs"
	"farmgrid.app/internal/sim/tuning"
	"farmgrid.app/internal/sim/world"
	"farmgrid.app/internal/syncer"
	"farmgrid.app/internal/transport"
)

type Options struct {
	Tuning  tuning.Tuning
	Catalog *catalogs.Catalog
	Store   store.Store
	Bus     transport.Bus
	Logger  *log.Logger
	// Journal receives one record per finished sync command; nil disables.
	Journal syncer.Journal
	// Seed overrides the random worldgen seed for new accounts. Zero means
	// draw one.
	Seed int64
	// OnResync fires after a failed critical sequence replaced local state
	// with the authoritative store copy.
	OnResync func()
	// OnSessionLocked fires once when a duplicate login forces this session
	// into logout-only mode.
	OnSessionLocked func()
}

type Client struct {
	tun     tuning.Tuning
	cat     *catalogs.Catalog
	st      store.Store
	bus     transport.Bus
	log     *log.Logger
	journal syncer.Journal

	accountID string
	name      string
	avatar    string
	seed      int64

	onResync func()
	onLocked func()

	locked atomic.Bool

	mu        sync.Mutex
	world     *world.World
	visiting  string // owner id of the farm we are on; "" at home
	visitFarm *world.World

	engine  *syncer.Engine
	monitor *presence.SessionMonitor

	roster   *presence.Roster
	room     transport.Room
	roomDone chan struct{}
}

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Client{
		tun:      opts.Tuning,
		cat:      opts.Catalog,
		st:       opts.Store,
		bus:      opts.Bus,
		log:      opts.Logger,
		journal:  opts.Journal,
		seed:     opts.Seed,
		onResync: opts.OnResync,
		onLocked: opts.OnSessionLocked,
	}
}

// Login loads the account's farm, creating a fresh one for first-time
// players, then starts the sync engine, session arbiter and home room.
func (c *Client) Login(ctx context.Context, accountID, name, avatar string) error {
	c.accountID = accountID
	c.name = name
	c.avatar = avatar

	if err := c.loadOrCreate(ctx); err != nil {
		return err
	}

	c.engine = syncer.New(accountID, c.st, syncer.Options{
		Debounce:   c.tun.AutosaveDuration(),
		Logger:     c.log,
		Journal:    c.journal,
		OnRollback: c.applyReload,
	})

	mon, err := presence.StartSessionMonitor(c.bus, accountID, c.log, c.lockSession)
	if err != nil {
		c.engine.Close()
		return err
	}
	c.monitor = mon

	if err := c.enterRoom(accountID); err != nil {
		mon.Stop()
		c.engine.Close()
		return err
	}
	c.log.Printf("[client] login account=%s day=%d", accountID, c.world.Stats.Day)
	return nil
}

func (c *Client) loadOrCreate(ctx context.Context) error {
	farm, err := c.st.LoadFarm(ctx, c.accountID)
	switch {
	case err == nil:
		grid, gerr := farm.Grid()
		if gerr != nil {
			return gerr
		}
		inv, ierr := c.st.LoadInventory(ctx, c.accountID)
		if ierr != nil {
			return ierr
		}
		stats := farm.WorldStats()
		if prof, perr := c.st.LoadProfile(ctx, c.accountID); perr == nil {
			stats = prof.Stats
		}
		if farm.CatalogDigest != "" && farm.CatalogDigest != c.cat.Digest {
			c.log.Printf("[client] catalog digest changed since last save account=%s", c.accountID)
		}
		c.seed = farm.Seed
		c.mu.Lock()
		c.world = world.Restore(grid, stats, inv, c.tun, c.cat, farm.Seed)
		c.mu.Unlock()
		return nil

	case errors.Is(err, store.ErrNotFound):
		if c.seed == 0 {
			c.seed = rand.Int63()
		}
		c.mu.Lock()
		c.world = world.New(c.seed, c.tun, c.cat)
		w := c.world
		c.mu.Unlock()

		// Persist the newborn farm immediately so a crash before the first
		// action does not regenerate a different map.
		snap := snapshot.Capture(c.accountID, c.seed, w, c.cat.Digest)
		if err := c.st.SaveFarm(ctx, c.accountID, snap); err != nil {
			return err
		}
		if err := c.st.SaveInventory(ctx, c.accountID, w.Inv); err != nil {
			return err
		}
		return c.st.SaveProfile(ctx, c.profile(w))

	default:
		return err
	}
}

func (c *Client) profile(w *world.World) store.Profile {
	return store.Profile{
		AccountID: c.accountID,
		Name:      c.name,
		Avatar:    c.avatar,
		Stats:     w.Stats,
	}
}

func (c *Client) lockSession() {
	c.locked.Store(true)
	// The newer session owns the account now; a pending autosave from this
	// one must not overwrite its writes.
	if c.engine != nil {
		c.engine.DiscardAutosave()
	}
	if c.onLocked != nil {
		c.onLocked()
	}
}

// Locked reports whether a duplicate login elsewhere forced this session
// into logout-only mode.
func (c *Client) Locked() bool { return c.locked.Load() }

func (c *Client) applyReload(r syncer.Reloaded) {
	grid, err := r.Farm.Grid()
	if err != nil {
		c.log.Printf("[client] resync: bad reloaded grid: %v", err)
		return
	}
	c.mu.Lock()
	c.world = world.Restore(grid, r.Profile.Stats, r.Inv, c.tun, c.cat, r.Farm.Seed)
	c.mu.Unlock()
	c.log.Printf("[client] resynced to authoritative state account=%s", c.accountID)
	if c.onResync != nil {
		c.onResync()
	}
}

// enterRoom joins a farm room and starts the event pump. Callers hold no
// locks.
func (c *Client) enterRoom(ownerID string) error {
	room, err := c.bus.Join("farm:"+ownerID, c.accountID, false)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.room = room
	c.roster = presence.NewRoster(c.accountID)
	done := make(chan struct{})
	c.roomDone = done
	c.mu.Unlock()

	spawn := c.currentGrid().Center()
	_ = room.Track(protocol.PlayerMove{
		ID:     c.accountID,
		Name:   c.name,
		Avatar: c.avatar,
		X:      float64(spawn.X),
		Z:      float64(spawn.Y),
		Facing: "down",
		Anim:   "idle",
	})

	go c.pumpRoom(room, done)
	return nil
}

func (c *Client) leaveRoom() {
	c.mu.Lock()
	room := c.room
	done := c.roomDone
	c.room = nil
	c.roomDone = nil
	c.mu.Unlock()
	if room == nil {
		return
	}
	close(done)
	_ = room.Leave()
}

// pumpRoom folds room traffic into the roster and grid until the room is
// torn down. Stale pumps stop at the done channel, so a room joined later
// never receives events meant for an earlier one.
func (c *Client) pumpRoom(room transport.Room, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-room.Events():
			if !ok {
				return
			}
			c.handleRoomEvent(ev)
		}
	}
}

func (c *Client) handleRoomEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventPresence:
		c.mu.Lock()
		roster := c.roster
		c.mu.Unlock()
		if roster != nil {
			roster.ApplySnapshot(ev.Members)
		}
	case transport.EventBroadcast:
		switch ev.Event {
		case protocol.EventPlotUpdate:
			var up protocol.PlotUpdate
			if err := json.Unmarshal(ev.Payload, &up); err != nil {
				return
			}
			c.mergePlot(up)
		case protocol.EventPlayerMove:
			var mv protocol.PlayerMove
			if err := json.Unmarshal(ev.Payload, &mv); err != nil {
				return
			}
			c.mu.Lock()
			roster := c.roster
			c.mu.Unlock()
			if roster != nil {
				roster.ApplyMove(mv)
			}
		}
	}
}

// mergePlot applies a remote cell update by index, last writer wins.
func (c *Client) mergePlot(up protocol.PlotUpdate) {
	terrain, err := world.ParseTerrain(up.Terrain)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.currentGridLocked()
	if up.PlotIndex < 0 || up.PlotIndex >= len(g.Cells) {
		return
	}
	g.Cells[up.PlotIndex] = world.Cell{
		Terrain:     terrain,
		Status:      world.CropStatus(up.Status),
		SeedID:      up.SeedID,
		DaysGrowing: up.DaysGrowing,
		Watered:     up.Watered,
		Variant:     uint8(up.Variant),
	}
}

func (c *Client) currentGrid() *world.Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentGridLocked()
}

func (c *Client) currentGridLocked() *world.Grid {
	if c.visiting != "" {
		return c.visitFarm.Grid
	}
	return c.world.Grid
}

func (c *Client) guardMutate() error {
	if c.locked.Load() {
		return &world.RuleError{Code: protocol.ErrSessionLocked, Message: "signed in elsewhere"}
	}
	if c.visitingID() != "" {
		return &world.RuleError{Code: protocol.ErrVisiting, Message: "read-only while visiting"}
	}
	return nil
}

func (c *Client) visitingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visiting
}
