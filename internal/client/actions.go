package client

import (
	"context"
	"errors"
	"fmt"

	"farmgrid.app/internal/path"
	"farmgrid.app/internal/persistence/snapshot"
	"farmgrid.app/internal/persistence/store"
	"farmgrid.app/internal/presence"
	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/sim/catalogs"
	"farmgrid.app/internal/sim/world"
)

// FarmAction runs one plot action on the player's own farm. Actions that move
// items through the inventory commit through the critical save sequence and
// block until the store has them; energy-only actions mark the grid dirty and
// let the autosave debounce fold them together.
func (c *Client) FarmAction(act world.Action) (world.Result, error) {
	if err := c.guardMutate(); err != nil {
		return world.Result{}, err
	}
	c.mu.Lock()
	res, err := c.world.Apply(act)
	if err != nil {
		c.mu.Unlock()
		return world.Result{}, err
	}
	snap := snapshot.Capture(c.accountID, c.seed, c.world, c.cat.Digest)
	inv := c.world.Inv
	prof := c.profile(c.world)
	room := c.room
	c.mu.Unlock()

	if room != nil {
		_ = room.Broadcast(protocol.EventPlotUpdate, plotUpdateFor(res))
	}

	if len(res.InventoryDeltas) > 0 {
		cmd := c.engine.CommitCritical(snap, inv, prof)
		if err := cmd.Wait(context.Background()); err != nil {
			return res, err
		}
		return res, nil
	}
	c.engine.MarkDirty(snap)
	c.engine.PushStats(prof)
	return res, nil
}

func plotUpdateFor(res world.Result) protocol.PlotUpdate {
	return protocol.PlotUpdate{
		PlotIndex:   res.PlotIndex,
		Terrain:     res.Cell.Terrain.String(),
		Status:      string(res.Cell.Status),
		SeedID:      res.Cell.SeedID,
		DaysGrowing: res.Cell.DaysGrowing,
		Watered:     res.Cell.Watered,
		Variant:     int(res.Cell.Variant),
	}
}

// Sleep ends the day and commits the new one before returning. Sleeping is
// the natural save point, so the whole world goes through the critical
// sequence even though no items moved.
func (c *Client) Sleep() (world.DayReport, error) {
	if err := c.guardMutate(); err != nil {
		return world.DayReport{}, err
	}
	c.mu.Lock()
	report := c.world.AdvanceDay()
	snap := snapshot.Capture(c.accountID, c.seed, c.world, c.cat.Digest)
	inv := c.world.Inv
	prof := c.profile(c.world)
	c.mu.Unlock()

	cmd := c.engine.CommitCritical(snap, inv, prof)
	if err := cmd.Wait(context.Background()); err != nil {
		return report, err
	}
	c.log.Printf("[client] slept account=%s day=%d season=%s grown=%d withered=%d",
		c.accountID, report.Day, report.Season, len(report.GrownPlots), len(report.WitheredPlots))
	return report, nil
}

// Buy, Sell and UseItem all move coins or items, so they always commit
// through the critical sequence.
func (c *Client) Buy(itemID string, n int) error {
	return c.shopOp(func(w *world.World) error { return w.Buy(itemID, n) })
}

func (c *Client) Sell(itemID string, n int) error {
	return c.shopOp(func(w *world.World) error { return w.Sell(itemID, n) })
}

func (c *Client) UseItem(itemID string) error {
	return c.shopOp(func(w *world.World) error { return w.UseItem(itemID) })
}

func (c *Client) shopOp(op func(*world.World) error) error {
	if err := c.guardMutate(); err != nil {
		return err
	}
	c.mu.Lock()
	if err := op(c.world); err != nil {
		c.mu.Unlock()
		return err
	}
	snap := snapshot.Capture(c.accountID, c.seed, c.world, c.cat.Digest)
	inv := c.world.Inv
	prof := c.profile(c.world)
	c.mu.Unlock()
	return c.engine.CommitCritical(snap, inv, prof).Wait(context.Background())
}

// Move broadcasts the player's position and keeps the tracked presence state
// current so late joiners see it. Movement is never persisted.
func (c *Client) Move(x, z float64, facing, anim string) {
	c.mu.Lock()
	room := c.room
	c.mu.Unlock()
	if room == nil {
		return
	}
	mv := protocol.PlayerMove{
		ID:     c.accountID,
		Name:   c.name,
		Avatar: c.avatar,
		X:      x,
		Z:      z,
		Facing: facing,
		Anim:   anim,
	}
	_ = room.Broadcast(protocol.EventPlayerMove, mv)
	_ = room.Track(mv)
}

// Path finds a walk route on whichever farm the player is currently on.
func (c *Client) Path(from, to world.Point) []world.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return path.FindPath(c.currentGridLocked(), from, to)
}

// VisitFriend loads a read-only copy of a friend's farm and moves the
// session into their room. Mutating operations fail with E_VISITING until
// ReturnHome.
func (c *Client) VisitFriend(ctx context.Context, friendID string) error {
	if c.locked.Load() {
		return &world.RuleError{Code: protocol.ErrSessionLocked, Message: "signed in elsewhere"}
	}
	if friendID == c.accountID {
		return &world.RuleError{Code: protocol.ErrBadRequest, Message: "cannot visit yourself"}
	}
	farm, err := c.st.LoadFarm(ctx, friendID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &world.RuleError{Code: protocol.ErrInvalidTarget, Message: fmt.Sprintf("no farm for %s", friendID)}
		}
		return err
	}
	grid, err := farm.Grid()
	if err != nil {
		return err
	}
	inv, err := c.st.LoadInventory(ctx, friendID)
	if err != nil {
		return err
	}

	// Flush our own pending autosave before the room switch so the friend
	// room never carries a stale home grid.
	c.mu.Lock()
	prof := c.profile(c.world)
	c.mu.Unlock()
	if err := c.engine.Flush(prof).Wait(ctx); err != nil {
		c.log.Printf("[client] flush before visit: %v", err)
	}

	c.leaveRoom()
	c.mu.Lock()
	c.visiting = friendID
	c.visitFarm = world.Restore(grid, farm.WorldStats(), inv, c.tun, c.cat, farm.Seed)
	c.mu.Unlock()
	if err := c.enterRoom(friendID); err != nil {
		c.mu.Lock()
		c.visiting = ""
		c.visitFarm = nil
		c.mu.Unlock()
		if herr := c.enterRoom(c.accountID); herr != nil {
			c.log.Printf("[client] rejoin home after failed visit: %v", herr)
		}
		return err
	}
	c.log.Printf("[client] visiting account=%s farm=%s", c.accountID, friendID)
	return nil
}

// ReturnHome leaves the visited farm and rejoins the player's own room.
func (c *Client) ReturnHome() error {
	if c.visitingID() == "" {
		return nil
	}
	c.leaveRoom()
	c.mu.Lock()
	c.visiting = ""
	c.visitFarm = nil
	c.mu.Unlock()
	return c.enterRoom(c.accountID)
}

// Visiting reports the owner of the farm the player is on, or "" at home.
func (c *Client) Visiting() string { return c.visitingID() }

// SaveNow commits the full current state through the critical sequence,
// superseding any pending autosave.
func (c *Client) SaveNow(ctx context.Context) error {
	if err := c.guardMutate(); err != nil {
		return err
	}
	c.mu.Lock()
	snap := snapshot.Capture(c.accountID, c.seed, c.world, c.cat.Digest)
	inv := c.world.Inv
	prof := c.profile(c.world)
	c.mu.Unlock()
	return c.engine.CommitCritical(snap, inv, prof).Wait(ctx)
}

// Flush writes any pending dirty state immediately. Wire it to tab-hide and
// window-close hooks.
func (c *Client) Flush(ctx context.Context) error {
	if c.locked.Load() {
		return &world.RuleError{Code: protocol.ErrSessionLocked, Message: "signed in elsewhere"}
	}
	c.mu.Lock()
	prof := c.profile(c.world)
	c.mu.Unlock()
	return c.engine.Flush(prof).Wait(ctx)
}

// Logout saves and tears the session down. A session locked by a duplicate
// login skips the save: the newer session owns the account state now.
func (c *Client) Logout(ctx context.Context) error {
	var saveErr error
	if !c.locked.Load() {
		if c.visitingID() == "" {
			saveErr = c.SaveNow(ctx)
		}
	} else {
		c.log.Printf("[client] logout without save, session locked account=%s", c.accountID)
		if c.engine != nil {
			c.engine.DiscardAutosave()
		}
	}
	c.leaveRoom()
	if c.monitor != nil {
		c.monitor.Stop()
	}
	if c.engine != nil {
		c.engine.Close()
	}
	return saveErr
}

// Roster returns the other players currently in the room.
func (c *Client) Roster() []presence.Remote {
	c.mu.Lock()
	r := c.roster
	c.mu.Unlock()
	if r == nil {
		return nil
	}
	return r.Members()
}

// Snapshot returns a point-in-time copy of the player's own farm state.
func (c *Client) Snapshot() snapshot.FarmV1 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot.Capture(c.accountID, c.seed, c.world, c.cat.Digest)
}

// Stats returns the player's own stats, even while visiting.
func (c *Client) Stats() world.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.Stats
}

// Inventory returns a copy of the player's own inventory.
func (c *Client) Inventory() world.Inventory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.Inv.Clone()
}

// Grid exposes the grid the player is currently looking at. Callers on the
// render path read it between actions; it is not safe to retain across them.
func (c *Client) Grid() *world.Grid { return c.currentGrid() }

// Catalog is the item set this session plays with.
func (c *Client) Catalog() *catalogs.Catalog { return c.cat }

// Season of the player's own farm.
func (c *Client) Season() world.Season {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.Season()
}

// Friends proxies the friend list for the signed-in account.
func (c *Client) Friends(ctx context.Context) ([]store.Friend, error) {
	return c.st.Friends(ctx, c.accountID)
}

func (c *Client) AddFriend(ctx context.Context, f store.Friend) error {
	return c.st.AddFriend(ctx, c.accountID, f)
}

func (c *Client) RemoveFriend(ctx context.Context, friendID string) error {
	return c.st.RemoveFriend(ctx, c.accountID, friendID)
}

// ResetFarm wipes the account and regenerates a fresh farm with a new seed.
func (c *Client) ResetFarm(ctx context.Context) error {
	if err := c.guardMutate(); err != nil {
		return err
	}
	// A pending autosave still holds the old grid; if it fired after the
	// wipe it would resurrect the old world over the fresh one.
	if err := c.engine.DiscardAutosave().Wait(ctx); err != nil {
		return err
	}
	if err := c.st.Reset(ctx, c.accountID); err != nil {
		return err
	}
	c.seed = 0
	if err := c.loadOrCreate(ctx); err != nil {
		return err
	}
	c.log.Printf("[client] farm reset account=%s seed=%d", c.accountID, c.seed)
	return nil
}
