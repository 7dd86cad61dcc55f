// Package syncer turns in-memory farm mutations into durable store writes.
// Inventory-moving actions run a strict farm, inventory, stats sequence with
// rollback-by-reload on failure; grid-only changes ride a debounce timer.
// One worker goroutine owns the queue, so two critical sequences for the
// same account can never interleave.
package syncer

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"farmgrid.app/internal/persistence/snapshot"
	"farmgrid.app/internal/persistence/store"
	"farmgrid.app/internal/sim/world"
)

// Reloaded is the authoritative state pulled back from the store after a
// failed critical sequence. The owner replaces its local state with it.
type Reloaded struct {
	Farm    snapshot.FarmV1
	Inv     world.Inventory
	Profile store.Profile
}

type Journal interface {
	Write(v any) error
}

type Options struct {
	// Debounce is the quiet period before a dirty grid autosaves.
	Debounce time.Duration
	Logger   *log.Logger
	Journal  Journal
	// OnRollback delivers reloaded authoritative state after a failed
	// critical sequence. Called from the worker goroutine.
	OnRollback func(Reloaded)
}

type Engine struct {
	accountID string
	st        store.Store
	logger    *log.Logger
	journal   Journal
	debounce  time.Duration
	rollback  func(Reloaded)

	cmds   chan *Command
	nextID atomic.Uint64
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.Mutex // orders enqueue sends against Close
	closed bool
}

func New(accountID string, st store.Store, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	e := &Engine{
		accountID: accountID,
		st:        st,
		logger:    opts.Logger,
		journal:   opts.Journal,
		debounce:  opts.Debounce,
		rollback:  opts.OnRollback,
		cmds:      make(chan *Command, 64),
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.loop()
	}()
	return e
}

// Close drains the queue, writes any pending autosave, and stops the worker.
func (e *Engine) Close() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		close(e.cmds)
		e.mu.Unlock()
		e.wg.Wait()
	})
}

// CommitCritical queues the full ordered sequence for the given state. It
// supersedes any pending autosave; the snapshot here is newer.
func (e *Engine) CommitCritical(snap snapshot.FarmV1, inv world.Inventory, p store.Profile) *Command {
	cmd := newCommand(e.nextID.Add(1), KindCritical)
	cmd.snap = &snap
	cmd.inv = inv.Clone()
	cmd.profile = p
	return e.enqueue(cmd)
}

// MarkDirty schedules a grid-only autosave. Repeated calls within the
// debounce window coalesce; only the latest snapshot is written.
func (e *Engine) MarkDirty(snap snapshot.FarmV1) {
	cmd := newCommand(e.nextID.Add(1), KindAutosave)
	cmd.snap = &snap
	e.enqueue(cmd)
}

// PushStats persists stats without ordering guarantees. Failures are logged
// and not retried; the next push supersedes.
func (e *Engine) PushStats(p store.Profile) {
	cmd := newCommand(e.nextID.Add(1), KindStats)
	cmd.profile = p
	e.enqueue(cmd)
}

// DiscardAutosave drops any pending dirty snapshot without writing it. Call
// it before replacing local state wholesale (farm reset) and when a session
// lock means the snapshot must not win over newer remote data.
func (e *Engine) DiscardAutosave() *Command {
	cmd := newCommand(e.nextID.Add(1), KindDiscard)
	return e.enqueue(cmd)
}

// Flush is the visibility-loss hook: persist stats and any dirty grid now,
// best effort. Wait on the returned command to bound the teardown window.
func (e *Engine) Flush(p store.Profile) *Command {
	cmd := newCommand(e.nextID.Add(1), KindFlush)
	cmd.profile = p
	return e.enqueue(cmd)
}

// enqueue holds the mutex across the send so a command racing Close settles
// as rolled back instead of panicking on the closed channel. The worker keeps
// draining until the channel closes, so the send cannot deadlock.
func (e *Engine) enqueue(cmd *Command) *Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		cmd.settle(StatusRolledBack, context.Canceled)
		return cmd
	}
	e.cmds <- cmd
	return cmd
}

func (e *Engine) loop() {
	timer := time.NewTimer(e.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	timerSet := false
	var dirty *snapshot.FarmV1

	stopTimer := func() {
		if timerSet && !timer.Stop() {
			<-timer.C
		}
		timerSet = false
	}

	for {
		select {
		case cmd, ok := <-e.cmds:
			if !ok {
				stopTimer()
				if dirty != nil {
					e.saveGrid(*dirty, "final autosave")
				}
				return
			}
			switch cmd.Kind {
			case KindCritical:
				// The sequence carries a newer grid; a queued autosave
				// would only write stale state after it.
				stopTimer()
				dirty = nil
				e.runCritical(cmd)
			case KindAutosave:
				dirty = cmd.snap
				stopTimer()
				timer.Reset(e.debounce)
				timerSet = true
				cmd.settle(StatusCommitted, nil)
			case KindDiscard:
				stopTimer()
				dirty = nil
				cmd.settle(StatusCommitted, nil)
			case KindStats:
				err := e.st.SaveProfile(context.Background(), cmd.profile)
				if err != nil {
					e.logger.Printf("[syncer] stats push failed account=%s: %v", e.accountID, err)
					cmd.settle(StatusRolledBack, err)
				} else {
					cmd.settle(StatusCommitted, nil)
				}
				e.journalEntry(cmd, err)
			case KindFlush:
				stopTimer()
				var err error
				if dirty != nil {
					err = e.saveGrid(*dirty, "flush")
					dirty = nil
				}
				if perr := e.st.SaveProfile(context.Background(), cmd.profile); perr != nil {
					e.logger.Printf("[syncer] flush stats failed account=%s: %v", e.accountID, perr)
					if err == nil {
						err = perr
					}
				}
				if err != nil {
					cmd.settle(StatusRolledBack, err)
				} else {
					cmd.settle(StatusCommitted, nil)
				}
				e.journalEntry(cmd, err)
			}

		case <-timer.C:
			timerSet = false
			if dirty != nil {
				e.saveGrid(*dirty, "autosave")
				dirty = nil
			}
		}
	}
}

// runCritical walks the ordered sequence. A failure at any step aborts the
// rest, reloads authoritative state, and hands it to the rollback hook.
func (e *Engine) runCritical(cmd *Command) {
	ctx := context.Background()

	steps := []struct {
		name string
		run  func() error
	}{
		{"grid", func() error { return e.st.SaveFarm(ctx, e.accountID, *cmd.snap) }},
		{"inventory", func() error { return e.st.SaveInventory(ctx, e.accountID, cmd.inv) }},
		{"stats", func() error { return e.st.SaveProfile(ctx, cmd.profile) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			e.logger.Printf("[syncer] critical step %s failed account=%s cmd=%d: %v",
				step.name, e.accountID, cmd.ID, err)
			cmd.settle(StatusRolledBack, err)
			e.journalEntry(cmd, err)
			e.reload()
			return
		}
	}
	cmd.settle(StatusCommitted, nil)
	e.journalEntry(cmd, nil)
}

func (e *Engine) saveGrid(snap snapshot.FarmV1, what string) error {
	err := e.st.SaveFarm(context.Background(), e.accountID, snap)
	if err != nil {
		// Background saves are superseded by the next cycle, never retried.
		e.logger.Printf("[syncer] %s failed account=%s: %v", what, e.accountID, err)
	}
	return err
}

func (e *Engine) reload() {
	if e.rollback == nil {
		return
	}
	ctx := context.Background()
	farm, err := e.st.LoadFarm(ctx, e.accountID)
	if err != nil {
		e.logger.Printf("[syncer] rollback reload farm failed account=%s: %v", e.accountID, err)
		return
	}
	inv, err := e.st.LoadInventory(ctx, e.accountID)
	if err != nil {
		e.logger.Printf("[syncer] rollback reload inventory failed account=%s: %v", e.accountID, err)
		return
	}
	prof, err := e.st.LoadProfile(ctx, e.accountID)
	if err != nil && err != store.ErrNotFound {
		e.logger.Printf("[syncer] rollback reload profile failed account=%s: %v", e.accountID, err)
		return
	}
	e.rollback(Reloaded{Farm: farm, Inv: inv, Profile: prof})
}

type journalRecord struct {
	TS      string `json:"ts"`
	Account string `json:"account"`
	Cmd     uint64 `json:"cmd"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func (e *Engine) journalEntry(cmd *Command, err error) {
	if e.journal == nil {
		return
	}
	rec := journalRecord{
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Account: e.accountID,
		Cmd:     cmd.ID,
		Kind:    cmd.Kind.String(),
		Status:  cmd.Status().String(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if werr := e.journal.Write(rec); werr != nil {
		e.logger.Printf("[syncer] journal write failed: %v", werr)
	}
}
