package syncer

import (
	"context"
	"sync/atomic"

	"farmgrid.app/internal/persistence/snapshot"
	"farmgrid.app/internal/persistence/store"
	"farmgrid.app/internal/sim/world"
)

type Kind int

const (
	// KindCritical is the ordered farm, inventory, stats sequence. Anything
	// that moved inventory counts goes through it.
	KindCritical Kind = iota + 1
	// KindAutosave is a coalesced grid-only save behind the debounce timer.
	KindAutosave
	// KindStats is a fire-and-forget stats push; failures are logged only.
	KindStats
	// KindFlush is the tab-hide hook: best-effort stats plus any dirty grid.
	KindFlush
	// KindDiscard drops a pending autosave without writing it. Queued when
	// local state is about to be replaced or must not win over the store.
	KindDiscard
)

func (k Kind) String() string {
	switch k {
	case KindCritical:
		return "critical"
	case KindAutosave:
		return "autosave"
	case KindStats:
		return "stats"
	case KindFlush:
		return "flush"
	case KindDiscard:
		return "discard"
	}
	return "unknown"
}

type Status int32

const (
	StatusPending Status = iota
	StatusCommitted
	StatusRolledBack
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCommitted:
		return "committed"
	case StatusRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Command is one unit of work queued to the engine. The worker goroutine
// moves it from pending to committed or rolled_back; Wait blocks until then.
type Command struct {
	ID   uint64
	Kind Kind

	snap    *snapshot.FarmV1
	inv     world.Inventory
	profile store.Profile

	status atomic.Int32
	err    error
	done   chan struct{}
}

func newCommand(id uint64, kind Kind) *Command {
	return &Command{ID: id, Kind: kind, done: make(chan struct{})}
}

func (c *Command) Status() Status { return Status(c.status.Load()) }

// Wait blocks until the command settles and returns its outcome. After a
// rolled_back command the returned error is the step failure that caused it.
func (c *Command) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Command) settle(status Status, err error) {
	c.err = err
	c.status.Store(int32(status))
	close(c.done)
}
