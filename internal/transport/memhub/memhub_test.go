package memhub

import (
	"encoding/json"
	"testing"
	"time"

	"farmgrid.app/internal/transport"
)

func recvEvent(t *testing.T, r transport.Room) transport.Event {
	t.Helper()
	select {
	case ev, ok := <-r.Events():
		if !ok {
			t.Fatalf("events channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event within a second")
	}
	return transport.Event{}
}

func drainPresence(t *testing.T, r transport.Room, wantMembers int) transport.Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case ev, ok := <-r.Events():
			if !ok {
				t.Fatalf("events channel closed")
			}
			if ev.Kind == transport.EventPresence && len(ev.Members) == wantMembers {
				return ev
			}
		case <-deadline:
			t.Fatalf("no presence snapshot with %d members", wantMembers)
		}
	}
}

func TestJoinDeliversPresenceSnapshot(t *testing.T) {
	h := New()
	defer h.Close()

	a, err := h.Join("farm:1", "alice", false)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	ev := recvEvent(t, a)
	if ev.Kind != transport.EventPresence || len(ev.Members) != 1 || ev.Members[0].Key != "alice" {
		t.Fatalf("first snapshot = %+v", ev)
	}

	b, _ := h.Join("farm:1", "bob", false)
	drainPresence(t, a, 2)
	drainPresence(t, b, 2)
}

func TestBroadcastSkipsSelfUnlessRequested(t *testing.T) {
	h := New()
	defer h.Close()

	a, _ := h.Join("farm:1", "alice", false)
	b, _ := h.Join("farm:1", "bob", false)
	drainPresence(t, a, 2)
	drainPresence(t, b, 2)

	if err := a.Broadcast("plot_update", map[string]int{"plot_index": 9}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	ev := recvEvent(t, b)
	if ev.Kind != transport.EventBroadcast || ev.Event != "plot_update" || ev.From != "alice" {
		t.Fatalf("event = %+v", ev)
	}
	var payload map[string]int
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload["plot_index"] != 9 {
		t.Fatalf("payload = %s", ev.Payload)
	}

	// Alice asked for no self-echo.
	select {
	case got := <-a.Events():
		if got.Kind == transport.EventBroadcast {
			t.Fatalf("self echo without self flag: %+v", got)
		}
	case <-time.After(50 * time.Millisecond):
	}

	// Session topics echo back to the sender.
	s, _ := h.Join("session:alice", "alice", true)
	drainPresence(t, s, 1)
	if err := s.Broadcast("new_login", map[string]string{"session_id": "tok"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	ev = recvEvent(t, s)
	if ev.Kind != transport.EventBroadcast || ev.Event != "new_login" {
		t.Fatalf("self event = %+v", ev)
	}
}

func TestTrackUpdatesSnapshotState(t *testing.T) {
	h := New()
	defer h.Close()

	a, _ := h.Join("farm:1", "alice", false)
	b, _ := h.Join("farm:1", "bob", false)
	drainPresence(t, a, 2)
	drainPresence(t, b, 2)

	if err := a.Track(map[string]string{"anim": "walk"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	ev := drainPresence(t, b, 2)
	for _, m := range ev.Members {
		if m.Key != "alice" {
			continue
		}
		var st map[string]string
		if err := json.Unmarshal(m.State, &st); err != nil || st["anim"] != "walk" {
			t.Fatalf("state = %s", m.State)
		}
		return
	}
	t.Fatalf("alice missing from snapshot: %+v", ev.Members)
}

func TestLeaveShrinksRosterAndClosesEvents(t *testing.T) {
	h := New()
	defer h.Close()

	a, _ := h.Join("farm:1", "alice", false)
	b, _ := h.Join("farm:1", "bob", false)
	drainPresence(t, a, 2)
	drainPresence(t, b, 2)

	if err := a.Leave(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	ev := drainPresence(t, b, 1)
	if ev.Members[0].Key != "bob" {
		t.Fatalf("snapshot after leave = %+v", ev.Members)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-a.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("events channel not closed after leave")
		}
	}
}
