// Package memhub is an in-process transport.Bus. It backs tests and the
// single-process demo mode; the wire client in transport/ws behaves the same
// way against a roomd relay.
package memhub

import (
	"encoding/json"
	"fmt"
	"sync"

	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/transport"
)

type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*room
	closed bool
}

type room struct {
	topic   string
	members map[*Member]struct{}
}

type Member struct {
	hub   *Hub
	room  *room
	key   string
	state json.RawMessage
	self  bool

	events chan transport.Event
	left   bool
}

func New() *Hub {
	return &Hub{rooms: map[string]*room{}}
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for _, r := range h.rooms {
		for m := range r.members {
			m.left = true
			close(m.events)
		}
	}
	h.rooms = map[string]*room{}
	return nil
}

type HubStats struct {
	Rooms   int
	Members int
}

func (h *Hub) Stats() HubStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := HubStats{Rooms: len(h.rooms)}
	for _, r := range h.rooms {
		s.Members += len(r.members)
	}
	return s
}

func (h *Hub) Join(topic, key string, self bool) (transport.Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, fmt.Errorf("memhub: closed")
	}
	r := h.rooms[topic]
	if r == nil {
		r = &room{topic: topic, members: map[*Member]struct{}{}}
		h.rooms[topic] = r
	}
	m := &Member{
		hub:    h,
		room:   r,
		key:    key,
		self:   self,
		events: make(chan transport.Event, 256),
	}
	r.members[m] = struct{}{}
	h.broadcastPresenceLocked(r)
	return m, nil
}

// snapshotLocked builds the membership roster. Order is unspecified;
// consumers index by member key.
func (h *Hub) snapshotLocked(r *room) []protocol.PresenceMember {
	out := make([]protocol.PresenceMember, 0, len(r.members))
	for m := range r.members {
		out = append(out, protocol.PresenceMember{Key: m.key, State: m.state})
	}
	return out
}

func (h *Hub) broadcastPresenceLocked(r *room) {
	snap := h.snapshotLocked(r)
	for m := range r.members {
		m.deliver(transport.Event{Kind: transport.EventPresence, Members: snap})
	}
}

// deliver never blocks; a slow consumer loses events and recovers from the
// next presence snapshot.
func (m *Member) deliver(ev transport.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *Member) Events() <-chan transport.Event { return m.events }

func (m *Member) Broadcast(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	if m.left {
		return fmt.Errorf("memhub: left room %s", m.room.topic)
	}
	ev := transport.Event{
		Kind:    transport.EventBroadcast,
		Event:   event,
		From:    m.key,
		Payload: raw,
	}
	for other := range m.room.members {
		if other == m && !m.self {
			continue
		}
		other.deliver(ev)
	}
	return nil
}

func (m *Member) Track(state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	if m.left {
		return fmt.Errorf("memhub: left room %s", m.room.topic)
	}
	m.state = raw
	m.hub.broadcastPresenceLocked(m.room)
	return nil
}

func (m *Member) Leave() error {
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	if m.left {
		return nil
	}
	m.left = true
	delete(m.room.members, m)
	close(m.events)
	if len(m.room.members) == 0 {
		delete(m.hub.rooms, m.room.topic)
	} else {
		m.hub.broadcastPresenceLocked(m.room)
	}
	return nil
}
