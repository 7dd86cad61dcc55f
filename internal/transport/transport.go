// Package transport is the room abstraction the presence layer runs on:
// per-topic publish/subscribe with a membership sub-protocol. Delivery is
// best-effort and at-least-once; consumers reconcile against the latest
// presence snapshot rather than trusting event order.
package transport

import (
	"encoding/json"

	"farmgrid.app/internal/protocol"
)

type EventKind int

const (
	// EventBroadcast is an application event published into the room.
	EventBroadcast EventKind = iota + 1
	// EventPresence is a full membership snapshot.
	EventPresence
)

type Event struct {
	Kind    EventKind
	Event   string
	From    string
	Payload json.RawMessage
	Members []protocol.PresenceMember
}

// Room is one joined topic. Events is closed after Leave or when the
// underlying connection drops.
type Room interface {
	Broadcast(event string, payload any) error
	Track(state any) error
	Events() <-chan Event
	Leave() error
}

// Bus joins rooms. key identifies the member within the room; self asks for
// the member's own broadcasts to be echoed back. Two joins with the same key
// are distinct members, which is what lets a second login's announcement
// reach the first.
type Bus interface {
	Join(topic, key string, self bool) (Room, error)
	Close() error
}
