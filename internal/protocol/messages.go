package protocol

import "encoding/json"

// JOIN (client -> server): subscribe to a room topic.
type JoinMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Topic           string `json:"topic"`
	Key             string `json:"key"`
	// Self requests that the client's own broadcasts are echoed back to it.
	Self bool `json:"self,omitempty"`
}

// LEAVE (client -> server): unsubscribe from a room topic.
type LeaveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Topic           string `json:"topic"`
}

// BROADCAST (both directions): an application event inside a room.
type BroadcastMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Topic           string          `json:"topic"`
	Event           string          `json:"event"`
	From            string          `json:"from,omitempty"`
	Payload         json.RawMessage `json:"payload"`
}

// TRACK (client -> server): replace the sender's presence state in a room.
type TrackMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Topic           string          `json:"topic"`
	State           json.RawMessage `json:"state"`
}

// PRESENCE (server -> client): full membership snapshot for a room. Sent on
// every join, leave and track; the latest snapshot is the membership truth.
type PresenceMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	Topic           string           `json:"topic"`
	Members         []PresenceMember `json:"members"`
}

type PresenceMember struct {
	Key   string          `json:"key"`
	State json.RawMessage `json:"state"`
}

// ERROR (server -> client).
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

// PlotUpdate is the payload of a plot_update broadcast: one cell of the farm
// grid, addressed by its linear index. Terrain and status use the wire names
// from the plot model ("grass", "soil", ...; "empty", "planted", "withered").
type PlotUpdate struct {
	PlotIndex   int    `json:"plot_index"`
	Terrain     string `json:"terrain"`
	Status      string `json:"status"`
	SeedID      string `json:"seed_id,omitempty"`
	DaysGrowing int    `json:"days_growing"`
	Watered     bool   `json:"watered"`
	Variant     int    `json:"variant,omitempty"`
}

// PlayerMove is the payload of a player_move broadcast and the presence state
// tracked in farm rooms.
type PlayerMove struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar string  `json:"avatar"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Facing string  `json:"facing"`
	Anim   string  `json:"anim"`
}

// SessionHello is the payload of a new_login broadcast on a session-control
// topic. A foreign session id arriving after our own means a second login.
type SessionHello struct {
	SessionID string `json:"session_id"`
}
