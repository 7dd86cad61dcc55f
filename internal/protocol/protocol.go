package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeJoin      = "JOIN"
	TypeLeave     = "LEAVE"
	TypeBroadcast = "BROADCAST"
	TypeTrack     = "TRACK"
	TypePresence  = "PRESENCE"
	TypeError     = "ERROR"
)

// Broadcast event names carried inside BROADCAST messages.
const (
	EventPlotUpdate = "plot_update"
	EventPlayerMove = "player_move"
	EventNewLogin   = "new_login"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
