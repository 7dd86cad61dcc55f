package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Room routing/state.
	ErrRoomNotFound = "E_ROOM_NOT_FOUND"
	ErrNotMember    = "E_NOT_MEMBER"

	// Rule/action layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoEnergy      = "E_NO_ENERGY"
	ErrNoCoins       = "E_NO_COINS"
	ErrNoItem        = "E_NO_ITEM"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrWrongSeason   = "E_WRONG_SEASON"
	ErrConflict      = "E_CONFLICT"
	ErrVisiting      = "E_VISITING"
	ErrSessionLocked = "E_SESSION_LOCKED"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrRoomNotFound:    {},
	ErrNotMember:       {},
	ErrBadRequest:      {},
	ErrNoEnergy:        {},
	ErrNoCoins:         {},
	ErrNoItem:          {},
	ErrInvalidTarget:   {},
	ErrWrongSeason:     {},
	ErrConflict:        {},
	ErrVisiting:        {},
	ErrSessionLocked:   {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
