package services

import "errors"

var (
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrNotJoined       = errors.New("connection has not joined")
	ErrAlreadyInRoom   = errors.New("already in a room")
	ErrNotInRoom       = errors.New("not in a room")
	ErrSameParticipant = errors.New("a room needs two distinct participants")
	ErrDebateBusy      = errors.New("debate is not idle")
	ErrRoomIDExhausted = errors.New("could not allocate a unique room id")
)

// ErrorCode maps an error to the code sent in error events.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrNotJoined):
		return "not_joined"
	case errors.Is(err, ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, ErrDebateBusy):
		return "debate_busy"
	case errors.Is(err, ErrRoomIDExhausted):
		return "room_id_exhausted"
	}
	return "internal"
}
