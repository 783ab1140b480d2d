package debate

import (
	"encoding/json"
	"time"

	"arguematch/models"
)

// Client to server event types
const (
	TypeJoin         = "join"
	TypeRequestMatch = "request-match"
	TypeCancelMatch  = "cancel-match"
	TypeStartDebate  = "start-debate"
	TypeResetDebate  = "reset-debate"
	TypeActiveUsers  = "active-users"
)

// Relayed event types, forwarded to the partner untouched
const (
	TypeSignal       = "signal"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
	TypeChat         = "chat"
	TypeTranscript   = "transcript"
)

// Server to client event types
const (
	TypeJoined              = "joined"
	TypeStatus              = "status"
	TypeMatchFound          = "match-found"
	TypePhaseStart          = "phase-start"
	TypeTimeUpdate          = "time-update"
	TypeDebateFinished      = "debate-finished"
	TypeDebateReset         = "debate-reset"
	TypePartnerDisconnected = "partner-disconnected"
	TypeError               = "error"
)

// Status values carried by TypeStatus events
const (
	StatusWaiting        = "waiting"
	StatusAlreadyWaiting = "already_waiting"
	StatusCancelled      = "cancelled"
	StatusNotWaiting     = "not_waiting"
)

// IsRelayType reports whether messages of this type are forwarded between participants.
func IsRelayType(t string) bool {
	switch t {
	case TypeSignal, TypeOffer, TypeAnswer, TypeICECandidate, TypeChat, TypeTranscript:
		return true
	}
	return false
}

// Event is a server to client frame
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	From      *Sender         `json:"from,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Sender attributes a relayed message
type Sender struct {
	ConnectionID     string `json:"connectionId"`
	DisplayName      string `json:"displayName"`
	AffiliationLabel string `json:"affiliationLabel"`
}

// ClientMessage represents a message from client
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinPayload identifies the user behind a connection
type JoinPayload struct {
	DisplayName      string           `json:"displayName"`
	AffiliationLabel string           `json:"affiliationLabel"`
	PoliticalScore   *float64         `json:"politicalScore,omitempty"`
	Spectrum         *models.Spectrum `json:"spectrum,omitempty"`
}

// JoinedPayload acknowledges a join
type JoinedPayload struct {
	ConnectionID     string `json:"connectionId"`
	DisplayName      string `json:"displayName"`
	AffiliationLabel string `json:"affiliationLabel"`
}

// StatusPayload carries a matchmaking status
type StatusPayload struct {
	Status string `json:"status"`
}

// MatchFoundPayload is sent to each side of a new room
type MatchFoundPayload struct {
	RoomID          string                `json:"roomId"`
	Slot            models.Slot           `json:"slotAssignment"`
	Partner         models.PartnerSummary `json:"partnerSummary"`
	Topic           string                `json:"topic,omitempty"`
	OpeningQuestion string                `json:"openingQuestion,omitempty"`
}

// PhaseStartPayload announces a new speaking phase
type PhaseStartPayload struct {
	RoomID          string      `json:"roomId"`
	PhaseNumber     int         `json:"phaseNumber"`
	DurationSeconds int         `json:"durationSeconds"`
	SpeakerSlot     models.Slot `json:"speakerSlot"`
	Description     string      `json:"description"`
}

// TimeUpdatePayload is the per second countdown
type TimeUpdatePayload struct {
	RoomID               string `json:"roomId"`
	PhaseNumber          int    `json:"phaseNumber"`
	TimeRemainingSeconds int    `json:"timeRemainingSeconds"`
}

// RoomPayload is used by events that only name the room
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// PartnerDisconnectedPayload tells the survivor who left
type PartnerDisconnectedPayload struct {
	RoomID           string `json:"roomId"`
	DisplayName      string `json:"displayName"`
	AffiliationLabel string `json:"affiliationLabel"`
}

// ErrorPayload reports a rejected request
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a new event with timestamp
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: time.Now().Unix(),
	}, nil
}

// NewRelayEvent wraps a client payload without touching its bytes.
func NewRelayEvent(eventType string, payload json.RawMessage, from Sender) *Event {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	return &Event{
		Type:      eventType,
		Payload:   payload,
		From:      &from,
		Timestamp: time.Now().Unix(),
	}
}

// MarshalEvent marshals an event to JSON string for Redis Stream
func MarshalEvent(event *Event) (string, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalEvent unmarshals a JSON string to an Event
func UnmarshalEvent(data string) (*Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, err
	}
	return &event, nil
}
