package models

import "time"

// Slot is one of the two seats of a room
type Slot string

const (
	SlotFirst  Slot = "first"
	SlotSecond Slot = "second"
)

// Participant is a seated connection
type Participant struct {
	ConnectionID     string `json:"connectionId" bson:"connectionId"`
	DisplayName      string `json:"displayName" bson:"displayName"`
	AffiliationLabel string `json:"affiliationLabel" bson:"affiliationLabel"`
}

// Summary drops the connection id.
func (p Participant) Summary() PartnerSummary {
	return PartnerSummary{DisplayName: p.DisplayName, AffiliationLabel: p.AffiliationLabel}
}

// Room pairs exactly two connections for one debate
type Room struct {
	ID              string      `json:"id"`
	First           Participant `json:"first"`
	Second          Participant `json:"second"`
	CreatedAt       time.Time   `json:"createdAt"`
	Topic           string      `json:"topic,omitempty"`
	OpeningQuestion string      `json:"openingQuestion,omitempty"`
}

// Has reports whether the connection holds a seat in the room.
func (r *Room) Has(connectionID string) bool {
	return r.First.ConnectionID == connectionID || r.Second.ConnectionID == connectionID
}

// SlotOf returns the seat held by the connection.
func (r *Room) SlotOf(connectionID string) (Slot, bool) {
	switch connectionID {
	case r.First.ConnectionID:
		return SlotFirst, true
	case r.Second.ConnectionID:
		return SlotSecond, true
	}
	return "", false
}

// Partner returns the participant sitting opposite the connection.
func (r *Room) Partner(connectionID string) (Participant, bool) {
	switch connectionID {
	case r.First.ConnectionID:
		return r.Second, true
	case r.Second.ConnectionID:
		return r.First, true
	}
	return Participant{}, false
}

// Participant returns whoever sits in the slot.
func (r *Room) Participant(slot Slot) Participant {
	if slot == SlotSecond {
		return r.Second
	}
	return r.First
}

// ConnectionIDs lists both seats, first slot first.
func (r *Room) ConnectionIDs() []string {
	return []string{r.First.ConnectionID, r.Second.ConnectionID}
}
