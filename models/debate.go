package models

import "time"

// MatchOutcome values stored on archived matches
const (
	OutcomeInProgress = "in_progress"
	OutcomeCompleted  = "completed"
	OutcomeAbandoned  = "abandoned"
)

// MatchRecord is the archived trace of one room
type MatchRecord struct {
	RoomID          string        `bson:"_id" json:"roomId"`
	Participants    []Participant `bson:"participants" json:"participants"`
	Topic           string        `bson:"topic,omitempty" json:"topic,omitempty"`
	OpeningQuestion string        `bson:"openingQuestion,omitempty" json:"openingQuestion,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	Outcome         string        `bson:"outcome" json:"outcome"` // "in_progress", "completed", "abandoned"
	EndedAt         *time.Time    `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
}

// DebateTopic is an opening prompt handed to a new room
type DebateTopic struct {
	Topic           string `yaml:"topic" json:"topic"`
	OpeningQuestion string `yaml:"openingQuestion" json:"openingQuestion"`
}
