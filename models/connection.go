package models

import "time"

// Spectrum is the per-axis breakdown of a user's political orientation
type Spectrum struct {
	Economic      float64 `json:"economic" bson:"economic"`
	Social        float64 `json:"social" bson:"social"`
	ForeignPolicy float64 `json:"foreignPolicy" bson:"foreignPolicy"`
	Governance    float64 `json:"governance" bson:"governance"`
	Cultural      float64 `json:"cultural" bson:"cultural"`
}

// ConnectionIdentity describes one live connection from join until disconnect
type ConnectionIdentity struct {
	ConnectionID     string    `json:"connectionId"`
	DisplayName      string    `json:"displayName"`
	AffiliationLabel string    `json:"affiliationLabel"`
	PoliticalScore   *float64  `json:"politicalScore,omitempty"`
	Spectrum         *Spectrum `json:"spectrum,omitempty"`
	JoinedAt         time.Time `json:"joinedAt"`
}

// Summary is the public view of the identity shared with a partner.
func (c ConnectionIdentity) Summary() PartnerSummary {
	return PartnerSummary{
		DisplayName:      c.DisplayName,
		AffiliationLabel: c.AffiliationLabel,
	}
}

// WaitingEntry is a user in the matchmaking queue
type WaitingEntry struct {
	ConnectionID     string    `json:"connectionId"`
	DisplayName      string    `json:"displayName"`
	AffiliationLabel string    `json:"affiliationLabel"`
	Spectrum         *Spectrum `json:"spectrum,omitempty"`
	EnqueuedAt       time.Time `json:"enqueuedAt"`
}

// PartnerSummary is everything a participant learns about the other side.
// Political score and spectrum never leave the server.
type PartnerSummary struct {
	DisplayName      string `json:"displayName"`
	AffiliationLabel string `json:"affiliationLabel"`
}
