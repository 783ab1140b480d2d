package models

// DebatePhase is one timed speaking segment
type DebatePhase struct {
	Number          int    `json:"phaseNumber"`
	DurationSeconds int    `json:"durationSeconds"`
	Speaker         Slot   `json:"speakerSlot"`
	Description     string `json:"description"`
}

// DefaultSchedule is the fixed six phase debate format.
var DefaultSchedule = []DebatePhase{
	{Number: 1, DurationSeconds: 30, Speaker: SlotFirst, Description: "Opening statement — participant 1"},
	{Number: 2, DurationSeconds: 30, Speaker: SlotSecond, Description: "Opening statement — participant 2"},
	{Number: 3, DurationSeconds: 120, Speaker: SlotFirst, Description: "Main argument — participant 1"},
	{Number: 4, DurationSeconds: 120, Speaker: SlotSecond, Description: "Main argument — participant 2"},
	{Number: 5, DurationSeconds: 60, Speaker: SlotFirst, Description: "Closing statement — participant 1"},
	{Number: 6, DurationSeconds: 60, Speaker: SlotSecond, Description: "Closing statement — participant 2"},
}
