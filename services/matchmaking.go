package services

import (
	"fmt"

	"arguematch/models"
)

// MatchKind tells what a match request led to
type MatchKind int

const (
	MatchWaiting MatchKind = iota
	MatchAlreadyWaiting
	MatchMatched
)

func (k MatchKind) String() string {
	switch k {
	case MatchAlreadyWaiting:
		return "already_waiting"
	case MatchMatched:
		return "matched"
	}
	return "waiting"
}

// MatchOutcome is the result of RequestMatch. Room and Slot are set only when matched.
type MatchOutcome struct {
	Kind MatchKind
	Room *models.Room
	Slot models.Slot
}

// MatchmakingService pairs requesters in strict arrival order
type MatchmakingService struct {
	queue *WaitingQueue
	rooms *RoomStore
}

// NewMatchmakingService creates a matchmaker over the given queue and rooms
func NewMatchmakingService(queue *WaitingQueue, rooms *RoomStore) *MatchmakingService {
	return &MatchmakingService{queue: queue, rooms: rooms}
}

// RequestMatch pairs the requester with the head of the queue, or queues it.
// The earlier arrival always takes the first slot.
func (ms *MatchmakingService) RequestMatch(user models.WaitingEntry) (MatchOutcome, error) {
	if _, seated := ms.rooms.FindByConnection(user.ConnectionID); seated {
		return MatchOutcome{}, ErrAlreadyInRoom
	}
	if ms.queue.Contains(user.ConnectionID) {
		return MatchOutcome{Kind: MatchAlreadyWaiting}, nil
	}

	candidate, ok := ms.queue.PopHead()
	if !ok {
		ms.queue.Enqueue(user)
		return MatchOutcome{Kind: MatchWaiting}, nil
	}

	room, err := ms.rooms.Create(participantFrom(candidate), participantFrom(user))
	if err != nil {
		// Keep the candidate's place for the next requester
		ms.queue.PushFront(candidate)
		return MatchOutcome{}, fmt.Errorf("failed to create room: %w", err)
	}
	return MatchOutcome{Kind: MatchMatched, Room: room, Slot: models.SlotSecond}, nil
}

// Cancel removes the connection from the queue. It is a no-op when not queued.
func (ms *MatchmakingService) Cancel(connectionID string) bool {
	return ms.queue.Remove(connectionID)
}

// GetPool returns a copy of the waiting queue in service order
func (ms *MatchmakingService) GetPool() []models.WaitingEntry {
	return ms.queue.Snapshot()
}

func participantFrom(entry models.WaitingEntry) models.Participant {
	return models.Participant{
		ConnectionID:     entry.ConnectionID,
		DisplayName:      entry.DisplayName,
		AffiliationLabel: entry.AffiliationLabel,
	}
}
