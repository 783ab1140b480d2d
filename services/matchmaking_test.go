package services

import (
	"errors"
	"testing"

	"arguematch/models"
)

func newTestMatchmaker() *MatchmakingService {
	return NewMatchmakingService(NewWaitingQueue(), NewRoomStore())
}

func entry(id string) models.WaitingEntry {
	return models.WaitingEntry{ConnectionID: id, DisplayName: "user-" + id}
}

func TestMatchmakingService(t *testing.T) {
	ms := newTestMatchmaker()

	outcome, err := ms.RequestMatch(entry("user1"))
	if err != nil {
		t.Fatalf("Failed to queue user1: %v", err)
	}
	if outcome.Kind != MatchWaiting {
		t.Errorf("Expected user1 to wait, got %s", outcome.Kind)
	}

	pool := ms.GetPool()
	if len(pool) != 1 {
		t.Errorf("Expected 1 user in pool, got %d", len(pool))
	}

	outcome, err = ms.RequestMatch(entry("user2"))
	if err != nil {
		t.Fatalf("Failed to match user2: %v", err)
	}
	if outcome.Kind != MatchMatched {
		t.Fatalf("Expected user2 to be matched, got %s", outcome.Kind)
	}
	if outcome.Room.First.ConnectionID != "user1" || outcome.Room.Second.ConnectionID != "user2" {
		t.Errorf("Expected user1 first and user2 second, got %+v", outcome.Room)
	}
	if outcome.Slot != models.SlotSecond {
		t.Errorf("Expected requester slot second, got %s", outcome.Slot)
	}

	if pool := ms.GetPool(); len(pool) != 0 {
		t.Errorf("Expected empty pool after match, got %d", len(pool))
	}
}

func TestMatchmakingPairsInCallOrder(t *testing.T) {
	ms := newTestMatchmaker()
	var rooms []*models.Room

	for _, id := range []string{"A", "B", "C", "D", "E"} {
		outcome, err := ms.RequestMatch(entry(id))
		if err != nil {
			t.Fatalf("RequestMatch(%s): %v", id, err)
		}
		if outcome.Kind == MatchMatched {
			rooms = append(rooms, outcome.Room)
		}
	}

	if len(rooms) != 2 {
		t.Fatalf("Expected 2 rooms, got %d", len(rooms))
	}
	want := [][2]string{{"A", "B"}, {"C", "D"}}
	for i, room := range rooms {
		if room.First.ConnectionID != want[i][0] || room.Second.ConnectionID != want[i][1] {
			t.Errorf("Room %d: expected %v, got %s/%s", i, want[i], room.First.ConnectionID, room.Second.ConnectionID)
		}
	}
	if pool := ms.GetPool(); len(pool) != 1 || pool[0].ConnectionID != "E" {
		t.Errorf("Expected E left waiting, got %+v", pool)
	}
}

func TestMatchmakingSameConnectionRetry(t *testing.T) {
	ms := newTestMatchmaker()

	if outcome, _ := ms.RequestMatch(entry("A")); outcome.Kind != MatchWaiting {
		t.Fatalf("Expected A to wait, got %s", outcome.Kind)
	}
	for i := 0; i < 2; i++ {
		outcome, err := ms.RequestMatch(entry("A"))
		if err != nil {
			t.Fatalf("Retry %d failed: %v", i, err)
		}
		if outcome.Kind != MatchAlreadyWaiting {
			t.Errorf("Retry %d: expected already waiting, got %s", i, outcome.Kind)
		}
	}
	if ms.rooms.Len() != 0 {
		t.Errorf("Expected no self room, got %d rooms", ms.rooms.Len())
	}
	if pool := ms.GetPool(); len(pool) != 1 || pool[0].ConnectionID != "A" {
		t.Errorf("Expected only A in pool, got %+v", pool)
	}
}

func TestMatchmakingRejectsSeatedConnection(t *testing.T) {
	ms := newTestMatchmaker()
	ms.RequestMatch(entry("A"))
	ms.RequestMatch(entry("B"))

	_, err := ms.RequestMatch(entry("A"))
	if !errors.Is(err, ErrAlreadyInRoom) {
		t.Errorf("Expected ErrAlreadyInRoom, got %v", err)
	}
	if len(ms.GetPool()) != 0 {
		t.Error("Expected seated connection to stay out of the queue")
	}
}

func TestMatchmakingRoomFailureKeepsHead(t *testing.T) {
	ms := newTestMatchmaker()
	ms.rooms.newID = func() string { return "" }

	ms.RequestMatch(entry("A"))
	_, err := ms.RequestMatch(entry("B"))
	if !errors.Is(err, ErrRoomIDExhausted) {
		t.Fatalf("Expected ErrRoomIDExhausted, got %v", err)
	}
	if pool := ms.GetPool(); len(pool) != 1 || pool[0].ConnectionID != "A" {
		t.Errorf("Expected A restored at head, got %+v", pool)
	}
}

func TestMatchmakingCancel(t *testing.T) {
	ms := newTestMatchmaker()

	if ms.Cancel("nobody") {
		t.Error("Expected cancel of unknown connection to report false")
	}
	ms.RequestMatch(entry("A"))
	if !ms.Cancel("A") {
		t.Error("Expected cancel of A to report true")
	}
	if ms.Cancel("A") {
		t.Error("Expected second cancel to report false")
	}
	if outcome, _ := ms.RequestMatch(entry("B")); outcome.Kind != MatchWaiting {
		t.Errorf("Expected B to wait after A cancelled, got %s", outcome.Kind)
	}
}
