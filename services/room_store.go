package services

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"arguematch/models"
)

const maxRoomIDAttempts = 5

// generateRoomID returns a 32 character hex token
func generateRoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RoomStore holds active rooms indexed by id and by seated connection.
// It is not safe for concurrent use; the Coordinator serializes access.
type RoomStore struct {
	rooms  map[string]*models.Room
	byConn map[string]string
	newID  func() string
	now    func() time.Time
}

// NewRoomStore creates an empty store
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*models.Room),
		byConn: make(map[string]string),
		newID:  generateRoomID,
		now:    time.Now,
	}
}

// Create seats a and b in a fresh room. a takes the first slot.
func (s *RoomStore) Create(a, b models.Participant) (*models.Room, error) {
	if a.ConnectionID == b.ConnectionID {
		return nil, ErrSameParticipant
	}
	if _, ok := s.byConn[a.ConnectionID]; ok {
		return nil, ErrAlreadyInRoom
	}
	if _, ok := s.byConn[b.ConnectionID]; ok {
		return nil, ErrAlreadyInRoom
	}

	id := ""
	for attempt := 0; attempt < maxRoomIDAttempts; attempt++ {
		candidate := s.newID()
		if _, taken := s.rooms[candidate]; !taken && candidate != "" {
			id = candidate
			break
		}
	}
	if id == "" {
		return nil, ErrRoomIDExhausted
	}

	room := &models.Room{
		ID:        id,
		First:     a,
		Second:    b,
		CreatedAt: s.now(),
	}
	s.rooms[id] = room
	s.byConn[a.ConnectionID] = id
	s.byConn[b.ConnectionID] = id
	return room, nil
}

// Find returns a room by id
func (s *RoomStore) Find(roomID string) (*models.Room, bool) {
	room, ok := s.rooms[roomID]
	return room, ok
}

// FindByConnection returns the room a connection is seated in
func (s *RoomStore) FindByConnection(connectionID string) (*models.Room, bool) {
	roomID, ok := s.byConn[connectionID]
	if !ok {
		return nil, false
	}
	room, ok := s.Find(roomID)
	if !ok || !room.Has(connectionID) {
		return nil, false
	}
	return room, true
}

// RemoveByConnection deletes the whole room holding the connection and returns it.
func (s *RoomStore) RemoveByConnection(connectionID string) (*models.Room, bool) {
	room, ok := s.FindByConnection(connectionID)
	if !ok {
		return nil, false
	}
	delete(s.rooms, room.ID)
	delete(s.byConn, room.First.ConnectionID)
	delete(s.byConn, room.Second.ConnectionID)
	return room, true
}

// Len returns the number of active rooms
func (s *RoomStore) Len() int {
	return len(s.rooms)
}

// List returns active rooms, oldest first
func (s *RoomStore) List() []*models.Room {
	rooms := make([]*models.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms
}
