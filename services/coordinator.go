package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"arguematch/internal/debate"
	"arguematch/models"
)

const archiveTimeout = 10 * time.Second

// Notifier delivers events to live connections. Broadcast must hand the
// same event to every recipient in one call so they observe the same order.
type Notifier interface {
	Send(connectionID string, event *debate.Event)
	Broadcast(connectionIDs []string, event *debate.Event)
}

// Archiver keeps a trace of matches outside the process
type Archiver interface {
	RecordMatch(ctx context.Context, record models.MatchRecord) error
	RecordOutcome(ctx context.Context, roomID, outcome string, endedAt time.Time) error
}

// EventSink mirrors room lifecycle events, e.g. to a Redis stream
type EventSink interface {
	Publish(roomID string, event *debate.Event)
}

// RelayMode selects who receives relayed signaling messages
type RelayMode string

const (
	// RelayRoom forwards only to the partner in the sender's room
	RelayRoom RelayMode = "room"
	// RelayBroadcast forwards to every other joined connection. Demo use only.
	RelayBroadcast RelayMode = "broadcast"
)

// Options configures a Coordinator. Zero values pick the defaults.
type Options struct {
	Timer     TimerConfig
	RelayMode RelayMode
	Topics    []models.DebateTopic
	Clock     Clock
	Archive   Archiver
	Events    EventSink
}

// Stats is the read-only status snapshot
type Stats struct {
	Connections        int `json:"connections"`
	QueueLength        int `json:"queueLength"`
	ActiveRooms        int `json:"activeRooms"`
	ActiveParticipants int `json:"activeParticipants"`
	RunningDebates     int `json:"runningDebates"`
}

// RoomSummary describes an active room without any political data
type RoomSummary struct {
	ID                   string                  `json:"id"`
	CreatedAt            time.Time               `json:"createdAt"`
	Participants         []models.PartnerSummary `json:"participants"`
	Topic                string                  `json:"topic,omitempty"`
	State                string                  `json:"state"`
	PhaseNumber          int                     `json:"phaseNumber,omitempty"`
	TimeRemainingSeconds int                     `json:"timeRemainingSeconds,omitempty"`
}

type roomSession struct {
	room      *models.Room
	timer     *DebateTimer
	completed bool
}

// Coordinator owns the registry, the waiting queue, the rooms and their
// debate timers. One mutex serializes every operation and timer callback.
type Coordinator struct {
	mu sync.Mutex

	registry    *Registry
	queue       *WaitingQueue
	rooms       *RoomStore
	matchmaking *MatchmakingService
	sessions    map[string]*roomSession

	notifier  Notifier
	clock     Clock
	timerCfg  TimerConfig
	relayMode RelayMode
	topics    []models.DebateTopic
	archive   Archiver
	events    EventSink
	pickTopic func(n int) int
}

// NewCoordinator wires the coordinator to a notifier
func NewCoordinator(notifier Notifier, opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.RelayMode == "" {
		opts.RelayMode = RelayRoom
	}
	if len(opts.Timer.Schedule) == 0 {
		opts.Timer.Schedule = models.DefaultSchedule
	}

	queue := NewWaitingQueue()
	rooms := NewRoomStore()
	return &Coordinator{
		registry:    NewRegistry(),
		queue:       queue,
		rooms:       rooms,
		matchmaking: NewMatchmakingService(queue, rooms),
		sessions:    make(map[string]*roomSession),
		notifier:    notifier,
		clock:       opts.Clock,
		timerCfg:    opts.Timer,
		relayMode:   opts.RelayMode,
		topics:      opts.Topics,
		archive:     opts.Archive,
		events:      opts.Events,
		pickTopic:   rand.IntN,
	}
}

// Join registers or replaces the identity of a connection.
func (c *Coordinator) Join(connectionID string, p debate.JoinPayload) error {
	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		return fmt.Errorf("%w: displayName is required", ErrInvalidPayload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	identity := c.registry.Register(models.ConnectionIdentity{
		ConnectionID:     connectionID,
		DisplayName:      name,
		AffiliationLabel: strings.TrimSpace(p.AffiliationLabel),
		PoliticalScore:   p.PoliticalScore,
		Spectrum:         p.Spectrum,
	})
	log.Info().Str("conn", connectionID).Str("name", identity.DisplayName).Msg("[coordinator] joined")

	c.send(connectionID, debate.TypeJoined, debate.JoinedPayload{
		ConnectionID:     connectionID,
		DisplayName:      identity.DisplayName,
		AffiliationLabel: identity.AffiliationLabel,
	})
	return nil
}

// RequestMatch runs the matchmaker for a joined connection and notifies
// everyone involved.
func (c *Coordinator) RequestMatch(connectionID string) (MatchOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	identity, ok := c.registry.Lookup(connectionID)
	if !ok {
		return MatchOutcome{}, ErrNotJoined
	}

	outcome, err := c.matchmaking.RequestMatch(models.WaitingEntry{
		ConnectionID:     identity.ConnectionID,
		DisplayName:      identity.DisplayName,
		AffiliationLabel: identity.AffiliationLabel,
		Spectrum:         identity.Spectrum,
		EnqueuedAt:       time.Now(),
	})
	if err != nil {
		if errors.Is(err, ErrRoomIDExhausted) {
			log.Error().Err(err).Str("conn", connectionID).Msg("[matchmaking] room allocation failed")
		}
		return MatchOutcome{}, err
	}

	switch outcome.Kind {
	case MatchWaiting:
		c.send(connectionID, debate.TypeStatus, debate.StatusPayload{Status: debate.StatusWaiting})
	case MatchAlreadyWaiting:
		c.send(connectionID, debate.TypeStatus, debate.StatusPayload{Status: debate.StatusAlreadyWaiting})
	case MatchMatched:
		c.openRoom(outcome.Room)
	}
	return outcome, nil
}

// CancelMatch takes the connection out of the waiting queue.
func (c *Coordinator) CancelMatch(connectionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.matchmaking.Cancel(connectionID)
	status := debate.StatusNotWaiting
	if removed {
		status = debate.StatusCancelled
	}
	c.send(connectionID, debate.TypeStatus, debate.StatusPayload{Status: status})
	return removed
}

// Relay forwards a signaling, chat or transcript payload from the sender.
func (c *Coordinator) Relay(connectionID, eventType string, payload json.RawMessage) error {
	if !debate.IsRelayType(eventType) {
		return fmt.Errorf("%w: %q is not relayed", ErrInvalidPayload, eventType)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	identity, ok := c.registry.Lookup(connectionID)
	if !ok {
		return ErrNotJoined
	}
	event := debate.NewRelayEvent(eventType, payload, debate.Sender{
		ConnectionID:     identity.ConnectionID,
		DisplayName:      identity.DisplayName,
		AffiliationLabel: identity.AffiliationLabel,
	})

	if c.relayMode == RelayBroadcast {
		recipients := make([]string, 0, c.registry.Len())
		for _, id := range c.registry.IDs() {
			if id != connectionID {
				recipients = append(recipients, id)
			}
		}
		c.notifier.Broadcast(recipients, event)
		return nil
	}

	room, ok := c.rooms.FindByConnection(connectionID)
	if !ok {
		return ErrNotInRoom
	}
	partner, _ := room.Partner(connectionID)
	c.notifier.Send(partner.ConnectionID, event)
	return nil
}

// StartDebate starts the sender's room debate now. Refused unless idle.
func (c *Coordinator) StartDebate(connectionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.sessionOf(connectionID)
	if err != nil {
		return err
	}
	if !session.timer.Start() {
		return ErrDebateBusy
	}
	session.completed = false
	return nil
}

// ResetDebate forces the sender's room debate back to idle.
func (c *Coordinator) ResetDebate(connectionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.sessionOf(connectionID)
	if err != nil {
		return err
	}
	session.timer.Reset()
	c.broadcastRoom(session.room, debate.TypeDebateReset, debate.RoomPayload{RoomID: session.room.ID})
	log.Info().Str("room", session.room.ID).Str("conn", connectionID).Msg("[debate] reset")
	return nil
}

// Disconnect unwinds every trace of the connection. The identity is removed
// last so the partner notification can still name who left.
func (c *Coordinator) Disconnect(connectionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue.Remove(connectionID)

	if room, ok := c.rooms.RemoveByConnection(connectionID); ok {
		session := c.sessions[room.ID]
		delete(c.sessions, room.ID)
		if session != nil {
			session.timer.Reset()
		}

		departed, _ := room.SlotOf(connectionID)
		leaver := room.Participant(departed)
		if identity, ok := c.registry.Lookup(connectionID); ok {
			leaver.DisplayName = identity.DisplayName
			leaver.AffiliationLabel = identity.AffiliationLabel
		}
		partner, _ := room.Partner(connectionID)

		event, err := debate.NewEvent(debate.TypePartnerDisconnected, debate.PartnerDisconnectedPayload{
			RoomID:           room.ID,
			DisplayName:      leaver.DisplayName,
			AffiliationLabel: leaver.AffiliationLabel,
		})
		if err == nil {
			c.notifier.Send(partner.ConnectionID, event)
			c.publish(room.ID, event)
		}

		if session == nil || !session.completed {
			roomID := room.ID
			c.archiveAsync(func(ctx context.Context, a Archiver) error {
				return a.RecordOutcome(ctx, roomID, models.OutcomeAbandoned, time.Now())
			})
		}
		log.Info().Str("room", room.ID).Str("conn", connectionID).Msg("[coordinator] room closed by disconnect")
	}

	c.registry.Remove(connectionID)
}

// Reject reports a failed request back to the connection.
func (c *Coordinator) Reject(connectionID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.send(connectionID, debate.TypeError, debate.ErrorPayload{
		Code:    ErrorCode(err),
		Message: err.Error(),
	})
}

// SendStats answers an active-users query over the connection.
func (c *Coordinator) SendStats(connectionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.send(connectionID, debate.TypeActiveUsers, c.stats())
}

// Stats returns queue and room counts
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats()
}

// Rooms lists active rooms, oldest first
func (c *Coordinator) Rooms() []RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := c.rooms.List()
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := RoomSummary{
			ID:           room.ID,
			CreatedAt:    room.CreatedAt,
			Participants: []models.PartnerSummary{room.First.Summary(), room.Second.Summary()},
			Topic:        room.Topic,
			State:        StateIdle.String(),
		}
		if session, ok := c.sessions[room.ID]; ok {
			summary.State = session.timer.State().String()
			if phase, remaining, ok := session.timer.Phase(); ok {
				summary.PhaseNumber = phase.Number
				summary.TimeRemainingSeconds = remaining
			}
		}
		out = append(out, summary)
	}
	return out
}

func (c *Coordinator) stats() Stats {
	running := 0
	for _, session := range c.sessions {
		if session.timer.State() != StateIdle || session.timer.Starting() {
			running++
		}
	}
	return Stats{
		Connections:        c.registry.Len(),
		QueueLength:        c.queue.Len(),
		ActiveRooms:        c.rooms.Len(),
		ActiveParticipants: c.rooms.Len() * 2,
		RunningDebates:     running,
	}
}

func (c *Coordinator) openRoom(room *models.Room) {
	// a re-join while queued may have changed the name or label
	for _, seat := range []*models.Participant{&room.First, &room.Second} {
		if identity, ok := c.registry.Lookup(seat.ConnectionID); ok {
			summary := identity.Summary()
			seat.DisplayName = summary.DisplayName
			seat.AffiliationLabel = summary.AffiliationLabel
		}
	}

	if len(c.topics) > 0 {
		topic := c.topics[c.pickTopic(len(c.topics))]
		room.Topic = topic.Topic
		room.OpeningQuestion = topic.OpeningQuestion
	}

	session := &roomSession{room: room}
	session.timer = NewDebateTimer(room, c.timerCfg, c.after,
		func(event *debate.Event) {
			c.notifier.Broadcast(room.ConnectionIDs(), event)
			if event.Type != debate.TypeTimeUpdate {
				c.publish(room.ID, event)
			}
		},
		func() {
			session.completed = true
			roomID := room.ID
			c.archiveAsync(func(ctx context.Context, a Archiver) error {
				return a.RecordOutcome(ctx, roomID, models.OutcomeCompleted, time.Now())
			})
		},
	)
	c.sessions[room.ID] = session

	for _, slot := range []models.Slot{models.SlotFirst, models.SlotSecond} {
		self := room.Participant(slot)
		partner, _ := room.Partner(self.ConnectionID)
		c.send(self.ConnectionID, debate.TypeMatchFound, debate.MatchFoundPayload{
			RoomID:          room.ID,
			Slot:            slot,
			Partner:         partner.Summary(),
			Topic:           room.Topic,
			OpeningQuestion: room.OpeningQuestion,
		})
	}

	record := models.MatchRecord{
		RoomID:          room.ID,
		Participants:    []models.Participant{room.First, room.Second},
		Topic:           room.Topic,
		OpeningQuestion: room.OpeningQuestion,
		CreatedAt:       room.CreatedAt,
		Outcome:         models.OutcomeInProgress,
	}
	c.archiveAsync(func(ctx context.Context, a Archiver) error {
		return a.RecordMatch(ctx, record)
	})

	session.timer.Arm()
	log.Info().
		Str("room", room.ID).
		Str("first", room.First.ConnectionID).
		Str("second", room.Second.ConnectionID).
		Msg("[matchmaking] room created")
}

func (c *Coordinator) sessionOf(connectionID string) (*roomSession, error) {
	if _, ok := c.registry.Lookup(connectionID); !ok {
		return nil, ErrNotJoined
	}
	room, ok := c.rooms.FindByConnection(connectionID)
	if !ok {
		return nil, ErrNotInRoom
	}
	session, ok := c.sessions[room.ID]
	if !ok {
		return nil, ErrNotInRoom
	}
	return session, nil
}

// after schedules fn on the clock under the coordinator lock
func (c *Coordinator) after(d time.Duration, fn func()) Timer {
	return c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		fn()
	})
}

func (c *Coordinator) send(connectionID, eventType string, payload interface{}) {
	event, err := debate.NewEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("[coordinator] encode event")
		return
	}
	c.notifier.Send(connectionID, event)
}

func (c *Coordinator) broadcastRoom(room *models.Room, eventType string, payload interface{}) {
	event, err := debate.NewEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("[coordinator] encode event")
		return
	}
	c.notifier.Broadcast(room.ConnectionIDs(), event)
	c.publish(room.ID, event)
}

func (c *Coordinator) publish(roomID string, event *debate.Event) {
	if c.events != nil {
		c.events.Publish(roomID, event)
	}
}

// archiveAsync runs an archive write outside the lock
func (c *Coordinator) archiveAsync(write func(context.Context, Archiver) error) {
	if c.archive == nil {
		return
	}
	archive := c.archive
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := write(ctx, archive); err != nil {
			log.Warn().Err(err).Msg("[archive] write failed")
		}
	}()
}
