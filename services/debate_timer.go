package services

import (
	"time"

	"github.com/rs/zerolog/log"

	"arguematch/internal/debate"
	"arguematch/models"
)

// DebateState is the phase driver state
type DebateState int

const (
	StateIdle DebateState = iota
	StatePhaseRunning
	StatePhaseTransition
	StateFinished
)

func (s DebateState) String() string {
	switch s {
	case StatePhaseRunning:
		return "phase_running"
	case StatePhaseTransition:
		return "phase_transition"
	case StateFinished:
		return "finished"
	}
	return "idle"
}

// TimerConfig controls the pacing of a debate
type TimerConfig struct {
	Schedule    []models.DebatePhase
	SettleDelay time.Duration // wait before the first phase once both seats are filled
	PhasePause  time.Duration // gap between a phase-start and its countdown, from phase 2 on
	Tick        time.Duration
}

// DefaultTimerConfig returns the standard six phase format
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Schedule:    models.DefaultSchedule,
		SettleDelay: 3 * time.Second,
		PhasePause:  time.Second,
		Tick:        time.Second,
	}
}

// DebateTimer drives the phase schedule of one room.
//
// It is not safe for concurrent use. The scheduler passed in must run
// callbacks under the same lock that guards every other method call.
// Each callback remembers the generation it was scheduled in; Reset bumps
// the generation so a callback that already fired but is still waiting for
// the lock becomes a no-op.
type DebateTimer struct {
	room       *models.Room
	cfg        TimerConfig
	after      func(time.Duration, func()) Timer
	emit       func(*debate.Event)
	onFinished func()

	state      DebateState
	phaseIndex int
	remaining  int
	starting   bool
	generation uint64
	pending    Timer
}

// NewDebateTimer creates an idle timer for the room
func NewDebateTimer(room *models.Room, cfg TimerConfig, after func(time.Duration, func()) Timer, emit func(*debate.Event), onFinished func()) *DebateTimer {
	if len(cfg.Schedule) == 0 {
		cfg.Schedule = models.DefaultSchedule
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &DebateTimer{
		room:       room,
		cfg:        cfg,
		after:      after,
		emit:       emit,
		onFinished: onFinished,
	}
}

// State returns the current state
func (t *DebateTimer) State() DebateState {
	return t.state
}

// Phase returns the current phase and its remaining seconds. ok is false while idle.
func (t *DebateTimer) Phase() (phase models.DebatePhase, remaining int, ok bool) {
	if t.state == StateIdle {
		return models.DebatePhase{}, 0, false
	}
	return t.cfg.Schedule[t.phaseIndex], t.remaining, true
}

// Starting reports whether the settle delay is pending
func (t *DebateTimer) Starting() bool {
	return t.starting
}

func (t *DebateTimer) participants() int {
	n := 0
	if t.room.First.ConnectionID != "" {
		n++
	}
	if t.room.Second.ConnectionID != "" {
		n++
	}
	return n
}

// Arm schedules the first phase after the settle delay.
func (t *DebateTimer) Arm() bool {
	if t.state != StateIdle || t.starting || t.participants() < 2 {
		return false
	}
	t.starting = true
	t.schedule(t.cfg.SettleDelay, t.begin)
	return true
}

// Start begins the first phase immediately. It replaces a pending settle
// delay and is refused unless the timer is idle with both seats filled.
func (t *DebateTimer) Start() bool {
	if t.state != StateIdle || t.participants() < 2 {
		return false
	}
	t.cancelPending()
	t.begin()
	return true
}

// Reset returns to Idle from any state and cancels every scheduled callback.
func (t *DebateTimer) Reset() {
	t.cancelPending()
	t.state = StateIdle
	t.phaseIndex = 0
	t.remaining = 0
	t.starting = false
}

func (t *DebateTimer) begin() {
	t.starting = false
	log.Info().Str("room", t.room.ID).Msg("[debate] starting")
	t.enterPhase(0, 0)
}

func (t *DebateTimer) enterPhase(index int, pause time.Duration) {
	phase := t.cfg.Schedule[index]
	t.phaseIndex = index
	t.remaining = phase.DurationSeconds

	t.send(debate.TypePhaseStart, debate.PhaseStartPayload{
		RoomID:          t.room.ID,
		PhaseNumber:     phase.Number,
		DurationSeconds: phase.DurationSeconds,
		SpeakerSlot:     phase.Speaker,
		Description:     phase.Description,
	})

	if pause > 0 {
		t.state = StatePhaseTransition
		t.schedule(pause, t.startCountdown)
		return
	}
	t.startCountdown()
}

func (t *DebateTimer) startCountdown() {
	t.state = StatePhaseRunning
	t.schedule(t.cfg.Tick, t.tick)
}

func (t *DebateTimer) tick() {
	if t.remaining > 0 {
		t.remaining--
	}
	phase := t.cfg.Schedule[t.phaseIndex]
	t.send(debate.TypeTimeUpdate, debate.TimeUpdatePayload{
		RoomID:               t.room.ID,
		PhaseNumber:          phase.Number,
		TimeRemainingSeconds: t.remaining,
	})

	switch {
	case t.remaining > 0:
		t.schedule(t.cfg.Tick, t.tick)
	case t.phaseIndex+1 < len(t.cfg.Schedule):
		t.enterPhase(t.phaseIndex+1, t.cfg.PhasePause)
	default:
		t.finish()
	}
}

func (t *DebateTimer) finish() {
	t.state = StateFinished
	t.send(debate.TypeDebateFinished, debate.RoomPayload{RoomID: t.room.ID})
	log.Info().Str("room", t.room.ID).Msg("[debate] finished")
	t.Reset()
	if t.onFinished != nil {
		t.onFinished()
	}
}

func (t *DebateTimer) cancelPending() {
	t.generation++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *DebateTimer) schedule(d time.Duration, fn func()) {
	gen := t.generation
	t.pending = t.after(d, func() {
		if gen != t.generation {
			return
		}
		t.pending = nil
		fn()
	})
}

func (t *DebateTimer) send(eventType string, payload interface{}) {
	event, err := debate.NewEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("room", t.room.ID).Str("type", eventType).Msg("[debate] encode event")
		return
	}
	t.emit(event)
}
