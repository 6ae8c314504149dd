package events

import (
	"time"
)

// Bus event type constants
const (
	TypeGameStarted       = "game.started"
	TypeGameEnded         = "game.ended"
	TypeTurnStarted       = "turn.started"
	TypeStateTransition   = "state.transition"
	TypePhaseEvent        = "phase.event"
	TypeDecisionRequested = "decision.requested"
	TypeDecisionReceived  = "decision.received"
)

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	Envelope
	Factions []string
	Seed     int64
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, factions []string, seed int64) *GameStartedEvent {
	return &GameStartedEvent{
		Envelope: envelope(TypeGameStarted, gameID, 0),
		Factions: factions,
		Seed:     seed,
	}
}

// GameEndedEvent is published when a game ends
type GameEndedEvent struct {
	Envelope
	Winners  []string
	Complete bool
	Duration time.Duration
	Steps    int
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winners []string, complete bool, duration time.Duration, finalTurn, steps int) *GameEndedEvent {
	return &GameEndedEvent{
		Envelope: envelope(TypeGameEnded, gameID, finalTurn),
		Winners:  winners,
		Complete: complete,
		Duration: duration,
		Steps:    steps,
	}
}

// TurnStartedEvent is published at the beginning of each turn after the
// first; Turn is the turn that starts
type TurnStartedEvent struct {
	Envelope
}

// NewTurnStartedEvent creates a new TurnStartedEvent
func NewTurnStartedEvent(gameID string, turn int) *TurnStartedEvent {
	return &TurnStartedEvent{Envelope: envelope(TypeTurnStarted, gameID, turn)}
}

// StateTransitionEvent is published when the game moves to another phase
type StateTransitionEvent struct {
	Envelope
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase string, turn int, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		Envelope:  envelope(TypeStateTransition, gameID, turn),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}

// PhaseEventPublished carries a PhaseEvent emitted by a phase handler onto the bus
type PhaseEventPublished struct {
	Envelope
	Phase string
	Event PhaseEvent
}

// NewPhaseEventPublished wraps a handler event for the bus
func NewPhaseEventPublished(gameID string, turn int, phase string, ev PhaseEvent) *PhaseEventPublished {
	return &PhaseEventPublished{
		Envelope: envelope(TypePhaseEvent, gameID, turn),
		Phase:    phase,
		Event:    ev,
	}
}

// DecisionRequestedEvent is published when the engine asks a faction to decide
type DecisionRequestedEvent struct {
	Envelope
	Faction      string
	Phase        string
	RequestType  string
	Simultaneous bool
}

// NewDecisionRequestedEvent creates a new DecisionRequestedEvent
func NewDecisionRequestedEvent(gameID string, turn int, phase, faction, requestType string, simultaneous bool) *DecisionRequestedEvent {
	return &DecisionRequestedEvent{
		Envelope:     envelope(TypeDecisionRequested, gameID, turn),
		Faction:      faction,
		Phase:        phase,
		RequestType:  requestType,
		Simultaneous: simultaneous,
	}
}

// DecisionReceivedEvent is published when a faction's response arrives
type DecisionReceivedEvent struct {
	Envelope
	Faction    string
	Phase      string
	ActionType string
	Passed     bool
	Latency    time.Duration
}

// NewDecisionReceivedEvent creates a new DecisionReceivedEvent
func NewDecisionReceivedEvent(gameID string, turn int, phase, faction, actionType string, passed bool, latency time.Duration) *DecisionReceivedEvent {
	return &DecisionReceivedEvent{
		Envelope:   envelope(TypeDecisionReceived, gameID, turn),
		Faction:    faction,
		Phase:      phase,
		ActionType: actionType,
		Passed:     passed,
		Latency:    latency,
	}
}
