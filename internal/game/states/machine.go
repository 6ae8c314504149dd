package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
)

// Transition represents a phase change in the history
type Transition struct {
	From      GamePhase
	To        GamePhase
	Turn      int
	Timestamp time.Time
	Reason    string
}

// StateMachine tracks the current phase and guards transitions with the
// phase graph from AllowedTransitions
type StateMachine struct {
	mu             sync.RWMutex
	currentPhase   GamePhase
	context        *GameContext
	history        []Transition
	maxHistorySize int
	eventBus       events.Publisher
}

// NewStateMachine creates a new state machine positioned at setup
func NewStateMachine(ctx *GameContext, eventBus events.Publisher) *StateMachine {
	return &StateMachine{
		currentPhase:   PhaseSetup,
		context:        ctx,
		history:        make([]Transition, 0, 100),
		maxHistorySize: 1000,
		eventBus:       eventBus,
	}
}

// CurrentPhase returns the current game phase
func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase
}

// TransitionTo attempts to transition to the specified phase
func (sm *StateMachine) TransitionTo(targetPhase GamePhase, turn int, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.currentPhase.CanTransitionTo(targetPhase) {
		return fmt.Errorf("invalid transition from %s to %s", sm.currentPhase, targetPhase)
	}

	transition := Transition{
		From:      sm.currentPhase,
		To:        targetPhase,
		Turn:      turn,
		Timestamp: time.Now(),
		Reason:    reason,
	}
	sm.addToHistory(transition)

	previousPhase := sm.currentPhase
	sm.currentPhase = targetPhase
	sm.context.Turn = turn
	if previousPhase == PhaseSetup {
		sm.context.StartTime = transition.Timestamp
	}

	if sm.eventBus != nil {
		sm.eventBus.Publish(events.NewStateTransitionEvent(
			sm.context.GameID,
			previousPhase.String(),
			targetPhase.String(),
			turn,
			reason,
		))
	}

	sm.context.Logger.Debug().
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Int("turn", turn).
		Str("reason", reason).
		Msg("Phase transition completed")

	return nil
}

// addToHistory adds a transition to the history, maintaining max size
func (sm *StateMachine) addToHistory(transition Transition) {
	sm.history = append(sm.history, transition)

	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
}

// GetHistory returns a copy of the transition history
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// GetContext returns the game context
func (sm *StateMachine) GetContext() *GameContext {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.context
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (sm *StateMachine) CanTransitionTo(targetPhase GamePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase.CanTransitionTo(targetPhase)
}
