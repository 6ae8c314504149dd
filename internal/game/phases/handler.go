// Package phases implements one handler per game phase. A handler is a
// small state machine: Initialize starts the phase, ProcessStep consumes
// agent responses until the phase completes, and Cleanup applies deferred
// effects. Handlers never block and never log; everything observable is
// returned as PhaseEvents.
package phases

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// Handler drives a single phase. The error return carries only invariant
// violations; rejected decisions are reported as events.
type Handler interface {
	Phase() states.GamePhase
	Initialize(s *game.GameState) (StepResult, error)
	ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error)
	Cleanup(s *game.GameState) (*game.GameState, error)
}

// StepResult is what a handler hands back to the orchestrator after every call
type StepResult struct {
	State           *game.GameState
	PhaseComplete   bool
	NextPhase       states.GamePhase
	PendingRequests []agent.Request
	Simultaneous    bool
	Events          []events.PhaseEvent
}

// CheckContract enforces the handler contract: a completed phase has no
// outstanding requests and an unfinished phase is waiting on at least one
func (r StepResult) CheckContract(p states.GamePhase) error {
	if r.State == nil {
		return core.Invariantf("%s returned no state", p)
	}
	if r.PhaseComplete && len(r.PendingRequests) > 0 {
		return core.Invariantf("%s completed with %d pending requests", p, len(r.PendingRequests))
	}
	if !r.PhaseComplete && len(r.PendingRequests) == 0 {
		return core.Invariantf("%s is waiting without pending requests", p)
	}
	if r.PhaseComplete && !p.CanTransitionTo(r.NextPhase) {
		return core.Invariantf("%s cannot transition to %s", p, r.NextPhase)
	}
	return nil
}

// Deps are the collaborators handlers need beyond the state
type Deps struct {
	Shuffler game.Shuffler
	Logger   zerolog.Logger
}

// NewHandlers builds a handler for every playable phase
func NewHandlers(deps Deps) map[states.GamePhase]Handler {
	if deps.Shuffler == nil {
		deps.Shuffler = game.IdentityShuffler{}
	}
	hs := []Handler{
		NewSetupHandler(deps.Shuffler),
		NewStormHandler(deps.Shuffler),
		NewSpiceBlowHandler(deps.Shuffler),
		NewCharityHandler(),
		NewBiddingHandler(deps.Shuffler),
		NewRevivalHandler(),
		NewShipMoveHandler(),
		NewBattleHandler(),
		NewCollectionHandler(),
		NewMentatHandler(deps.Logger),
	}
	out := make(map[states.GamePhase]Handler, len(hs))
	for _, h := range hs {
		out[h.Phase()] = h
	}
	return out
}

// step accumulates events while a handler works through one call
type step struct {
	state  *game.GameState
	events []events.PhaseEvent
}

func newStep(s *game.GameState) *step {
	return &step{state: s}
}

func (st *step) emit(evs ...events.PhaseEvent) {
	st.events = append(st.events, evs...)
}

func (st *step) event(t events.PhaseEventType, data map[string]interface{}, format string, args ...interface{}) {
	st.emit(events.NewPhaseEvent(t, data, format, args...))
}

// reject records a failed validation for an untrusted decision
func (st *step) reject(f core.Faction, action string, res core.ValidationResult) {
	codes := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		codes[i] = string(e.Code)
	}
	st.event(events.EventValidationFailed, map[string]interface{}{
		"faction": string(f),
		"action":  action,
		"codes":   codes,
	}, "%s %s rejected: %s", f, action, res.Summary())
}

func (st *step) complete(next states.GamePhase) StepResult {
	return StepResult{State: st.state, PhaseComplete: true, NextPhase: next, Events: st.events}
}

func (st *step) wait(simultaneous bool, reqs ...agent.Request) StepResult {
	return StepResult{State: st.state, PendingRequests: reqs, Simultaneous: simultaneous, Events: st.events}
}

// responseFrom returns the first response sent by f
func responseFrom(responses []agent.Response, f core.Faction) (agent.Response, bool) {
	for _, r := range responses {
		if r.Faction == f {
			return r, true
		}
	}
	return agent.Response{}, false
}

func strs[T ~string](xs []T) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = string(x)
	}
	return out
}

func newRequest(f core.Faction, t agent.RequestType, ctx map[string]interface{}, actions ...agent.ActionType) agent.Request {
	return agent.Request{
		Faction:          f,
		Type:             t,
		Prompt:           fmt.Sprintf("%s: %s", f, prompts[t]),
		Context:          ctx,
		AvailableActions: actions,
	}
}

var prompts = map[agent.RequestType]string{
	agent.RequestSelectTraitor:     "choose the traitor card to keep",
	agent.RequestPredictWinner:     "predict the winning faction and turn",
	agent.RequestDialStorm:         "dial the storm",
	agent.RequestAllianceDecision:  "form, break or keep alliances",
	agent.RequestClaimCharity:      "claim CHOAM charity or pass",
	agent.RequestBidOrPass:         "bid on the treachery card or pass",
	agent.RequestReviveForces:      "revive forces and leaders",
	agent.RequestShipForces:        "ship forces from reserves or pass",
	agent.RequestMoveForces:        "move one group of forces or pass",
	agent.RequestSendAdvisor:       "send an advisor to the Polar Sink or pass",
	agent.RequestChooseBattle:      "choose the next battle to fight",
	agent.RequestUsePrescience:     "ask to see one element of the opponent's plan",
	agent.RequestUseVoice:          "command the opponent's battle plan",
	agent.RequestCreateBattlePlan:  "submit a battle plan",
	agent.RequestCallTraitor:       "reveal a traitor or pass",
	agent.RequestChooseCardsToKeep: "choose which played cards to keep",
	agent.RequestCaptureLeader:     "capture or kill an enemy leader",
}
