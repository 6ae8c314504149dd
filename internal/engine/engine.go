// Package engine drives a game from setup to game over. It owns the only
// loop in the system: it feeds handler requests to agents, hands their
// answers back, validates every step and publishes what happened on the
// event bus.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/phases"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// ErrStepBudgetExceeded marks a run that did not finish within MaxSteps
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

const (
	DefaultMaxSteps     = 5000
	DefaultAgentTimeout = 5 * time.Second
)

// Config holds the collaborators and limits of an Engine
type Config struct {
	// MaxSteps bounds the number of handler calls in one run
	MaxSteps int
	// AgentTimeout bounds a single agent round trip; zero disables it
	AgentTimeout time.Duration
	Shuffler     game.Shuffler
	EventBus     events.Bus
	Logger       zerolog.Logger
	// Seed is reported on the game started event
	Seed int64
}

// RunResult is the outcome of Run. Complete is false when the run stopped
// before game over; Err says why.
type RunResult struct {
	State    *game.GameState
	Complete bool
	Steps    int
	Winners  []core.Faction
	History  []states.Transition
	Err      error
}

// Engine runs games with a fixed set of phase handlers
type Engine struct {
	handlers     map[states.GamePhase]phases.Handler
	agent        agent.Agent
	eventBus     events.Bus
	logger       zerolog.Logger
	maxSteps     int
	agentTimeout time.Duration
	seed         int64
}

// New creates an engine whose decisions are answered by a
func New(cfg Config, a agent.Agent) *Engine {
	logger := cfg.Logger.With().Str("component", "Engine").Logger()
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBusWithLogger(logger)
	}
	return &Engine{
		handlers:     phases.NewHandlers(phases.Deps{Shuffler: cfg.Shuffler, Logger: logger}),
		agent:        a,
		eventBus:     cfg.EventBus,
		logger:       logger,
		maxSteps:     cfg.MaxSteps,
		agentTimeout: cfg.AgentTimeout,
		seed:         cfg.Seed,
	}
}

// EventBus returns the bus the engine publishes on
func (e *Engine) EventBus() events.Bus {
	return e.eventBus
}

// run is the state of one Run call
type run struct {
	*Engine
	ctx     context.Context
	gameID  string
	state   *game.GameState
	machine *states.StateMachine
	steps   int
}

// Run plays s until game over, the step budget runs out, ctx is cancelled or
// a handler breaks an invariant
func (e *Engine) Run(ctx context.Context, s *game.GameState) RunResult {
	gctx := states.NewGameContext(s.GameID, e.logger)
	r := &run{
		Engine:  e,
		ctx:     ctx,
		gameID:  s.GameID,
		state:   s,
		machine: states.NewStateMachine(gctx, e.eventBus),
	}

	e.eventBus.Publish(events.NewGameStartedEvent(r.gameID, factionNames(s.FactionList()), e.seed))
	r.logger.Info().
		Str("game_id", r.gameID).
		Strs("factions", factionNames(s.FactionList())).
		Int("max_steps", e.maxSteps).
		Msg("Game started")

	err := r.play()
	res := RunResult{
		State:    r.state,
		Complete: err == nil,
		Steps:    r.steps,
		Winners:  append([]core.Faction(nil), r.state.Winners...),
		History:  r.machine.GetHistory(),
		Err:      err,
	}
	gctx.Error = err

	winners := factionNames(res.Winners)
	gctx.Winners = winners
	e.eventBus.Publish(events.NewGameEndedEvent(r.gameID, winners, res.Complete, gctx.GetElapsedTime(), r.state.Turn, r.steps))

	ev := r.logger.Info()
	if err != nil {
		ev = r.logger.Error().Err(err)
	}
	ev.Str("game_id", r.gameID).
		Bool("complete", res.Complete).
		Strs("winners", winners).
		Int("turn", r.state.Turn).
		Int("steps", r.steps).
		Msg("Game ended")
	return res
}

// play walks the phase graph until game over
func (r *run) play() error {
	phase := r.state.Phase
	if phase != states.PhaseSetup && !phase.IsTerminal() {
		// resuming a saved game: bring the machine to the saved phase
		if err := r.resume(phase); err != nil {
			return err
		}
	}
	for !phase.IsTerminal() {
		next, err := r.playPhase(phase)
		if err != nil {
			return err
		}
		reason := fmt.Sprintf("%s complete", phase)
		if err := r.machine.TransitionTo(next, r.state.Turn, reason); err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvariant, err)
		}
		if phase == states.PhaseMentatPause && next == states.PhaseStorm {
			r.eventBus.Publish(events.NewTurnStartedEvent(r.gameID, r.state.Turn))
		}
		phase = next
	}
	r.state = game.SetPhase(r.state, phase)
	return nil
}

// resume replays the phase graph from setup up to target without running
// handlers, so transition validation holds for a restored state
func (r *run) resume(target states.GamePhase) error {
	for _, p := range states.TurnOrder() {
		if err := r.machine.TransitionTo(p, r.state.Turn, "resume"); err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvariant, err)
		}
		if p == target {
			return nil
		}
	}
	return core.Invariantf("cannot resume at phase %s", target)
}

// playPhase runs one handler from Initialize to Cleanup and returns the
// phase it asked for
func (r *run) playPhase(phase states.GamePhase) (states.GamePhase, error) {
	h, ok := r.handlers[phase]
	if !ok {
		return 0, core.Invariantf("no handler for phase %s", phase)
	}
	r.state = game.SetPhase(r.state, phase)

	if err := r.spend(phase); err != nil {
		return 0, err
	}
	res, err := h.Initialize(r.state)
	for {
		if err != nil {
			return 0, fmt.Errorf("%s: %w", phase, err)
		}
		if err := r.accept(phase, res); err != nil {
			return 0, err
		}
		if res.PhaseComplete {
			break
		}
		responses, cerr := r.collect(phase, res)
		if cerr != nil {
			return 0, cerr
		}
		if err := r.spend(phase); err != nil {
			return 0, err
		}
		res, err = h.ProcessStep(r.state, responses)
	}

	next, err := h.Cleanup(r.state)
	if err != nil {
		return 0, fmt.Errorf("%s cleanup: %w", phase, err)
	}
	if err := game.CheckInvariants(next); err != nil {
		return 0, fmt.Errorf("%s cleanup: %w", phase, err)
	}
	r.state = next
	return res.NextPhase, nil
}

// spend counts one handler call against the step budget
func (r *run) spend(phase states.GamePhase) error {
	if r.steps >= r.maxSteps {
		return fmt.Errorf("%w: %d steps, stopped in %s on turn %d", ErrStepBudgetExceeded, r.steps, phase, r.state.Turn)
	}
	r.steps++
	return nil
}

// accept validates a step result, publishes its events and adopts its state
func (r *run) accept(phase states.GamePhase, res phases.StepResult) error {
	if err := res.CheckContract(phase); err != nil {
		return err
	}
	if err := game.CheckInvariants(res.State); err != nil {
		return fmt.Errorf("%s: %w", phase, err)
	}
	r.state = res.State
	for _, ev := range res.Events {
		r.eventBus.Publish(events.NewPhaseEventPublished(r.gameID, r.state.Turn, phase.String(), ev))
	}
	return nil
}

// collect asks the agent for every pending request, in order. A failing
// agent is treated as passing.
func (r *run) collect(phase states.GamePhase, res phases.StepResult) ([]agent.Response, error) {
	responses := make([]agent.Response, 0, len(res.PendingRequests))
	for _, req := range res.PendingRequests {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
		r.eventBus.Publish(events.NewDecisionRequestedEvent(r.gameID, r.state.Turn, phase.String(), string(req.Faction), string(req.Type), res.Simultaneous))

		start := time.Now()
		resp := r.ask(req)
		r.eventBus.Publish(events.NewDecisionReceivedEvent(r.gameID, r.state.Turn, phase.String(), string(req.Faction), string(resp.ActionType), resp.Passed, time.Since(start)))
		responses = append(responses, resp)
	}
	return responses, nil
}

// ask performs one agent round trip under the agent timeout
func (r *run) ask(req agent.Request) agent.Response {
	ctx := r.ctx
	if r.agentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.agentTimeout)
		defer cancel()
	}

	resp, err := r.agent.Respond(ctx, req)
	if err == nil && resp.Faction == core.NoFaction {
		resp.Faction = req.Faction
	}
	if err == nil && resp.Faction != req.Faction {
		err = fmt.Errorf("%w: asked %s, answered %s", agent.ErrFactionMismatch, req.Faction, resp.Faction)
	}
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("faction", string(req.Faction)).
			Str("request", string(req.Type)).
			Int("turn", r.state.Turn).
			Msg("Agent failed, treating as pass")
		return agent.Pass(req.Faction)
	}
	return resp
}

func factionNames(fs []core.Faction) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
