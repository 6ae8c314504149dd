package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/phases"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/testutil"
)

func newTestEngine(a agent.Agent, maxSteps int) *Engine {
	return New(Config{
		MaxSteps:     maxSteps,
		AgentTimeout: time.Second,
		Shuffler:     testutil.NewTestShuffler(7),
		EventBus:     events.NewEventBusWithLogger(testutil.NopLogger()),
		Logger:       testutil.NopLogger(),
	}, a)
}

func shortGame(t *testing.T, maxTurns int, factions ...core.Faction) *game.GameState {
	t.Helper()
	s := testutil.NewTestState(t, factions...)
	s.Variant.MaxTurns = maxTurns
	return s
}

func TestRun_HeuristicGameCompletes(t *testing.T) {
	e := newTestEngine(agent.NewHeuristicAgent(42), 50000)
	rec := subscribers.NewRecorder("recorder")
	e.EventBus().Subscribe(rec)

	res := e.Run(context.Background(), testutil.NewTestState(t))

	require.NoError(t, res.Err)
	assert.True(t, res.Complete)
	assert.NotEmpty(t, res.Winners)
	assert.Equal(t, res.State.Winners, res.Winners)
	assert.Equal(t, states.PhaseGameOver, res.State.Phase)
	assert.LessOrEqual(t, res.State.Turn, res.State.Variant.MaxTurns)
	testutil.RequireInvariants(t, res.State)

	require.NotEmpty(t, res.History)
	assert.Equal(t, states.PhaseSetup, res.History[0].From)
	assert.Equal(t, states.PhaseGameOver, res.History[len(res.History)-1].To)

	assert.NotEmpty(t, rec.OfType(events.EventCardsDealt))
	assert.Len(t, rec.OfType(events.EventVictory), 1)
	assert.Len(t, rec.OfType(events.EventTurnEnded), res.State.Turn-1)
}

func TestRun_Deterministic(t *testing.T) {
	play := func() RunResult {
		return newTestEngine(agent.NewHeuristicAgent(9), 50000).
			Run(context.Background(), testutil.NewTestState(t, core.Atreides, core.Harkonnen, core.Fremen))
	}
	a, b := play(), play()
	require.NoError(t, a.Err)
	require.NoError(t, b.Err)
	assert.Equal(t, a.Winners, b.Winners)
	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.State.Turn, b.State.Turn)
}

func TestRun_PassingAgentReachesFinalTurn(t *testing.T) {
	e := newTestEngine(agent.PassAgent{}, 0)
	transitions := 0
	e.EventBus().SubscribeFunc(events.TypeStateTransition, func(events.Event) { transitions++ })

	res := e.Run(context.Background(), shortGame(t, 2, core.Atreides, core.Harkonnen))

	require.NoError(t, res.Err)
	assert.True(t, res.Complete)
	assert.Equal(t, 2, res.State.Turn)
	// setup plus two full turns of nine phases, the last one into game over
	assert.Equal(t, 1+9+9, transitions)
	assert.Len(t, res.History, transitions)
}

func TestRun_StepBudget(t *testing.T) {
	e := newTestEngine(agent.PassAgent{}, 3)

	res := e.Run(context.Background(), testutil.NewTestState(t, core.Atreides, core.Harkonnen))

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrStepBudgetExceeded)
	assert.False(t, res.Complete)
	assert.Equal(t, 3, res.Steps)
	assert.Empty(t, res.Winners)
}

func TestRun_FailingAgentPasses(t *testing.T) {
	tests := []struct {
		name  string
		agent agent.Agent
	}{
		{
			name: "error",
			agent: agent.Func(func(context.Context, agent.Request) (agent.Response, error) {
				return agent.Response{}, errors.New("agent crashed")
			}),
		},
		{
			name: "wrong faction",
			agent: agent.Func(func(_ context.Context, req agent.Request) (agent.Response, error) {
				other := core.Atreides
				if req.Faction == core.Atreides {
					other = core.Harkonnen
				}
				return agent.Pass(other), nil
			}),
		},
		{
			name: "timeout",
			agent: agent.Func(func(ctx context.Context, req agent.Request) (agent.Response, error) {
				<-ctx.Done()
				return agent.Response{}, ctx.Err()
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Config{
				AgentTimeout: time.Millisecond,
				EventBus:     events.NewEventBusWithLogger(testutil.NopLogger()),
				Logger:       testutil.NopLogger(),
			}, tt.agent)
			var received []*events.DecisionReceivedEvent
			e.EventBus().SubscribeFunc(events.TypeDecisionReceived, func(ev events.Event) {
				received = append(received, ev.(*events.DecisionReceivedEvent))
			})

			res := e.Run(context.Background(), shortGame(t, 1, core.Atreides, core.Harkonnen))

			require.NoError(t, res.Err)
			assert.True(t, res.Complete)
			require.NotEmpty(t, received)
			for _, ev := range received {
				assert.True(t, ev.Passed)
			}
		})
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestEngine(agent.PassAgent{}, 0).Run(ctx, testutil.NewTestState(t, core.Atreides, core.Harkonnen))

	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, res.Complete)
}

func TestRun_PublishesLifecycleEvents(t *testing.T) {
	e := newTestEngine(agent.PassAgent{}, 0)
	var started, ended, turns, requested int
	var endEvent *events.GameEndedEvent
	e.EventBus().SubscribeFunc(events.TypeGameStarted, func(events.Event) { started++ })
	e.EventBus().SubscribeFunc(events.TypeTurnStarted, func(events.Event) { turns++ })
	e.EventBus().SubscribeFunc(events.TypeDecisionRequested, func(events.Event) { requested++ })
	e.EventBus().SubscribeFunc(events.TypeGameEnded, func(ev events.Event) {
		ended++
		endEvent = ev.(*events.GameEndedEvent)
	})

	res := e.Run(context.Background(), shortGame(t, 3, core.Atreides, core.Fremen))

	require.NoError(t, res.Err)
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, ended)
	assert.Equal(t, 2, turns)
	assert.Positive(t, requested)
	require.NotNil(t, endEvent)
	assert.True(t, endEvent.Complete)
	assert.Equal(t, 3, endEvent.Turn())
	assert.Equal(t, res.Steps, endEvent.Steps)
}

func TestRun_ResumesSavedPhase(t *testing.T) {
	s := shortGame(t, 1, core.Atreides, core.Harkonnen)
	s = game.SetPhase(s, states.PhaseMentatPause)

	res := newTestEngine(agent.PassAgent{}, 0).Run(context.Background(), s)

	require.NoError(t, res.Err)
	assert.True(t, res.Complete)
	assert.Equal(t, 1, res.Steps)
	last := res.History[len(res.History)-1]
	assert.Equal(t, states.PhaseMentatPause, last.From)
	assert.Equal(t, states.PhaseGameOver, last.To)
}

// brokenHandler completes while still asking for a decision
type brokenHandler struct {
	phases.Handler
}

func (brokenHandler) Initialize(s *game.GameState) (phases.StepResult, error) {
	return phases.StepResult{
		State:           s,
		PhaseComplete:   true,
		NextPhase:       states.PhaseStorm,
		PendingRequests: []agent.Request{{Faction: core.Atreides, Type: agent.RequestDialStorm}},
	}, nil
}

func TestRun_ContractViolationStops(t *testing.T) {
	e := newTestEngine(agent.PassAgent{}, 0)
	e.handlers[states.PhaseSetup] = brokenHandler{Handler: e.handlers[states.PhaseSetup]}

	res := e.Run(context.Background(), testutil.NewTestState(t, core.Atreides, core.Harkonnen))

	require.Error(t, res.Err)
	assert.True(t, core.IsInvariant(res.Err))
	assert.False(t, res.Complete)
	assert.Equal(t, 1, res.Steps)
	assert.Empty(t, res.History)
}
