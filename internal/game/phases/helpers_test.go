package phases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/testutil"
)

// scripts seats a ScriptedAgent for every faction
func scripts(factions ...core.Faction) (agent.Table, map[core.Faction]*agent.ScriptedAgent) {
	table := agent.Table{}
	byFaction := map[core.Faction]*agent.ScriptedAgent{}
	for _, f := range factions {
		a := agent.NewScriptedAgent()
		table[f] = a
		byFaction[f] = a
	}
	return table, byFaction
}

// drive runs a handler to completion, answering every request with a
func drive(t *testing.T, h Handler, s *game.GameState, a agent.Agent) (*game.GameState, []events.PhaseEvent) {
	t.Helper()
	res, err := h.Initialize(s)
	require.NoError(t, err)
	var evs []events.PhaseEvent
	for i := 0; ; i++ {
		require.Less(t, i, 500, "%s did not complete", h.Phase())
		require.NoError(t, res.CheckContract(h.Phase()))
		testutil.RequireInvariants(t, res.State)
		evs = append(evs, res.Events...)
		if res.PhaseComplete {
			break
		}
		var responses []agent.Response
		for _, req := range res.PendingRequests {
			resp, err := a.Respond(context.Background(), req)
			require.NoError(t, err)
			responses = append(responses, resp)
		}
		res, err = h.ProcessStep(res.State, responses)
		require.NoError(t, err)
	}
	next, err := h.Cleanup(res.State)
	require.NoError(t, err)
	testutil.RequireInvariants(t, next)
	return next, evs
}

func ofType(evs []events.PhaseEvent, t events.PhaseEventType) []events.PhaseEvent {
	var out []events.PhaseEvent
	for _, e := range evs {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// rejectedCodes collects the codes of every VALIDATION_FAILED event
func rejectedCodes(evs []events.PhaseEvent) []string {
	var out []string
	for _, e := range ofType(evs, events.EventValidationFailed) {
		out = append(out, e.Data["codes"].([]string)...)
	}
	return out
}

func act(a agent.ActionType, data map[string]interface{}) agent.Response {
	return agent.Act(core.NoFaction, a, data)
}

func pass() agent.Response {
	return agent.Pass(core.NoFaction)
}
