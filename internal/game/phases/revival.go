package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// RevivalHandler asks every faction with losses how many forces to buy
// back. Free revival happens even when a faction passes.
type RevivalHandler struct {
	round *round
}

// NewRevivalHandler creates the revival phase handler
func NewRevivalHandler() *RevivalHandler {
	return &RevivalHandler{}
}

// Phase implements Handler
func (h *RevivalHandler) Phase() states.GamePhase { return states.PhaseRevival }

// revivableLeaders lists the dead leaders the faction could buy back now
func revivableLeaders(s *game.GameState, f core.Faction) []string {
	var out []string
	for _, l := range s.Factions[f].Leaders {
		if rules.ValidateLeaderRevival(s, f, l.ID).Valid {
			out = append(out, string(l.ID))
		}
	}
	return out
}

// Initialize implements Handler
func (h *RevivalHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.round = nil
	st := newStep(s)
	consts := s.Catalog.Constants
	var reqs []agent.Request
	for _, f := range s.StormOrder {
		fs := s.Factions[f]
		leaders := revivableLeaders(s, f)
		if fs.Tanks.Total() == 0 && len(leaders) == 0 {
			continue
		}
		reqs = append(reqs, newRequest(f, agent.RequestReviveForces, map[string]interface{}{
			agent.CtxFreeRevival:  fs.FreeRevival,
			agent.CtxTanksRegular: fs.Tanks.Regular,
			agent.CtxTanksElite:   fs.Tanks.Elite,
			agent.CtxMaxRevival:   consts.MaxForcesRevivedPerTurn,
			agent.CtxRevivalCost:  consts.RevivalCostPerForce,
			agent.CtxSpice:        fs.Spice,
			agent.CtxDeadLeaders:  leaders,
		}, agent.ActionRevive, agent.ActionReviveLeader, agent.ActionPass))
	}
	if len(reqs) == 0 {
		return st.complete(states.PhaseShipmentMovement), nil
	}
	h.round = newRound(reqs)
	return st.wait(true, reqs...), nil
}

// ProcessStep implements Handler
func (h *RevivalHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	if h.round == nil {
		return st.complete(states.PhaseShipmentMovement), nil
	}
	h.round.record(responses)
	if !h.round.done() {
		return st.wait(true, h.round.outstanding()...), nil
	}
	for _, f := range h.round.factions() {
		resp, _ := h.round.answer(f)
		if err := reviveForces(st, f, resp); err != nil {
			return StepResult{}, err
		}
		if resp.Passed {
			continue
		}
		if id := resp.String(agent.KeyLeader); id != "" {
			if err := reviveLeader(st, f, core.LeaderID(id)); err != nil {
				return StepResult{}, err
			}
		}
	}
	h.round = nil
	return st.complete(states.PhaseShipmentMovement), nil
}

func reviveForces(st *step, f core.Faction, resp agent.Response) error {
	if st.state.Factions[f].Tanks.Total() == 0 {
		return nil
	}
	paid, elite := 0, 0
	if !resp.Passed {
		paid = resp.IntOr(agent.KeyCount, 0)
		elite = resp.IntOr(agent.KeyElite, 0)
	}
	res := rules.ValidateRevival(st.state, f, paid, elite)
	if !res.Valid {
		st.reject(f, string(agent.ActionRevive), res)
		// an over-limit request is capped; anything else falls back to free revival
		consts := st.state.Catalog.Constants
		res = rules.ValidateRevival(st.state, f,
			min(max(paid, 0), consts.MaxForcesRevivedPerTurn),
			min(max(elite, 0), consts.MaxEliteRevivedPerTurn))
		if !res.Valid {
			if res = rules.ValidateRevival(st.state, f, 0, 0); !res.Valid {
				return nil
			}
		}
	}
	regular, eliteRevived, cost := res.Int("regular"), res.Int("elite"), res.Int("cost")
	if regular+eliteRevived == 0 {
		return nil
	}
	next, err := game.TransferSpice(st.state, f, core.NoFaction, cost)
	if err != nil {
		return err
	}
	if next, err = game.ReviveForces(next, f, regular, eliteRevived); err != nil {
		return err
	}
	st.state = next
	st.event(events.EventForcesRevived, map[string]interface{}{
		"faction": string(f),
		"regular": regular,
		"elite":   eliteRevived,
		"free":    res.Int("free"),
		"cost":    cost,
	}, "%s revives %d forces for %d spice", f, regular+eliteRevived, cost)
	return nil
}

func reviveLeader(st *step, f core.Faction, id core.LeaderID) error {
	res := rules.ValidateLeaderRevival(st.state, f, id)
	if !res.Valid {
		st.reject(f, string(agent.ActionReviveLeader), res)
		return nil
	}
	cost := res.Int("cost")
	next, err := game.TransferSpice(st.state, f, core.NoFaction, cost)
	if err != nil {
		return err
	}
	if next, err = game.ReviveLeader(next, id); err != nil {
		return err
	}
	st.state = next
	st.event(events.EventLeaderRevived, map[string]interface{}{
		"faction": string(f),
		"leader":  string(id),
		"cost":    cost,
	}, "%s revives %s for %d spice", f, id, cost)
	return nil
}

// Cleanup implements Handler
func (h *RevivalHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	h.round = nil
	return s, nil
}
