package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// CharityHandler offers CHOAM charity to every eligible faction at once
type CharityHandler struct {
	round *round
}

// NewCharityHandler creates the CHOAM charity phase handler
func NewCharityHandler() *CharityHandler {
	return &CharityHandler{}
}

// Phase implements Handler
func (h *CharityHandler) Phase() states.GamePhase { return states.PhaseChoamCharity }

// Initialize implements Handler
func (h *CharityHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.round = nil
	st := newStep(s)
	var reqs []agent.Request
	for _, f := range s.StormOrder {
		if s.CharityClaimedThisTurn(f) {
			continue
		}
		amount := rules.CharityAmount(s, f)
		if amount == 0 {
			continue
		}
		reqs = append(reqs, newRequest(f, agent.RequestClaimCharity, map[string]interface{}{
			agent.CtxCharityAmount: amount,
			agent.CtxSpice:         s.Factions[f].Spice,
		}, agent.ActionClaimCharity, agent.ActionPass))
	}
	if len(reqs) == 0 {
		return st.complete(states.PhaseBidding), nil
	}
	h.round = newRound(reqs)
	return st.wait(true, reqs...), nil
}

// ProcessStep implements Handler
func (h *CharityHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	if h.round == nil {
		return st.complete(states.PhaseBidding), nil
	}
	h.round.record(responses)
	if !h.round.done() {
		return st.wait(true, h.round.outstanding()...), nil
	}
	for _, f := range h.round.factions() {
		resp, _ := h.round.answer(f)
		if resp.Passed || resp.ActionType != agent.ActionClaimCharity {
			continue
		}
		if err := claimCharity(st, f); err != nil {
			return StepResult{}, err
		}
	}
	h.round = nil
	return st.complete(states.PhaseBidding), nil
}

// claimCharity pays a validated claim from the bank and records it for the
// turn so a second claim is rejected
func claimCharity(st *step, f core.Faction) error {
	res := rules.ValidateCharity(st.state, f)
	if !res.Valid {
		st.reject(f, string(agent.ActionClaimCharity), res)
		return nil
	}
	amount := res.Int("amount")
	next, err := game.TransferSpice(st.state, core.NoFaction, f, amount)
	if err != nil {
		return err
	}
	st.state = game.RecordCharity(next, f)
	st.event(events.EventCharityClaimed, map[string]interface{}{
		"faction": string(f),
		"amount":  amount,
	}, "%s receives %d spice from CHOAM", f, amount)
	return nil
}

// Cleanup implements Handler
func (h *CharityHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	h.round = nil
	return s, nil
}
