package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

type setupStep int

const (
	setupTraitors setupStep = iota
	setupPrediction
)

// SetupHandler deals traitors and starting hands, then collects traitor
// selections followed by the Bene Gesserit prediction
type SetupHandler struct {
	shuffler game.Shuffler
	step     setupStep
	dealt    map[core.Faction][]core.LeaderID
	round    *round
}

// NewSetupHandler creates the setup phase handler
func NewSetupHandler(sh game.Shuffler) *SetupHandler {
	return &SetupHandler{shuffler: sh}
}

// Phase implements Handler
func (h *SetupHandler) Phase() states.GamePhase { return states.PhaseSetup }

// Initialize implements Handler
func (h *SetupHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.step = setupTraitors
	h.round = nil

	if s.Turn == 0 {
		s = game.AdvanceTurn(s)
	}
	st := newStep(s)

	next, dealt, err := game.DealTraitors(st.state, s.Catalog.Constants.TraitorCardsDealt)
	if err != nil {
		return StepResult{}, err
	}
	st.state = next
	h.dealt = dealt

	if err := h.dealStartingHands(st); err != nil {
		return StepResult{}, err
	}

	var reqs []agent.Request
	for _, f := range st.state.FactionList() {
		if len(dealt[f]) == 0 {
			continue
		}
		if rules.Capabilities(f).KeepsAllTraitors {
			if st.state, err = game.SetTraitors(st.state, f, dealt[f]); err != nil {
				return StepResult{}, err
			}
			st.event(events.EventTraitorSelected, map[string]interface{}{
				"faction":  string(f),
				"traitors": strs(dealt[f]),
			}, "%s keeps all %d traitors", f, len(dealt[f]))
			continue
		}
		reqs = append(reqs, newRequest(f, agent.RequestSelectTraitor, map[string]interface{}{
			agent.CtxDealtTraitors: strs(dealt[f]),
		}, agent.ActionSelectTraitor))
	}
	if len(reqs) == 0 {
		return h.startPrediction(st)
	}
	h.round = newRound(reqs)
	return st.wait(true, reqs...), nil
}

func (h *SetupHandler) dealStartingHands(st *step) error {
	for _, f := range st.state.FactionList() {
		setup, _ := st.state.Catalog.FactionSetup(f)
		n := setup.StartingCards
		if n == 0 {
			n = 1
		}
		var cards []core.CardID
		for i := 0; i < n; i++ {
			next, card, err := game.DrawTreachery(st.state, h.shuffler)
			if err != nil {
				return err
			}
			if next, err = game.GiveCard(next, f, card); err != nil {
				return err
			}
			st.state = next
			cards = append(cards, card)
		}
		st.event(events.EventCardsDealt, map[string]interface{}{
			"faction": string(f),
			"count":   len(cards),
		}, "%s is dealt %d treachery cards", f, len(cards))
	}
	return nil
}

// ProcessStep implements Handler
func (h *SetupHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	if h.round == nil {
		return st.complete(states.PhaseStorm), nil
	}
	h.round.record(responses)
	if !h.round.done() {
		return st.wait(true, h.round.outstanding()...), nil
	}

	switch h.step {
	case setupTraitors:
		for _, f := range h.round.factions() {
			resp, _ := h.round.answer(f)
			choice := core.LeaderID(resp.String(agent.KeyTraitor))
			res := rules.ValidateTraitorSelection(h.dealt[f], choice)
			if !res.Valid {
				if !resp.Passed {
					st.reject(f, string(agent.ActionSelectTraitor), res)
				}
				choice = h.dealt[f][0]
			}
			var err error
			if st.state, err = game.SetTraitors(st.state, f, []core.LeaderID{choice}); err != nil {
				return StepResult{}, err
			}
			st.event(events.EventTraitorSelected, map[string]interface{}{
				"faction": string(f),
			}, "%s selects a traitor", f)
		}
		return h.startPrediction(st)

	case setupPrediction:
		f := h.round.factions()[0]
		resp, _ := h.round.answer(f)
		p := defaultPrediction(st.state, f)
		if !resp.Passed {
			target := core.Faction(resp.String(agent.KeyFaction))
			turn := resp.IntOr(agent.KeyTurn, 0)
			if res := rules.ValidatePrediction(st.state, target, turn); res.Valid {
				p = game.Prediction{Faction: target, Turn: turn}
			} else {
				st.reject(f, string(agent.ActionPredict), res)
			}
		}
		st.state = game.SetPrediction(st.state, p)
		st.event(events.EventPredictionMade, map[string]interface{}{
			"faction": string(f),
		}, "%s seals a prediction", f)
		h.round = nil
	}
	return st.complete(states.PhaseStorm), nil
}

func (h *SetupHandler) startPrediction(st *step) (StepResult, error) {
	h.step = setupPrediction
	h.round = nil
	predictor, ok := rules.FactionWith(st.state, func(c rules.Capability) bool { return c.PredictsWinner })
	if !ok {
		return st.complete(states.PhaseStorm), nil
	}
	var others []string
	for _, f := range st.state.FactionList() {
		if f != predictor {
			others = append(others, string(f))
		}
	}
	req := newRequest(predictor, agent.RequestPredictWinner, map[string]interface{}{
		agent.CtxFactions: others,
		agent.CtxMaxTurns: st.state.Variant.MaxTurns,
	}, agent.ActionPredict)
	h.round = newRound([]agent.Request{req})
	return st.wait(true, req), nil
}

// defaultPrediction picks the first other faction winning on the last turn
func defaultPrediction(s *game.GameState, predictor core.Faction) game.Prediction {
	for _, f := range s.FactionList() {
		if f != predictor {
			return game.Prediction{Faction: f, Turn: s.Variant.MaxTurns}
		}
	}
	return game.Prediction{}
}

// Cleanup implements Handler
func (h *SetupHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	h.round = nil
	h.dealt = nil
	return s, nil
}
