package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// StormHandler moves the storm. On the first turn the two factions seated
// either side of the storm dial; afterwards the storm deck decides.
type StormHandler struct {
	shuffler game.Shuffler
	round    *round
}

// NewStormHandler creates the storm phase handler
func NewStormHandler(sh game.Shuffler) *StormHandler {
	return &StormHandler{shuffler: sh}
}

// Phase implements Handler
func (h *StormHandler) Phase() states.GamePhase { return states.PhaseStorm }

// Initialize implements Handler
func (h *StormHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.round = nil
	st := newStep(s)

	if s.Turn > 1 {
		next, card := game.DrawStormCard(s, h.shuffler)
		st.state = next
		st.event(events.EventStormDialed, map[string]interface{}{
			"card":    card,
			"sectors": card,
		}, "storm card moves the storm %d sectors", card)
		if err := h.move(st, card); err != nil {
			return StepResult{}, err
		}
		return st.complete(states.PhaseSpiceBlow), nil
	}

	var reqs []agent.Request
	for _, f := range stormDialers(s) {
		reqs = append(reqs, newRequest(f, agent.RequestDialStorm, map[string]interface{}{
			agent.CtxMaxDial: s.Catalog.Constants.StormDialMax,
		}, agent.ActionDialStorm))
	}
	h.round = newRound(reqs)
	return st.wait(true, reqs...), nil
}

// stormDialers returns the factions seated nearest the storm on either side
func stormDialers(s *game.GameState) []core.Faction {
	order := s.StormOrder
	if len(order) < 2 {
		return order
	}
	return []core.Faction{order[0], order[len(order)-1]}
}

// ProcessStep implements Handler
func (h *StormHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	if h.round == nil {
		return st.complete(states.PhaseSpiceBlow), nil
	}
	h.round.record(responses)
	if !h.round.done() {
		return st.wait(true, h.round.outstanding()...), nil
	}

	total := 0
	dials := map[string]interface{}{}
	for _, f := range h.round.factions() {
		resp, _ := h.round.answer(f)
		dial := 0
		if !resp.Passed {
			dial = resp.IntOr(agent.KeyDial, 0)
			if res := rules.ValidateStormDial(s, dial); !res.Valid {
				st.reject(f, string(agent.ActionDialStorm), res)
				dial = 0
			}
		}
		dials[string(f)] = dial
		total += dial
	}
	h.round = nil
	st.event(events.EventStormDialed, map[string]interface{}{
		"dials":   dials,
		"sectors": total,
	}, "storm dialed for %d sectors", total)
	if err := h.move(st, total); err != nil {
		return StepResult{}, err
	}
	return st.complete(states.PhaseSpiceBlow), nil
}

// move advances the storm, kills exposed forces and blows away spice
func (h *StormHandler) move(st *step, sectors int) error {
	next, swept := game.MoveStorm(st.state, sectors)
	st.state = next
	st.event(events.EventStormMoved, map[string]interface{}{
		"sectors": sectors,
		"to":      next.StormSector,
		"order":   strs(next.StormOrder),
	}, "storm moves to sector %d", next.StormSector)
	if len(swept) == 0 {
		return nil
	}
	hit := make(map[int]bool, len(swept))
	for _, sec := range swept {
		hit[sec] = true
	}

	cat := st.state.Catalog
	for _, f := range st.state.FactionList() {
		fs, _ := st.state.Faction(f)
		for _, stack := range append([]game.ForceStack(nil), fs.Forces...) {
			def, ok := cat.Territory(stack.Territory)
			if !ok || def.ProtectedFromStorm() || !hit[stack.Sector] {
				continue
			}
			// advisors ride out the storm
			lost := game.ForceCount{Regular: stack.Regular, Elite: stack.Elite}
			if rules.Capabilities(f).HalfStormLosses {
				lost = rules.AbsorbLosses((stack.Fighters()+1)/2, lost, 1)
			}
			if lost.Total() == 0 {
				continue
			}
			var err error
			st.state, err = game.ForcesToTanks(st.state, f, stack.Territory, stack.Sector, lost.Regular, lost.Elite, 0)
			if err != nil {
				return err
			}
			st.event(events.EventForcesKilledByStorm, map[string]interface{}{
				"faction":   string(f),
				"territory": string(stack.Territory),
				"sector":    stack.Sector,
				"regular":   lost.Regular,
				"elite":     lost.Elite,
			}, "storm kills %d %s units in %s", lost.Total(), f, stack.Territory)
		}
	}

	var removed int
	st.state, removed = game.RemoveSpiceIf(st.state, func(sp game.SpiceStack) bool { return hit[sp.Sector] })
	if removed > 0 {
		st.event(events.EventSpiceDestroyed, map[string]interface{}{
			"amount": removed,
			"cause":  "storm",
		}, "storm destroys %d spice", removed)
	}
	return nil
}

// Cleanup implements Handler
func (h *StormHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	h.round = nil
	return s, nil
}
