package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// SpiceBlowHandler reveals spice cards onto discard piles A and B. A
// Shai-Hulud from the second turn on opens a Nexus for alliance changes.
type SpiceBlowHandler struct {
	shuffler game.Shuffler
	round    *round
}

// NewSpiceBlowHandler creates the spice blow phase handler
func NewSpiceBlowHandler(sh game.Shuffler) *SpiceBlowHandler {
	return &SpiceBlowHandler{shuffler: sh}
}

// Phase implements Handler
func (h *SpiceBlowHandler) Phase() states.GamePhase { return states.PhaseSpiceBlow }

// Initialize implements Handler
func (h *SpiceBlowHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.round = nil
	st := newStep(s)

	nexus := false
	for _, pileB := range []bool{false, true} {
		worm, err := h.blow(st, pileB)
		if err != nil {
			return StepResult{}, err
		}
		nexus = nexus || worm
	}
	if !nexus || len(st.state.Factions) < 2 {
		return st.complete(states.PhaseChoamCharity), nil
	}

	st.event(events.EventNexusStarted, nil, "a Nexus opens on turn %d", st.state.Turn)
	var reqs []agent.Request
	for _, f := range st.state.FactionList() {
		var others []string
		for _, o := range st.state.FactionList() {
			if o != f {
				others = append(others, string(o))
			}
		}
		reqs = append(reqs, newRequest(f, agent.RequestAllianceDecision, map[string]interface{}{
			agent.CtxAlly:     string(st.state.AllyOf(f)),
			agent.CtxFactions: others,
		}, agent.ActionFormAlliance, agent.ActionBreakAlliance, agent.ActionPass))
	}
	h.round = newRound(reqs)
	return st.wait(true, reqs...), nil
}

// blow draws from the deck until a territory card lands on the pile and
// reports whether a sandworm appeared on a turn that opens a Nexus
func (h *SpiceBlowHandler) blow(st *step, pileB bool) (bool, error) {
	nexus := false
	cat := st.state.Catalog
	limit := len(cat.SpiceCards()) + 1
	for i := 0; i < limit; i++ {
		next, id, err := game.DrawSpiceCard(st.state, h.shuffler)
		if err != nil {
			return false, err
		}
		st.state = next
		card, ok := cat.SpiceCard(id)
		if !ok {
			return false, core.Invariantf("unknown spice card %q", id)
		}

		if !card.Worm {
			if rules.LocationInStorm(st.state, card.Territory, card.Sector) {
				st.event(events.EventSpiceDestroyed, map[string]interface{}{
					"territory": string(card.Territory),
					"sector":    card.Sector,
					"amount":    card.Amount,
					"cause":     "storm",
				}, "spice blow in %s lands in the storm", card.Territory)
			} else {
				st.state = game.PlaceSpice(st.state, card.Territory, card.Sector, card.Amount)
				st.event(events.EventSpicePlaced, map[string]interface{}{
					"territory": string(card.Territory),
					"sector":    card.Sector,
					"amount":    card.Amount,
				}, "%d spice blows in %s", card.Amount, card.Territory)
			}
			st.state = game.DiscardSpiceCard(st.state, pileB, id)
			return nexus, nil
		}

		st.event(events.EventShaiHulud, map[string]interface{}{
			"card": id,
			"pile": pileName(pileB),
		}, "Shai-Hulud appears on pile %s", pileName(pileB))
		if st.state.Turn > 1 {
			if err := h.devour(st, pileB); err != nil {
				return false, err
			}
			nexus = true
		}
		st.state = game.DiscardSpiceCard(st.state, pileB, id)
	}
	return false, core.Invariantf("spice deck yielded no territory card in %d draws", limit)
}

// devour removes everything in the territory of the last territory card on
// the pile. Worm-immune factions survive.
func (h *SpiceBlowHandler) devour(st *step, pileB bool) error {
	t, ok := lastTerritory(st.state, pileB)
	if !ok {
		return nil
	}
	for _, f := range st.state.FactionList() {
		if rules.Capabilities(f).WormImmune {
			continue
		}
		fs, _ := st.state.Faction(f)
		for _, stack := range fs.StacksIn(t) {
			var err error
			st.state, err = game.ForcesToTanks(st.state, f, t, stack.Sector, stack.Regular, stack.Elite, stack.Advisors)
			if err != nil {
				return err
			}
			st.event(events.EventWormDevoured, map[string]interface{}{
				"faction":   string(f),
				"territory": string(t),
				"units":     stack.Total(),
			}, "Shai-Hulud devours %d %s units in %s", stack.Total(), f, t)
		}
	}
	var removed int
	st.state, removed = game.RemoveTerritorySpice(st.state, t)
	if removed > 0 {
		st.event(events.EventSpiceDestroyed, map[string]interface{}{
			"territory": string(t),
			"amount":    removed,
			"cause":     "worm",
		}, "Shai-Hulud swallows %d spice in %s", removed, t)
	}
	return nil
}

// lastTerritory returns the territory of the most recent non-worm card on
// a discard pile
func lastTerritory(s *game.GameState, pileB bool) (core.TerritoryID, bool) {
	pile := s.Decks.SpiceDiscardA
	if pileB {
		pile = s.Decks.SpiceDiscardB
	}
	for i := len(pile) - 1; i >= 0; i-- {
		if card, ok := s.Catalog.SpiceCard(pile[i]); ok && !card.Worm {
			return card.Territory, true
		}
	}
	return "", false
}

func pileName(pileB bool) string {
	if pileB {
		return "B"
	}
	return "A"
}

// ProcessStep implements Handler
func (h *SpiceBlowHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	if h.round == nil {
		return st.complete(states.PhaseChoamCharity), nil
	}
	h.round.record(responses)
	if !h.round.done() {
		return st.wait(true, h.round.outstanding()...), nil
	}

	proposals := map[core.Faction]core.Faction{}
	for _, f := range h.round.factions() {
		resp, _ := h.round.answer(f)
		if resp.Passed {
			continue
		}
		switch resp.ActionType {
		case agent.ActionBreakAlliance:
			ally := st.state.AllyOf(f)
			if ally == core.NoFaction {
				st.reject(f, string(resp.ActionType), core.Reject(core.CodeNotEligible, string(f)+" has no alliance to break"))
				continue
			}
			st.state = game.BreakAlliance(st.state, f)
			st.event(events.EventAllianceBroken, map[string]interface{}{
				"faction": string(f),
				"ally":    string(ally),
			}, "%s breaks its alliance with %s", f, ally)
		case agent.ActionFormAlliance:
			proposals[f] = core.Faction(resp.String(agent.KeyTarget))
		}
	}

	for _, f := range st.state.StormOrder {
		target, ok := proposals[f]
		if !ok {
			continue
		}
		res := rules.ValidateAllianceProposal(st.state, f, target)
		if !res.Valid {
			if st.state.AllyOf(f) != target {
				st.reject(f, string(agent.ActionFormAlliance), res)
			}
			continue
		}
		if proposals[target] != f {
			continue
		}
		var err error
		if st.state, err = game.FormAlliance(st.state, f, target); err != nil {
			return StepResult{}, err
		}
		st.event(events.EventAllianceFormed, map[string]interface{}{
			"factions": []string{string(f), string(target)},
		}, "%s and %s form an alliance", f, target)
	}
	h.round = nil
	return st.complete(states.PhaseChoamCharity), nil
}

// Cleanup implements Handler
func (h *SpiceBlowHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	h.round = nil
	return s, nil
}
