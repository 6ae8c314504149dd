package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// CollectionHandler lets every force standing on spice harvest it. It
// needs no decisions.
type CollectionHandler struct{}

// NewCollectionHandler creates the spice collection phase handler
func NewCollectionHandler() *CollectionHandler {
	return &CollectionHandler{}
}

// Phase implements Handler
func (h *CollectionHandler) Phase() states.GamePhase { return states.PhaseSpiceCollection }

// Initialize implements Handler
func (h *CollectionHandler) Initialize(s *game.GameState) (StepResult, error) {
	st := newStep(s)
	consts := s.Catalog.Constants
	for _, f := range s.StormOrder {
		rate := consts.SpicePerForce
		if rules.HasOrnithopters(s, f) {
			rate = consts.SpicePerForceWithOrnithopters
		}
		for _, stack := range s.Factions[f].Forces {
			if stack.Fighters() == 0 || st.state.SpiceAt(stack.Territory, stack.Sector) == 0 {
				continue
			}
			if rules.LocationInStorm(st.state, stack.Territory, stack.Sector) {
				continue
			}
			next, taken, err := game.CollectSpice(st.state, f, stack.Territory, stack.Sector, stack.Fighters()*rate)
			if err != nil {
				return StepResult{}, err
			}
			st.state = next
			if taken > 0 {
				st.event(events.EventSpiceCollected, map[string]interface{}{
					"faction":   string(f),
					"territory": string(stack.Territory),
					"sector":    stack.Sector,
					"amount":    taken,
				}, "%s collects %d spice in %s", f, taken, stack.Territory)
			}
		}
	}
	return st.complete(states.PhaseMentatPause), nil
}

// ProcessStep implements Handler
func (h *CollectionHandler) ProcessStep(s *game.GameState, _ []agent.Response) (StepResult, error) {
	return newStep(s).complete(states.PhaseMentatPause), nil
}

// Cleanup implements Handler
func (h *CollectionHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	return s, nil
}
