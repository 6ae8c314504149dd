package phases

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// MentatHandler pays bribes, checks for victory and closes the turn
type MentatHandler struct {
	checker  *rules.WinConditionChecker
	gameOver bool
}

// NewMentatHandler creates the mentat pause phase handler
func NewMentatHandler(logger zerolog.Logger) *MentatHandler {
	return &MentatHandler{checker: rules.NewWinConditionChecker(logger)}
}

// Phase implements Handler
func (h *MentatHandler) Phase() states.GamePhase { return states.PhaseMentatPause }

// Initialize implements Handler
func (h *MentatHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.gameOver = false
	st := newStep(s)

	bribes := map[string]interface{}{}
	for _, f := range s.FactionList() {
		if b := s.Factions[f].Bribes; b > 0 {
			bribes[string(f)] = b
		}
	}
	st.state = game.PayBribes(st.state)
	if len(bribes) > 0 {
		st.event(events.EventBribesPaid, bribes, "bribes paid to %d factions", len(bribes))
	}

	v := h.checker.CheckVictory(st.state)
	if v.GameOver {
		h.gameOver = true
		st.state = game.DeclareWinners(st.state, v.Winners)
		st.event(events.EventVictory, map[string]interface{}{
			"winners": strs(v.Winners),
			"reason":  v.Reason,
			"turn":    st.state.Turn,
		}, "%v win on turn %d (%s)", v.Winners, st.state.Turn, v.Reason)
		return st.complete(states.PhaseGameOver), nil
	}
	st.event(events.EventTurnEnded, map[string]interface{}{
		"turn": st.state.Turn,
	}, "turn %d ends", st.state.Turn)
	return st.complete(states.PhaseStorm), nil
}

// ProcessStep implements Handler
func (h *MentatHandler) ProcessStep(s *game.GameState, _ []agent.Response) (StepResult, error) {
	next := states.PhaseStorm
	if h.gameOver {
		next = states.PhaseGameOver
	}
	return newStep(s).complete(next), nil
}

// Cleanup advances the turn unless the game is over
func (h *MentatHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	if h.gameOver {
		return s, nil
	}
	return game.AdvanceTurn(s), nil
}
