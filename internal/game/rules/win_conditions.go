package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// Victory reasons
const (
	ReasonStrongholds = "strongholds"
	ReasonPrediction  = "prediction"
	ReasonDefault     = "default"
	ReasonFinalTurn   = "final_turn"
)

// Victory is the outcome of a victory check
type Victory struct {
	GameOver bool
	Winners  []core.Faction
	Reason   string
}

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckVictory applies the mentat pause victory rules: stronghold control
// (alone or allied), the Bene Gesserit prediction, and the end-of-game
// default
func (wc *WinConditionChecker) CheckVictory(s *game.GameState) Victory {
	wc.logger.Debug().Int("turn", s.Turn).Msg("Checking victory conditions")
	consts := s.Catalog.Constants

	var winners []core.Faction
	for _, f := range s.StormOrder {
		ally := s.AllyOf(f)
		count := len(s.ControlledStrongholds(f))
		need := consts.StrongholdsToWin
		if ally != core.NoFaction {
			count += len(s.ControlledStrongholds(ally))
			need = consts.StrongholdsToWinAllied
		}
		if count >= need {
			winners = []core.Faction{f}
			if ally != core.NoFaction {
				winners = append(winners, ally)
			}
			break
		}
	}

	if len(winners) > 0 {
		if wc.predictionHolds(s, winners) {
			wc.logger.Info().Str("predicted", s.Prediction.Faction.String()).Msg("Bene Gesserit prediction fulfilled")
			return Victory{GameOver: true, Winners: []core.Faction{core.BeneGesserit}, Reason: ReasonPrediction}
		}
		wc.logger.Info().Interface("winners", winners).Msg("Winner determined")
		return Victory{GameOver: true, Winners: winners, Reason: ReasonStrongholds}
	}

	if s.Turn < s.Variant.MaxTurns {
		wc.logger.Debug().Msg("No winner this turn")
		return Victory{}
	}

	if f, ok := FactionWith(s, func(c Capability) bool { return c.WinsAtGameEnd }); ok {
		winners = []core.Faction{f}
		if ally := s.AllyOf(f); ally != core.NoFaction {
			winners = append(winners, ally)
		}
		wc.logger.Info().Interface("winners", winners).Msg("Default winner at final turn")
		return Victory{GameOver: true, Winners: winners, Reason: ReasonDefault}
	}

	best, bestCount := core.NoFaction, -1
	for _, f := range s.StormOrder {
		if n := len(s.ControlledStrongholds(f)); n > bestCount {
			best, bestCount = f, n
		}
	}
	wc.logger.Info().Str("winner", best.String()).Int("strongholds", bestCount).Msg("Final turn reached")
	return Victory{GameOver: true, Winners: []core.Faction{best}, Reason: ReasonFinalTurn}
}

func (wc *WinConditionChecker) predictionHolds(s *game.GameState, winners []core.Faction) bool {
	if !s.InGame(core.BeneGesserit) || s.Prediction.Turn != s.Turn {
		return false
	}
	for _, w := range winners {
		if w == s.Prediction.Faction {
			return true
		}
	}
	return false
}
