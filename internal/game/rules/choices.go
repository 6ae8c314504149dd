package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// ValidateTraitorSelection checks that the chosen leader is one of the
// traitor cards dealt to the faction
func ValidateTraitorSelection(dealt []core.LeaderID, choice core.LeaderID) core.ValidationResult {
	for _, id := range dealt {
		if id == choice {
			return core.Valid(nil)
		}
	}
	return core.Reject(core.CodeInvalidLeader, fmt.Sprintf("%s was not dealt as a traitor", choice))
}

// ValidatePrediction checks the Bene Gesserit prediction
func ValidatePrediction(s *game.GameState, target core.Faction, turn int) core.ValidationResult {
	var c core.Collector
	if !s.InGame(target) || target == core.BeneGesserit {
		c.Add(core.CodeInvalidTarget, fmt.Sprintf("cannot predict %s", target))
	}
	if turn < 1 || turn > s.Variant.MaxTurns {
		c.Add(core.CodeInvalidAmount, fmt.Sprintf("turn must be within 1..%d", s.Variant.MaxTurns))
	}
	return c.Result(nil)
}

// ValidateStormDial checks a storm dial
func ValidateStormDial(s *game.GameState, dial int) core.ValidationResult {
	if maxDial := s.Catalog.Constants.StormDialMax; dial < 0 || dial > maxDial {
		return core.Reject(core.CodeInvalidAmount, fmt.Sprintf("dial must be within 0..%d", maxDial))
	}
	return core.Valid(map[string]interface{}{"dial": dial})
}

// ValidateAllianceProposal checks a request to ally with target
func ValidateAllianceProposal(s *game.GameState, f, target core.Faction) core.ValidationResult {
	var c core.Collector
	if target == f || !s.InGame(target) {
		c.Add(core.CodeInvalidTarget, fmt.Sprintf("cannot ally with %s", target))
	}
	if s.AllyOf(f) != core.NoFaction {
		c.Add(core.CodeNotEligible, fmt.Sprintf("%s is already allied", f))
	}
	if s.InGame(target) && s.AllyOf(target) != core.NoFaction {
		c.Add(core.CodeNotEligible, fmt.Sprintf("%s is already allied", target))
	}
	return c.Result(nil)
}

// ValidateAdvisor checks the Bene Gesserit free advisor placement
func ValidateAdvisor(s *game.GameState, f core.Faction) core.ValidationResult {
	fs, ok := s.Faction(f)
	if !ok || !Capabilities(f).SendsAdvisors {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s cannot send advisors", f))
	}
	if fs.Reserves.Regular == 0 {
		return core.Reject(core.CodeInsufficientForces, "no reserves left")
	}
	return core.Valid(nil)
}

// ValidateCapture checks a Harkonnen capture choice
func ValidateCapture(s *game.GameState, captor core.Faction, candidates []core.LeaderID, choice core.LeaderID) core.ValidationResult {
	if !Capabilities(captor).CapturesLeaders {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s cannot capture leaders", captor))
	}
	for _, id := range candidates {
		if id == choice {
			return core.Valid(nil)
		}
	}
	return core.Reject(core.CodeInvalidLeader, fmt.Sprintf("%s cannot be captured", choice))
}
