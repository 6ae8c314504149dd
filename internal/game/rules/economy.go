package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// MinimumBid returns the lowest acceptable bid given the current high bid
func MinimumBid(s *game.GameState, currentBid int) int {
	if currentBid <= 0 {
		return s.Catalog.Constants.MinBid
	}
	return currentBid + 1
}

// CanBid reports whether a faction could make any legal bid at all
func CanBid(s *game.GameState, f core.Faction, currentBid int) bool {
	fs, ok := s.Faction(f)
	if !ok || fs.HandFull() {
		return false
	}
	return fs.Spice >= MinimumBid(s, currentBid)
}

// ValidateBid accepts amount iff it beats the current bid (or meets the
// minimum when opening) and the bidder can pay it
func ValidateBid(s *game.GameState, f core.Faction, amount, currentBid int) core.ValidationResult {
	fs, ok := s.Faction(f)
	if !ok {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s is not in the game", f))
	}
	var c core.Collector
	if fs.HandFull() {
		c.Add(core.CodeHandFull, fmt.Sprintf("hand holds %d of %d cards", len(fs.Hand), fs.HandLimit))
	}
	if floor := MinimumBid(s, currentBid); amount < floor {
		c.Add(core.CodeBidTooLow, fmt.Sprintf("bid %d is below the minimum %d", amount, floor))
	}
	if amount > fs.Spice {
		c.Add(core.CodeBidExceedsSpice, fmt.Sprintf("bid %d exceeds %d spice", amount, fs.Spice))
	}
	return c.Result(map[string]interface{}{"amount": amount})
}

// CharityAmount returns what the faction would receive from CHOAM charity
func CharityAmount(s *game.GameState, f core.Faction) int {
	fs, ok := s.Faction(f)
	if !ok {
		return 0
	}
	threshold := s.Catalog.Constants.CharityThreshold
	if fs.Spice < threshold {
		return threshold - fs.Spice
	}
	if Capabilities(f).AlwaysReceivesCharity {
		return threshold
	}
	return 0
}

// ValidateCharity checks a CHOAM charity claim
func ValidateCharity(s *game.GameState, f core.Faction) core.ValidationResult {
	if s.CharityClaimedThisTurn(f) {
		return core.Reject(core.CodeAlreadyClaimed, fmt.Sprintf("%s already claimed charity on turn %d", f, s.Turn))
	}
	amount := CharityAmount(s, f)
	if amount == 0 {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s holds enough spice", f))
	}
	return core.Valid(map[string]interface{}{"amount": amount})
}

// RevivalPlan is a resolved revival request
type RevivalPlan struct {
	Regular int
	Elite   int
	Free    int
	Cost    int
}

// Total returns the units revived
func (p RevivalPlan) Total() int {
	return p.Regular + p.Elite
}

// RevivalCount applies the revival formula: the free allowance plus the
// paid units requested, capped by the per-turn limit, the units in the
// tanks and what the faction can afford
func RevivalCount(s *game.GameState, f core.Faction, requestedPaid int) int {
	fs, ok := s.Faction(f)
	if !ok {
		return 0
	}
	consts := s.Catalog.Constants
	affordable := fs.Spice / consts.RevivalCostPerForce
	return max(0, min(
		requestedPaid+fs.FreeRevival,
		consts.MaxForcesRevivedPerTurn,
		fs.Tanks.Total(),
		affordable+fs.FreeRevival,
	))
}

// ValidateRevival checks a revival request and resolves it into units and
// cost. requestedElite asks for elites among the revived units.
func ValidateRevival(s *game.GameState, f core.Faction, requestedPaid, requestedElite int) core.ValidationResult {
	fs, ok := s.Faction(f)
	if !ok {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s is not in the game", f))
	}
	consts := s.Catalog.Constants
	var c core.Collector
	if fs.Tanks.Total() == 0 {
		c.Add(core.CodeNoForcesInTanks, fmt.Sprintf("%s has no forces in the tanks", f))
	}
	if requestedPaid < 0 || requestedElite < 0 {
		c.Add(core.CodeInvalidAmount, "revival counts must not be negative")
	}
	if requestedPaid > consts.MaxForcesRevivedPerTurn {
		c.Add(core.CodeRevivalLimit, fmt.Sprintf("at most %d forces revive per turn", consts.MaxForcesRevivedPerTurn))
	}
	if requestedElite > consts.MaxEliteRevivedPerTurn {
		c.Add(core.CodeRevivalLimit, fmt.Sprintf("at most %d elite revives per turn", consts.MaxEliteRevivedPerTurn))
	}
	if c.Failed() {
		return c.Result(nil)
	}

	total := RevivalCount(s, f, requestedPaid)
	elite := min(requestedElite, fs.Tanks.Elite, total)
	regular := min(total-elite, fs.Tanks.Regular)
	if regular+elite < total && elite < min(fs.Tanks.Elite, consts.MaxEliteRevivedPerTurn) {
		elite++
	}
	plan := RevivalPlan{Regular: regular, Elite: elite}
	plan.Free = min(fs.FreeRevival, plan.Total())
	plan.Cost = (plan.Total() - plan.Free) * consts.RevivalCostPerForce
	return core.Valid(map[string]interface{}{
		"regular": plan.Regular,
		"elite":   plan.Elite,
		"free":    plan.Free,
		"cost":    plan.Cost,
	})
}

// ValidateLeaderRevival checks reviving a leader from the tanks. A leader
// may only be bought back once the faction has no living leader left.
func ValidateLeaderRevival(s *game.GameState, f core.Faction, id core.LeaderID) core.ValidationResult {
	fs, ok := s.Faction(f)
	if !ok {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s is not in the game", f))
	}
	l, ok := fs.Leader(id)
	if !ok || l.Alive() {
		return core.Reject(core.CodeInvalidLeader, fmt.Sprintf("%s has no leader %s in the tanks", f, id))
	}
	for _, own := range fs.Leaders {
		if own.Alive() {
			return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s still has living leaders", f))
		}
	}
	cost := s.Catalog.LeaderStrength(id)
	if fs.Spice < cost {
		return core.Reject(core.CodeInsufficientSpice, fmt.Sprintf("reviving %s costs %d spice", id, cost))
	}
	return core.Valid(map[string]interface{}{"cost": cost})
}
