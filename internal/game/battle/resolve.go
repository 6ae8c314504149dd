// Package battle resolves a single battle between two finalized plans.
// Resolve is pure and describes what happens; Apply carries the outcome
// into a new GameState.
package battle

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
)

// Options are the rule parameters resolution depends on
type Options struct {
	AdvancedCombat       bool
	KwisatzHaderachBonus int
}

// OptionsFor reads the options from the game variant and catalog
func OptionsFor(s *game.GameState) Options {
	return Options{
		AdvancedCombat:       s.Variant.AdvancedCombat,
		KwisatzHaderachBonus: s.Catalog.Constants.KwisatzHaderachBonus,
	}
}

// Side is the resolved result for one faction
type Side struct {
	Faction        core.Faction
	Plan           game.BattlePlan
	LeaderStrength int
	LeaderKilled   bool
	Total          int
	CalledTraitor  bool
	LosesAll       bool
	Losses         game.ForceCount
	SpiceForfeit   int
	Discards       []core.CardID
	Keepable       []core.CardID
}

// Outcome describes every effect of a battle. Winner is NoFaction when both
// sides lose.
type Outcome struct {
	Territory         core.TerritoryID
	Sector            int
	Aggressor         Side
	Defender          Side
	Winner            core.Faction
	Loser             core.Faction
	Explosion         bool
	DoubleTraitor     bool
	KilledLeaders     []core.LeaderID
	Payout            int
	CaptureCandidates []core.LeaderID
	Events            []events.PhaseEvent
}

// Side returns the result for one faction
func (o *Outcome) Side(f core.Faction) *Side {
	if f == o.Aggressor.Faction {
		return &o.Aggressor
	}
	if f == o.Defender.Faction {
		return &o.Defender
	}
	return nil
}

// Resolve computes the outcome of the battle. Missing plans fall back to
// the default plan for that side.
func Resolve(s *game.GameState, b *game.CurrentBattle, opts Options) Outcome {
	o := Outcome{
		Territory: b.Territory,
		Sector:    b.Sector,
		Aggressor: Side{Faction: b.Aggressor, Plan: planOrDefault(s, b, b.Aggressor)},
		Defender:  Side{Faction: b.Defender, Plan: planOrDefault(s, b, b.Defender)},
	}
	a, d := &o.Aggressor, &o.Defender

	for _, side := range []*Side{a, d} {
		if opts.AdvancedCombat {
			side.SpiceForfeit = side.Plan.SpiceDialed
		}
	}

	switch {
	case explodes(s, a.Plan, d.Plan):
		resolveExplosion(s, &o)
	case b.TraitorCalls[a.Faction] && b.TraitorCalls[d.Faction]:
		resolveDoubleTraitor(s, &o)
	case b.TraitorCalls[a.Faction]:
		resolveTraitor(s, &o, a, d)
	case b.TraitorCalls[d.Faction]:
		resolveTraitor(s, &o, d, a)
	default:
		resolveStandard(s, &o, opts)
	}

	if o.Winner != core.NoFaction {
		o.CaptureCandidates = captureCandidates(s, &o)
	}
	o.Events = append(o.Events, events.NewPhaseEvent(events.EventBattleResolved, map[string]interface{}{
		"territory":       string(o.Territory),
		"winner":          string(o.Winner),
		"loser":           string(o.Loser),
		"aggressor_total": a.Total,
		"defender_total":  d.Total,
		"payout":          o.Payout,
	}, "battle in %s won by %s", o.Territory, o.Winner))
	return o
}

func planOrDefault(s *game.GameState, b *game.CurrentBattle, f core.Faction) game.BattlePlan {
	if p := b.Plan(f); p != nil {
		return *p
	}
	return rules.DefaultBattlePlan(s, b, f)
}

func cardType(s *game.GameState, id core.CardID) data.CardType {
	if id == "" {
		return ""
	}
	def, ok := s.Catalog.Card(id)
	if !ok {
		return ""
	}
	return def.Type
}

// explodes reports whether either side fires a lasgun into the other
// side's shield. A side carrying both cards alone does not explode.
func explodes(s *game.GameState, a, d game.BattlePlan) bool {
	return lasgunMeetsShield(s, a.Weapon, d.Defense) || lasgunMeetsShield(s, d.Weapon, a.Defense)
}

func lasgunMeetsShield(s *game.GameState, weapon, defense core.CardID) bool {
	return cardType(s, weapon) == data.CardWeaponLasgun && cardType(s, defense) == data.CardDefenseProjectile
}

// weaponKills reports whether weapon gets past defense
func weaponKills(s *game.GameState, weapon, defense core.CardID) bool {
	switch cardType(s, weapon) {
	case data.CardWeaponProjectile:
		return cardType(s, defense) != data.CardDefenseProjectile
	case data.CardWeaponPoison:
		return cardType(s, defense) != data.CardDefensePoison
	case data.CardWeaponLasgun:
		return true
	}
	return false
}

func leaderStrength(s *game.GameState, p game.BattlePlan) int {
	if p.Leader == "" {
		return 0
	}
	return s.Catalog.LeaderStrength(p.Leader)
}

func (o *Outcome) kill(s *game.GameState, side *Side, cause string) {
	if side.Plan.Leader == "" || side.LeaderKilled {
		return
	}
	side.LeaderKilled = true
	o.KilledLeaders = append(o.KilledLeaders, side.Plan.Leader)
	o.Events = append(o.Events, events.NewPhaseEvent(events.EventLeaderKilled, map[string]interface{}{
		"leader":   string(side.Plan.Leader),
		"faction":  string(side.Faction),
		"strength": leaderStrength(s, side.Plan),
		"cause":    cause,
	}, "%s killed (%s)", side.Plan.Leader, cause))
}

// discardAll marks every card of the plan for discard
func discardAll(side *Side) {
	side.Discards = side.Plan.Cards()
	side.Keepable = nil
}

// splitCards separates the winner's cards into forced discards and cards it
// may keep
func splitCards(s *game.GameState, side *Side) {
	side.Discards, side.Keepable = nil, nil
	for _, id := range side.Plan.Cards() {
		def, ok := s.Catalog.Card(id)
		if !ok || def.DiscardAfterUse {
			side.Discards = append(side.Discards, id)
			continue
		}
		side.Keepable = append(side.Keepable, id)
	}
}

func resolveExplosion(s *game.GameState, o *Outcome) {
	o.Explosion = true
	o.Events = append(o.Events, events.NewPhaseEvent(events.EventLasgunShield, map[string]interface{}{
		"territory": string(o.Territory),
	}, "lasgun and shield explode in %s", o.Territory))
	for _, side := range []*Side{&o.Aggressor, &o.Defender} {
		side.LosesAll = true
		discardAll(side)
		o.kill(s, side, "explosion")
	}
}

func resolveDoubleTraitor(s *game.GameState, o *Outcome) {
	o.DoubleTraitor = true
	for _, side := range []*Side{&o.Aggressor, &o.Defender} {
		side.CalledTraitor = true
		side.LosesAll = true
		discardAll(side)
		o.kill(s, side, "traitor")
	}
	o.Events = append(o.Events, events.NewPhaseEvent(events.EventTraitorRevealed, map[string]interface{}{
		"territory": string(o.Territory),
		"double":    true,
	}, "both sides reveal traitors in %s", o.Territory))
}

func resolveTraitor(s *game.GameState, o *Outcome, caller, betrayed *Side) {
	caller.CalledTraitor = true
	o.Winner, o.Loser = caller.Faction, betrayed.Faction
	o.Events = append(o.Events, events.NewPhaseEvent(events.EventTraitorRevealed, map[string]interface{}{
		"caller": string(caller.Faction),
		"leader": string(betrayed.Plan.Leader),
	}, "%s reveals %s as a traitor", caller.Faction, betrayed.Plan.Leader))

	caller.LeaderStrength = leaderStrength(s, caller.Plan)
	betrayed.LosesAll = true
	discardAll(betrayed)
	splitCards(s, caller)
	o.kill(s, betrayed, "traitor")
	o.Payout = leaderStrength(s, betrayed.Plan)
}

func resolveStandard(s *game.GameState, o *Outcome, opts Options) {
	a, d := &o.Aggressor, &o.Defender

	aDies := weaponKills(s, d.Plan.Weapon, a.Plan.Defense)
	dDies := weaponKills(s, a.Plan.Weapon, d.Plan.Defense)
	if aDies {
		o.kill(s, a, "weapon")
	}
	if dDies {
		o.kill(s, d, "weapon")
	}

	for _, side := range []*Side{a, d} {
		if !side.LeaderKilled {
			side.LeaderStrength = leaderStrength(s, side.Plan)
		}
		side.Total = side.Plan.ForcesDialed + side.LeaderStrength
		if side.Plan.KwisatzHaderach {
			side.Total += opts.KwisatzHaderachBonus
		}
		if opts.AdvancedCombat {
			side.Total += side.Plan.SpiceDialed
		}
	}

	winner, loser := d, a
	if a.Total > d.Total {
		winner, loser = a, d
	}
	o.Winner, o.Loser = winner.Faction, loser.Faction

	loser.LosesAll = true
	discardAll(loser)
	splitCards(s, winner)

	if fs, ok := s.Faction(winner.Faction); ok {
		winner.Losses = rules.AbsorbLosses(winner.Plan.ForcesDialed, fs.FightersIn(o.Territory), rules.EliteValue(winner.Faction, loser.Faction))
	}

	for _, id := range o.KilledLeaders {
		o.Payout += s.Catalog.LeaderStrength(id)
	}
}

// captureCandidates lists the loser's leaders the winner may capture:
// living, held by the loser, and not committed to a battle elsewhere
func captureCandidates(s *game.GameState, o *Outcome) []core.LeaderID {
	if !rules.Capabilities(o.Winner).CapturesLeaders {
		return nil
	}
	killed := make(map[core.LeaderID]bool, len(o.KilledLeaders))
	for _, id := range o.KilledLeaders {
		killed[id] = true
	}
	var out []core.LeaderID
	for _, l := range s.LeadersHeldBy(o.Loser) {
		if killed[l.ID] || l.OriginalFaction != o.Loser {
			continue
		}
		if l.UsedThisTurn && l.UsedInTerritory != o.Territory {
			continue
		}
		out = append(out, l.ID)
	}
	return out
}
