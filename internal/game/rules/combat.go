package rules

import (
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
)

// AvailableLeaders returns the leaders a faction may commit to a battle in
// territory t: living leaders it holds that have not fought elsewhere this
// turn, strongest first
func AvailableLeaders(s *game.GameState, f core.Faction, t core.TerritoryID) []game.Leader {
	var out []game.Leader
	for _, l := range s.LeadersHeldBy(f) {
		if l.UsedThisTurn && l.UsedInTerritory != t {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.Catalog.LeaderStrength(out[i].ID) > s.Catalog.LeaderStrength(out[j].ID)
	})
	return out
}

// CardsOfType returns the cards in a faction's hand matching pred
func CardsOfType(s *game.GameState, f core.Faction, pred func(data.CardDef) bool) []core.CardID {
	fs, ok := s.Faction(f)
	if !ok {
		return nil
	}
	var out []core.CardID
	for _, id := range fs.Hand {
		if def, ok := s.Catalog.Card(id); ok && pred(def) {
			out = append(out, id)
		}
	}
	return out
}

// MaxDial returns the greatest strength a faction can dial in a battle
func MaxDial(s *game.GameState, b *game.CurrentBattle, f core.Faction) int {
	fs, ok := s.Faction(f)
	if !ok {
		return 0
	}
	return Strength(fs.FightersIn(b.Territory), EliteValue(f, b.Opponent(f)))
}

// KwisatzHaderachAvailable reports whether the faction may add the
// Kwisatz Haderach to a plan
func KwisatzHaderachAvailable(s *game.GameState, f core.Faction) bool {
	return Capabilities(f).KwisatzHaderach && s.KwisatzHaderachActive
}

// ValidateBattlePlan checks a submitted plan against the battle and the
// faction's holdings, including any voice command aimed at it
func ValidateBattlePlan(s *game.GameState, b *game.CurrentBattle, plan game.BattlePlan) core.ValidationResult {
	f := plan.Faction
	fs, ok := s.Faction(f)
	if !ok || !b.Involves(f) {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s is not fighting in %s", f, b.Territory))
	}
	var c core.Collector

	available := AvailableLeaders(s, f, b.Territory)
	if plan.Leader != "" {
		found := false
		for _, l := range available {
			if l.ID == plan.Leader {
				found = true
				break
			}
		}
		if !found {
			c.Add(core.CodeInvalidLeader, fmt.Sprintf("%s cannot lead for %s", plan.Leader, f))
		}
	}
	if plan.CheapHero != "" {
		if plan.Leader != "" {
			c.Add(core.CodeInvalidLeader, "a plan takes a leader or a cheap hero, not both")
		}
		checkCard(s, &c, fs, plan.CheapHero, func(d data.CardDef) bool { return d.Type == data.CardCheapHero }, core.CodeInvalidLeader)
	}
	cheapHeroes := CardsOfType(s, f, func(d data.CardDef) bool { return d.Type == data.CardCheapHero })
	if !plan.HasLeader() && (len(available) > 0 || len(cheapHeroes) > 0) {
		c.Add(core.CodeLeaderRequired, fmt.Sprintf("%s must commit a leader or cheap hero", f))
	}

	if plan.ForcesDialed < 0 {
		c.Add(core.CodeInvalidAmount, "dial must not be negative")
	} else if limit := MaxDial(s, b, f); plan.ForcesDialed > limit {
		c.Add(core.CodeInsufficientForces, fmt.Sprintf("dial %d exceeds strength %d in %s", plan.ForcesDialed, limit, b.Territory))
	}

	if plan.Weapon != "" {
		checkCard(s, &c, fs, plan.Weapon, data.CardDef.IsWeapon, core.CodeInvalidWeapon)
	}
	if plan.Defense != "" {
		checkCard(s, &c, fs, plan.Defense, data.CardDef.IsDefense, core.CodeInvalidDefense)
		if plan.Defense == plan.Weapon {
			c.Add(core.CodeInvalidDefense, "the same card cannot be weapon and defense")
		}
	}

	switch {
	case plan.SpiceDialed < 0:
		c.Add(core.CodeInvalidAmount, "spice dial must not be negative")
	case plan.SpiceDialed > 0 && !s.Variant.AdvancedCombat:
		c.Add(core.CodeInvalidAmount, "spice is only dialed in advanced combat")
	case plan.SpiceDialed > fs.Spice:
		c.Add(core.CodeInsufficientSpice, fmt.Sprintf("dial %d spice with %d held", plan.SpiceDialed, fs.Spice))
	}

	if plan.KwisatzHaderach && (!KwisatzHaderachAvailable(s, f) || plan.Leader == "") {
		c.Add(core.CodeKwisatzUnavailable, "the Kwisatz Haderach is not available")
	}

	if b.Voice != nil && b.Voice.Target == f {
		if err := checkVoice(s, b.Voice, plan); err != nil {
			c.Add(core.CodeVoiceViolation, err.Error())
		}
	}

	return c.Result(map[string]interface{}{"max_dial": MaxDial(s, b, f)})
}

func checkCard(s *game.GameState, c *core.Collector, fs *game.FactionState, id core.CardID, pred func(data.CardDef) bool, code core.ErrorCode) {
	if !fs.HasCard(id) {
		c.Add(core.CodeCardNotInHand, fmt.Sprintf("%s does not hold %s", fs.Faction, id))
		return
	}
	def, ok := s.Catalog.Card(id)
	if !ok || !pred(def) {
		c.Add(code, fmt.Sprintf("%s cannot be played there", id))
	}
}

func checkVoice(s *game.GameState, v *game.VoiceState, plan game.BattlePlan) error {
	want := data.CardType(v.CardType)
	played := false
	for _, id := range plan.Cards() {
		if def, ok := s.Catalog.Card(id); ok && def.Type == want {
			played = true
		}
	}
	switch v.Command {
	case game.VoicePlay:
		held := CardsOfType(s, plan.Faction, func(d data.CardDef) bool { return d.Type == want })
		if len(held) > 0 && !played {
			return fmt.Errorf("voice commands playing a %s card", want)
		}
	case game.VoiceNotPlay:
		if played {
			return fmt.Errorf("voice forbids playing a %s card", want)
		}
	}
	return nil
}

// DefaultBattlePlan is the plan used when a faction submits nothing valid:
// its strongest available leader (or a cheap hero), no dial and no cards
// beyond what a voice command forces
func DefaultBattlePlan(s *game.GameState, b *game.CurrentBattle, f core.Faction) game.BattlePlan {
	plan := game.BattlePlan{Faction: f}
	if leaders := AvailableLeaders(s, f, b.Territory); len(leaders) > 0 {
		plan.Leader = leaders[0].ID
	} else if heroes := CardsOfType(s, f, func(d data.CardDef) bool { return d.Type == data.CardCheapHero }); len(heroes) > 0 {
		plan.CheapHero = heroes[0]
	}
	if v := b.Voice; v != nil && v.Target == f && v.Command == game.VoicePlay {
		want := data.CardType(v.CardType)
		held := CardsOfType(s, f, func(d data.CardDef) bool { return d.Type == want })
		if len(held) > 0 {
			def, _ := s.Catalog.Card(held[0])
			switch {
			case def.IsWeapon():
				plan.Weapon = held[0]
			case def.IsDefense():
				plan.Defense = held[0]
			case def.Type == data.CardCheapHero:
				plan.Leader = ""
				plan.CheapHero = held[0]
			}
		}
	}
	return plan
}

// ValidateTraitorCall checks that f holds a traitor card for the leader
// its opponent committed
func ValidateTraitorCall(s *game.GameState, b *game.CurrentBattle, f core.Faction) core.ValidationResult {
	fs, ok := s.Faction(f)
	if !ok || !b.Involves(f) {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s is not fighting", f))
	}
	opp := b.Plan(b.Opponent(f))
	if opp == nil || opp.Leader == "" || !fs.HasTraitor(opp.Leader) {
		return core.Reject(core.CodeNoTraitor, fmt.Sprintf("%s holds no traitor for the opposing leader", f))
	}
	return core.Valid(map[string]interface{}{"leader": string(opp.Leader)})
}

// VoiceCardTypes are the card classes a voice command may name
var VoiceCardTypes = []data.CardType{
	data.CardWeaponProjectile,
	data.CardWeaponPoison,
	data.CardWeaponLasgun,
	data.CardDefenseProjectile,
	data.CardDefensePoison,
	data.CardCheapHero,
	data.CardWorthless,
}

// ValidateVoice checks a voice command
func ValidateVoice(command, cardType string) core.ValidationResult {
	var c core.Collector
	if command != game.VoicePlay && command != game.VoiceNotPlay {
		c.Add(core.CodeInvalidAction, fmt.Sprintf("unknown voice command %q", command))
	}
	known := false
	for _, t := range VoiceCardTypes {
		if string(t) == cardType {
			known = true
		}
	}
	if !known {
		c.Add(core.CodeInvalidTarget, fmt.Sprintf("unknown card type %q", cardType))
	}
	return c.Result(nil)
}

// PrescienceElements are the plan elements prescience may reveal
var PrescienceElements = []string{game.PrescienceLeader, game.PrescienceWeapon, game.PrescienceDefense, game.PrescienceDial}

// ValidatePrescience checks a prescience question
func ValidatePrescience(element string) core.ValidationResult {
	for _, e := range PrescienceElements {
		if e == element {
			return core.Valid(nil)
		}
	}
	return core.Reject(core.CodeInvalidTarget, fmt.Sprintf("unknown plan element %q", element))
}
