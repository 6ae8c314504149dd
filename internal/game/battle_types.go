package game

import "github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"

// BattleStep is the sub-phase of a single battle
type BattleStep string

const (
	StepAggressorChoice  BattleStep = "AGGRESSOR_CHOICE"
	StepPrescience       BattleStep = "PRESCIENCE"
	StepVoice            BattleStep = "VOICE"
	StepBattlePlans      BattleStep = "BATTLE_PLANS"
	StepPrescienceReveal BattleStep = "PRESCIENCE_REVEAL"
	StepTraitorCall      BattleStep = "TRAITOR_CALL"
	StepResolution       BattleStep = "RESOLUTION"
	StepPostResolution   BattleStep = "POST_RESOLUTION"
	StepCleanup          BattleStep = "CLEANUP"
)

// BattlePlan is a faction's committed plan for one battle. ForcesDialed is
// measured in strength, where an elite unit counts double.
type BattlePlan struct {
	Faction         core.Faction  `json:"faction"`
	Leader          core.LeaderID `json:"leader,omitempty"`
	CheapHero       core.CardID   `json:"cheap_hero,omitempty"`
	ForcesDialed    int           `json:"forces_dialed"`
	Weapon          core.CardID   `json:"weapon,omitempty"`
	Defense         core.CardID   `json:"defense,omitempty"`
	SpiceDialed     int           `json:"spice_dialed"`
	KwisatzHaderach bool          `json:"kwisatz_haderach"`
}

// HasLeader reports whether a leader disc or cheap hero was committed
func (p BattlePlan) HasLeader() bool {
	return p.Leader != "" || p.CheapHero != ""
}

// Cards returns the treachery cards played in the plan
func (p BattlePlan) Cards() []core.CardID {
	var out []core.CardID
	for _, c := range []core.CardID{p.CheapHero, p.Weapon, p.Defense} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// PrescienceState records the Atreides question and its answer
type PrescienceState struct {
	Asker    core.Faction `json:"asker"`
	Target   core.Faction `json:"target"`
	Element  string       `json:"element"`
	Revealed string       `json:"revealed,omitempty"`
}

// VoiceState records a Bene Gesserit command
type VoiceState struct {
	User     core.Faction `json:"user"`
	Target   core.Faction `json:"target"`
	Command  string       `json:"command"`
	CardType string       `json:"card_type"`
}

// Prescience elements
const (
	PrescienceLeader  = "leader"
	PrescienceWeapon  = "weapon"
	PrescienceDefense = "defense"
	PrescienceDial    = "dial"
)

// Voice commands
const (
	VoicePlay    = "play"
	VoiceNotPlay = "not_play"
)

// CurrentBattle is the battle being fought
type CurrentBattle struct {
	Territory     core.TerritoryID      `json:"territory"`
	Sector        int                   `json:"sector"`
	Aggressor     core.Faction          `json:"aggressor"`
	Defender      core.Faction          `json:"defender"`
	AggressorPlan *BattlePlan           `json:"aggressor_plan,omitempty"`
	DefenderPlan  *BattlePlan           `json:"defender_plan,omitempty"`
	Step          BattleStep            `json:"step"`
	Prescience    *PrescienceState      `json:"prescience,omitempty"`
	Voice         *VoiceState           `json:"voice,omitempty"`
	TraitorCalls  map[core.Faction]bool `json:"traitor_calls,omitempty"`
}

// Plan returns the plan submitted by one side
func (b *CurrentBattle) Plan(f core.Faction) *BattlePlan {
	switch f {
	case b.Aggressor:
		return b.AggressorPlan
	case b.Defender:
		return b.DefenderPlan
	}
	return nil
}

// Opponent returns the other side of the battle
func (b *CurrentBattle) Opponent(f core.Faction) core.Faction {
	if f == b.Aggressor {
		return b.Defender
	}
	return b.Aggressor
}

// Involves reports whether the faction is one of the two sides
func (b *CurrentBattle) Involves(f core.Faction) bool {
	return f == b.Aggressor || f == b.Defender
}

// Clone returns a deep copy
func (b *CurrentBattle) Clone() *CurrentBattle {
	c := *b
	if b.AggressorPlan != nil {
		p := *b.AggressorPlan
		c.AggressorPlan = &p
	}
	if b.DefenderPlan != nil {
		p := *b.DefenderPlan
		c.DefenderPlan = &p
	}
	if b.Prescience != nil {
		p := *b.Prescience
		c.Prescience = &p
	}
	if b.Voice != nil {
		v := *b.Voice
		c.Voice = &v
	}
	if b.TraitorCalls != nil {
		c.TraitorCalls = make(map[core.Faction]bool, len(b.TraitorCalls))
		for f, v := range b.TraitorCalls {
			c.TraitorCalls[f] = v
		}
	}
	return &c
}
