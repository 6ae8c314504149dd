package rules

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// Capability lists the rule hooks a faction overrides. Generic algorithms
// consult it instead of branching on faction identity.
type Capability struct {
	MovementRange            int
	EliteValue               int
	ShipsAtHalfPrice         bool
	ShipsFreeNearGreatFlat   bool
	ReceivesShipmentPayments bool
	ReceivesBidPayments      bool
	HalfStormLosses          bool
	WormImmune               bool
	Prescience               bool
	Voice                    bool
	CapturesLeaders          bool
	KeepsAllTraitors         bool
	BonusCardOnWin           bool
	PeeksAuctionCards        bool
	AlwaysReceivesCharity    bool
	PredictsWinner           bool
	SendsAdvisors            bool
	KwisatzHaderach          bool
	WinsAtGameEnd            bool
}

var baseCapability = Capability{
	MovementRange: 1,
	EliteValue:    2,
}

var capabilities = map[core.Faction]func(c *Capability){
	core.Atreides: func(c *Capability) {
		c.Prescience = true
		c.PeeksAuctionCards = true
		c.KwisatzHaderach = true
	},
	core.BeneGesserit: func(c *Capability) {
		c.Voice = true
		c.AlwaysReceivesCharity = true
		c.PredictsWinner = true
		c.SendsAdvisors = true
	},
	core.Emperor: func(c *Capability) {
		c.ReceivesBidPayments = true
	},
	core.Fremen: func(c *Capability) {
		c.MovementRange = 2
		c.ShipsFreeNearGreatFlat = true
		c.HalfStormLosses = true
		c.WormImmune = true
	},
	core.Harkonnen: func(c *Capability) {
		c.CapturesLeaders = true
		c.KeepsAllTraitors = true
		c.BonusCardOnWin = true
	},
	core.SpacingGuild: func(c *Capability) {
		c.ShipsAtHalfPrice = true
		c.ReceivesShipmentPayments = true
		c.WinsAtGameEnd = true
	},
}

// Capabilities returns the rule hooks of a faction
func Capabilities(f core.Faction) Capability {
	c := baseCapability
	if apply, ok := capabilities[f]; ok {
		apply(&c)
	}
	return c
}

// EliteValue returns how many regular units one elite unit of f is worth,
// in strength and in losses, when fighting opponent. Sardaukar facing
// Fremen count only as regulars.
func EliteValue(f, opponent core.Faction) int {
	if f == core.Emperor && opponent == core.Fremen {
		return 1
	}
	return Capabilities(f).EliteValue
}

// HasOrnithopters reports whether the faction has fighters in Arrakeen or
// Carthag
func HasOrnithopters(s *game.GameState, f core.Faction) bool {
	fs, ok := s.Faction(f)
	if !ok {
		return false
	}
	return fs.FightersIn("arrakeen").Total() > 0 || fs.FightersIn("carthag").Total() > 0
}

// MovementRange returns how many territories the faction may move this turn
func MovementRange(s *game.GameState, f core.Faction) int {
	if HasOrnithopters(s, f) {
		return 3
	}
	return Capabilities(f).MovementRange
}

// FactionWith returns the playing faction holding a capability, if any
func FactionWith(s *game.GameState, has func(Capability) bool) (core.Faction, bool) {
	for _, f := range s.FactionList() {
		if has(Capabilities(f)) {
			return f, true
		}
	}
	return core.NoFaction, false
}

// Strength returns the regular-equivalent strength of a force count
func Strength(fc game.ForceCount, eliteValue int) int {
	return fc.Regular + fc.Elite*eliteValue
}

// AbsorbLosses chooses which units absorb n regular-equivalent losses.
// Regulars go first; elites then absorb eliteValue each. When an elite
// would overshoot the total, one regular is spared so the loss stays
// minimal, even if that leaves the elites to take the whole loss
// (4 against 1 regular and 3 elites at two each costs 2 elites).
// If the forces cannot cover n, everything is lost.
func AbsorbLosses(n int, have game.ForceCount, eliteValue int) game.ForceCount {
	if n <= 0 {
		return game.ForceCount{}
	}
	if eliteValue < 1 {
		eliteValue = 1
	}
	if Strength(have, eliteValue) <= n {
		return have
	}
	r := min(have.Regular, n)
	remaining := n - r
	e := (remaining + eliteValue - 1) / eliteValue
	if e > have.Elite {
		e = have.Elite
	}
	if r > 0 && e > 0 && r+e*eliteValue > n {
		r--
	}
	return game.ForceCount{Regular: r, Elite: e}
}
