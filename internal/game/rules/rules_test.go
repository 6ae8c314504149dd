package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/testutil"
)

func TestCapabilities(t *testing.T) {
	assert.Equal(t, 2, Capabilities(core.Fremen).MovementRange)
	assert.Equal(t, 1, Capabilities(core.Atreides).MovementRange)
	assert.True(t, Capabilities(core.Harkonnen).CapturesLeaders)
	assert.True(t, Capabilities(core.SpacingGuild).ShipsAtHalfPrice)
	assert.True(t, Capabilities(core.BeneGesserit).Voice)
	assert.False(t, Capabilities(core.Emperor).Voice)

	assert.Equal(t, 2, EliteValue(core.Emperor, core.Atreides))
	assert.Equal(t, 1, EliteValue(core.Emperor, core.Fremen))
	assert.Equal(t, 2, EliteValue(core.Fremen, core.Emperor))
}

func TestAbsorbLosses(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		have     game.ForceCount
		rate     int
		expected game.ForceCount
	}{
		{"regulars only", 3, game.ForceCount{Regular: 5, Elite: 2}, 2, game.ForceCount{Regular: 3}},
		{"elite at two for one", 4, game.ForceCount{Regular: 0, Elite: 3}, 2, game.ForceCount{Elite: 2}},
		{"odd remainder spares a regular", 3, game.ForceCount{Regular: 2, Elite: 3}, 2, game.ForceCount{Regular: 1, Elite: 1}},
		{"odd remainder without spare", 3, game.ForceCount{Regular: 1, Elite: 3}, 2, game.ForceCount{Regular: 1, Elite: 1}},
		{"minimal loss beats regulars first", 4, game.ForceCount{Regular: 1, Elite: 3}, 2, game.ForceCount{Elite: 2}},
		{"one for one exception", 3, game.ForceCount{Regular: 1, Elite: 3}, 1, game.ForceCount{Regular: 1, Elite: 2}},
		{"insufficient loses all", 9, game.ForceCount{Regular: 2, Elite: 2}, 2, game.ForceCount{Regular: 2, Elite: 2}},
		{"nothing to lose", 0, game.ForceCount{Regular: 2}, 2, game.ForceCount{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbsorbLosses(tt.n, tt.have, tt.rate)
			assert.Equal(t, tt.expected, got)
			if Strength(tt.have, tt.rate) > tt.n {
				assert.GreaterOrEqual(t, Strength(got, tt.rate), tt.n)
			}
		})
	}
}

// Exhaustive check that losses always cover n with the minimal total
func TestAbsorbLosses_Minimal(t *testing.T) {
	for _, rate := range []int{1, 2} {
		for r := 0; r <= 5; r++ {
			for e := 0; e <= 5; e++ {
				have := game.ForceCount{Regular: r, Elite: e}
				for n := 1; n < Strength(have, rate); n++ {
					got := AbsorbLosses(n, have, rate)
					lost := Strength(got, rate)
					require.GreaterOrEqual(t, lost, n)
					best := lost
					for rr := 0; rr <= r; rr++ {
						for ee := 0; ee <= e; ee++ {
							if v := rr + ee*rate; v >= n && v < best {
								best = v
							}
						}
					}
					assert.Equal(t, best, lost, "n=%d have=%+v rate=%d", n, have, rate)
				}
			}
		}
	}
}

func TestValidateBid(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Emperor)
	s = testutil.SetSpice(t, s, core.Atreides, 5)

	for bid := -1; bid <= 8; bid++ {
		for current := 0; current <= 6; current++ {
			res := ValidateBid(s, core.Atreides, bid, current)
			floor := current + 1
			if current == 0 {
				floor = 1
			}
			expected := bid >= floor && bid <= 5
			assert.Equal(t, expected, res.Valid, "bid %d over %d", bid, current)
		}
	}

	res := ValidateBid(s, core.Atreides, 6, 2)
	assert.True(t, res.HasCode(core.CodeBidExceedsSpice))
	res = ValidateBid(s, core.Atreides, 2, 2)
	assert.True(t, res.HasCode(core.CodeBidTooLow))

	s = testutil.GiveCards(t, s, core.Atreides, "a", "b", "c", "d")
	res = ValidateBid(s, core.Atreides, 1, 0)
	assert.True(t, res.HasCode(core.CodeHandFull))
	assert.False(t, CanBid(s, core.Atreides, 0))
	assert.True(t, CanBid(s, core.Emperor, 9))
	assert.False(t, CanBid(s, core.Emperor, 10))
}

func TestValidateCharity(t *testing.T) {
	s := testutil.NewTestState(t)
	s = testutil.SetSpice(t, s, core.Fremen, 1)

	res := ValidateCharity(s, core.Fremen)
	require.True(t, res.Valid)
	assert.Equal(t, 1, res.Int("amount"))

	res = ValidateCharity(s, core.BeneGesserit)
	require.True(t, res.Valid)
	assert.Equal(t, 2, res.Int("amount"))

	res = ValidateCharity(s, core.Atreides)
	assert.True(t, res.HasCode(core.CodeNotEligible))

	s = game.RecordCharity(s, core.Fremen)
	res = ValidateCharity(s, core.Fremen)
	assert.True(t, res.HasCode(core.CodeAlreadyClaimed))
}

func TestRevivalFormula(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Harkonnen)
	s = testutil.Kill(t, s, core.Atreides, 10, 0)

	tests := []struct {
		spice, requested, expected int
	}{
		{10, 0, 2},
		{10, 1, 3},
		{10, 3, 3},
		{0, 3, 2},
		{2, 3, 3},
		{3, 2, 3},
	}
	for _, tt := range tests {
		st := testutil.SetSpice(t, s, core.Atreides, tt.spice)
		fs := st.Factions[core.Atreides]
		formula := min(tt.requested+fs.FreeRevival, 3, fs.Tanks.Total(), tt.spice/2+fs.FreeRevival)
		assert.Equal(t, formula, RevivalCount(st, core.Atreides, tt.requested))
		assert.Equal(t, tt.expected, RevivalCount(st, core.Atreides, tt.requested), "spice %d requested %d", tt.spice, tt.requested)
	}

	st := testutil.SetSpice(t, s, core.Atreides, 10)
	res := ValidateRevival(st, core.Atreides, 1, 0)
	require.True(t, res.Valid)
	assert.Equal(t, 3, res.Int("regular"))
	assert.Equal(t, 2, res.Int("free"))
	assert.Equal(t, 2, res.Int("cost"))

	res = ValidateRevival(st, core.Atreides, 4, 0)
	assert.True(t, res.HasCode(core.CodeRevivalLimit))
	res = ValidateRevival(st, core.Harkonnen, 1, 0)
	assert.True(t, res.HasCode(core.CodeNoForcesInTanks))
}

func TestValidateRevival_Elite(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Emperor, core.Fremen)
	s = testutil.Kill(t, s, core.Emperor, 1, 3)

	res := ValidateRevival(s, core.Emperor, 2, 1)
	require.True(t, res.Valid)
	assert.Equal(t, 1, res.Int("regular"))
	assert.Equal(t, 1, res.Int("elite"))

	res = ValidateRevival(s, core.Emperor, 2, 2)
	assert.True(t, res.HasCode(core.CodeRevivalLimit))

	res = ValidateRevival(s, core.Emperor, 2, 0)
	require.True(t, res.Valid)
	assert.Equal(t, 1, res.Int("regular"))
	assert.Equal(t, 1, res.Int("elite"), "an elite fills in when regulars run out")
}

func TestValidateLeaderRevival(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Harkonnen)
	var err error
	s, err = game.KillLeader(s, "duncan_idaho")
	require.NoError(t, err)

	res := ValidateLeaderRevival(s, core.Atreides, "duncan_idaho")
	assert.True(t, res.HasCode(core.CodeNotEligible))

	for _, id := range []core.LeaderID{"thufir_hawat", "lady_jessica", "gurney_halleck", "wellington_yueh"} {
		s, err = game.KillLeader(s, id)
		require.NoError(t, err)
	}
	res = ValidateLeaderRevival(s, core.Atreides, "duncan_idaho")
	require.True(t, res.Valid)
	assert.Equal(t, 2, res.Int("cost"))

	res = ValidateLeaderRevival(s, core.Atreides, "feyd_rautha")
	assert.True(t, res.HasCode(core.CodeInvalidLeader))
}

func TestShipmentCost(t *testing.T) {
	s := testutil.NewTestState(t)
	assert.Equal(t, 3, ShipmentCost(s, core.Atreides, "carthag", 3))
	assert.Equal(t, 6, ShipmentCost(s, core.Atreides, "the_great_flat", 3))
	assert.Equal(t, 2, ShipmentCost(s, core.SpacingGuild, "carthag", 3))
	assert.Equal(t, 3, ShipmentCost(s, core.SpacingGuild, "the_great_flat", 3))
	assert.Equal(t, 0, ShipmentCost(s, core.Fremen, "the_great_flat", 3))
}

func TestValidateShipment(t *testing.T) {
	s := testutil.NewTestState(t)

	res := ValidateShipment(s, core.Emperor, "imperial_basin", 9, 3, 1)
	require.True(t, res.Valid, res.Summary())
	assert.Equal(t, 8, res.Int("cost"))

	tests := []struct {
		name      string
		faction   core.Faction
		territory core.TerritoryID
		sector    int
		regular   int
		code      core.ErrorCode
	}{
		{"unknown territory", core.Emperor, "caladan", 1, 1, core.CodeInvalidTerritory},
		{"bad sector", core.Emperor, "arrakeen", 3, 1, core.CodeInvalidSector},
		{"storm", core.Emperor, "cielago_north", 0, 1, core.CodeStormBlocked},
		{"no units", core.Emperor, "arrakeen", 9, 0, core.CodeInvalidAmount},
		{"too many units", core.Emperor, "arrakeen", 9, 16, core.CodeInsufficientForces},
		{"too expensive", core.Emperor, "the_great_flat", 14, 6, core.CodeInsufficientSpice},
		{"fremen too far", core.Fremen, "arrakeen", 9, 1, core.CodeShipmentRestricted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateShipment(s, tt.faction, tt.territory, tt.sector, tt.regular, 0)
			assert.False(t, res.Valid)
			assert.True(t, res.HasCode(tt.code), res.Summary())
		})
	}

	res = ValidateShipment(s, core.Fremen, "funeral_plain", 14, 3, 0)
	assert.True(t, res.Valid, res.Summary())
	assert.Zero(t, res.Int("cost"))
}

func TestStrongholdFull(t *testing.T) {
	s := testutil.NewTestState(t)
	s = testutil.Place(t, s, core.Emperor, "arrakeen", 9, 2, 0)

	assert.True(t, StrongholdFull(s, core.Harkonnen, "arrakeen"))
	assert.False(t, StrongholdFull(s, core.Emperor, "arrakeen"))
	assert.False(t, StrongholdFull(s, core.Harkonnen, "imperial_basin"))

	res := ValidateShipment(s, core.Harkonnen, "arrakeen", 9, 1, 0)
	assert.True(t, res.HasCode(core.CodeStrongholdFull))
}

func TestValidateMovement(t *testing.T) {
	s := testutil.NewTestState(t)
	s.StormSector = 5

	res := ValidateMovement(s, core.Atreides, "arrakeen", 9, "imperial_basin", 9, 2, 0)
	assert.True(t, res.Valid, res.Summary())

	res = ValidateMovement(s, core.Atreides, "arrakeen", 9, "tsimpo", 10, 2, 0)
	assert.True(t, res.Valid, "ornithopters give range 3: %s", res.Summary())

	res = ValidateMovement(s, core.Fremen, "sietch_tabr", 13, "hagga_basin", 12, 2, 0)
	assert.True(t, res.Valid, res.Summary())

	res = ValidateMovement(s, core.Fremen, "sietch_tabr", 13, "arsunt", 11, 2, 0)
	assert.True(t, res.HasCode(core.CodeNotAdjacent), res.Summary())

	res = ValidateMovement(s, core.Fremen, "sietch_tabr", 13, "hagga_basin", 12, 9, 0)
	assert.True(t, res.HasCode(core.CodeInsufficientForces))

	res = ValidateMovement(s, core.Fremen, "carthag", 10, "tsimpo", 10, 1, 0)
	assert.True(t, res.HasCode(core.CodeInsufficientForces))

	res = ValidateMovement(s, core.SpacingGuild, "tueks_sietch", 4, "the_minor_erg", 5, 1, 0)
	assert.True(t, res.HasCode(core.CodeStormBlocked))
}

func TestLegalDestinations(t *testing.T) {
	s := testutil.NewTestState(t)
	s.StormSector = 5

	dests := LegalDestinations(s, core.SpacingGuild, "tueks_sietch", 4)
	require.NotEmpty(t, dests)
	for _, d := range dests {
		assert.NotEqual(t, 5, d.Sector)
		assert.Equal(t, 1, d.Distance)
		res := ValidateMovement(s, core.SpacingGuild, "tueks_sietch", 4, d.Territory, d.Sector, 1, 0)
		assert.True(t, res.Valid, "%s: %s", d.Territory, res.Summary())
	}

	assert.Nil(t, LegalDestinations(s, core.SpacingGuild, "arrakeen", 9))

	targets := ShipmentTargets(s, core.Fremen)
	require.NotEmpty(t, targets)
	for _, d := range targets {
		res := ValidateShipment(s, core.Fremen, d.Territory, d.Sector, 1, 0)
		assert.True(t, res.Valid, "%s: %s", d.Territory, res.Summary())
	}
}
