package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

func TestTransferSpice(t *testing.T) {
	s := newTestGame(t)

	next, err := TransferSpice(s, core.Atreides, core.Emperor, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, next.Factions[core.Atreides].Spice)
	assert.Equal(t, 14, next.Factions[core.Emperor].Spice)
	assert.Equal(t, 10, s.Factions[core.Atreides].Spice)
	require.NoError(t, CheckInvariants(next))

	next, err = TransferSpice(next, core.NoFaction, core.Fremen, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Ledger.Minted)
	next, err = TransferSpice(next, core.Harkonnen, core.NoFaction, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Ledger.Burned)
	require.NoError(t, CheckInvariants(next))

	_, err = TransferSpice(s, core.Fremen, core.Atreides, 4)
	assert.True(t, core.IsInvariant(err))
	_, err = TransferSpice(s, core.Fremen, core.Atreides, -1)
	assert.True(t, core.IsInvariant(err))
}

func TestBribes(t *testing.T) {
	s := newTestGame(t)
	next, err := AddBribe(s, core.Harkonnen, core.Fremen, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Factions[core.Fremen].Bribes)
	assert.Equal(t, 3, next.Factions[core.Fremen].Spice)
	require.NoError(t, CheckInvariants(next))

	next = PayBribes(next)
	assert.Equal(t, 6, next.Factions[core.Fremen].Spice)
	assert.Zero(t, next.Factions[core.Fremen].Bribes)
}

func TestBoardSpice(t *testing.T) {
	s := newTestGame(t)
	next := PlaceSpice(s, "the_great_flat", 14, 10)
	next = PlaceSpice(next, "the_great_flat", 14, 2)
	assert.Equal(t, 12, next.SpiceAt("the_great_flat", 14))
	require.NoError(t, CheckInvariants(next))

	next, taken, err := CollectSpice(next, core.Fremen, "the_great_flat", 14, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, taken)
	assert.Equal(t, 7, next.SpiceIn("the_great_flat"))
	assert.Equal(t, 8, next.Factions[core.Fremen].Spice)

	next, taken, err = CollectSpice(next, core.Fremen, "the_great_flat", 14, 50)
	require.NoError(t, err)
	assert.Equal(t, 7, taken)
	assert.Empty(t, next.Spice)
	require.NoError(t, CheckInvariants(next))

	next = PlaceSpice(next, "red_chasm", 6, 8)
	next, removed := RemoveTerritorySpice(next, "red_chasm")
	assert.Equal(t, 8, removed)
	assert.Zero(t, next.SpiceIn("red_chasm"))
	require.NoError(t, CheckInvariants(next))
}

func TestForceMovement(t *testing.T) {
	s := newTestGame(t)

	next, err := ShipForces(s, core.Emperor, "imperial_basin", 9, 3, 2)
	require.NoError(t, err)
	st, ok := next.Factions[core.Emperor].Stack("imperial_basin", 9)
	require.True(t, ok)
	assert.Equal(t, ForceStack{Territory: "imperial_basin", Sector: 9, Regular: 3, Elite: 2}, st)
	assert.Equal(t, ForceCount{Regular: 12, Elite: 3}, next.Factions[core.Emperor].Reserves)

	next, err = MoveForces(next, core.Emperor, "imperial_basin", 9, "arrakeen", 9, 3, 2, 0)
	require.NoError(t, err)
	_, ok = next.Factions[core.Emperor].Stack("imperial_basin", 9)
	assert.False(t, ok, "empty stacks are removed")
	assert.Equal(t, []core.Faction{core.Atreides, core.Emperor}, next.Occupants("arrakeen"))
	require.NoError(t, CheckInvariants(next))

	_, err = MoveForces(next, core.Emperor, "arrakeen", 9, "carthag", 10, 4, 0, 0)
	assert.True(t, core.IsInvariant(err))
	_, err = ShipForces(s, core.Emperor, "arrakeen", 9, 16, 0)
	assert.True(t, core.IsInvariant(err))

	next, err = ForcesToTanks(next, core.Emperor, "arrakeen", 9, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, ForceCount{Regular: 1, Elite: 1}, next.Factions[core.Emperor].Tanks)
	next, err = ReviveForces(next, core.Emperor, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, next.Factions[core.Emperor].Tanks.Total())
	require.NoError(t, CheckInvariants(next))
}

func TestLoseForces(t *testing.T) {
	s := newTestGame(t)
	next, err := ShipForces(s, core.Fremen, "false_wall_south", 4, 0, 3)
	require.NoError(t, err)

	next, err = LoseForcesInTerritory(next, core.Fremen, "false_wall_south", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, ForceCount{Regular: 1, Elite: 2}, next.Factions[core.Fremen].FightersIn("false_wall_south"))
	assert.Equal(t, ForceCount{Regular: 2, Elite: 1}, next.Factions[core.Fremen].Tanks)
	assert.Equal(t, 3, next.Factions[core.Fremen].ForcesLostInBattle)

	next, lost, err := AllFightersToTanks(next, core.Fremen, "false_wall_south")
	require.NoError(t, err)
	assert.Equal(t, ForceCount{Regular: 1, Elite: 2}, lost)
	assert.Empty(t, next.Factions[core.Fremen].StacksIn("false_wall_south"))
	require.NoError(t, CheckInvariants(next))

	_, err = LoseForcesInTerritory(next, core.Fremen, "sietch_tabr", 5, 0)
	assert.True(t, core.IsInvariant(err))
}

func TestAdvisors(t *testing.T) {
	s := newTestGame(t)
	next, err := ShipAdvisors(s, core.BeneGesserit, "arrakeen", 9, 1)
	require.NoError(t, err)
	assert.Equal(t, []core.Faction{core.Atreides}, next.Occupants("arrakeen"))

	next, err = ForcesToTanks(next, core.BeneGesserit, "arrakeen", 9, 0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Factions[core.BeneGesserit].Tanks.Regular)
	require.NoError(t, CheckInvariants(next))
}

func TestLeaderLifecycle(t *testing.T) {
	s := newTestGame(t)

	next, err := UseLeader(s, "duncan_idaho", "arrakeen")
	require.NoError(t, err)
	l, _ := next.LeaderByID("duncan_idaho")
	assert.Equal(t, LeaderOnBoard, l.Location)
	assert.Equal(t, core.TerritoryID("arrakeen"), l.UsedInTerritory)

	next, err = CaptureLeader(next, "duncan_idaho", core.Harkonnen)
	require.NoError(t, err)
	assert.Len(t, next.LeadersHeldBy(core.Harkonnen), 6)
	assert.Len(t, next.LeadersHeldBy(core.Atreides), 4)

	next = ResetLeaderUsage(next)
	l, _ = next.LeaderByID("duncan_idaho")
	assert.Equal(t, LeaderCaptorPool, l.Location)
	assert.False(t, l.UsedThisTurn)

	next, err = ReturnLeader(next, "duncan_idaho")
	require.NoError(t, err)
	l, _ = next.LeaderByID("duncan_idaho")
	assert.Equal(t, core.Atreides, l.Holder())
	assert.Equal(t, LeaderInPool, l.Location)

	next, err = KillLeader(next, "duncan_idaho")
	require.NoError(t, err)
	l, _ = next.LeaderByID("duncan_idaho")
	assert.False(t, l.Alive())
	assert.True(t, l.HasBeenKilled)

	_, err = CaptureLeader(next, "duncan_idaho", core.Harkonnen)
	assert.True(t, core.IsInvariant(err))

	next, err = ReviveLeader(next, "duncan_idaho")
	require.NoError(t, err)
	l, _ = next.LeaderByID("duncan_idaho")
	assert.True(t, l.Alive())

	_, err = KillLeader(next, "paul")
	assert.ErrorIs(t, err, core.ErrUnknownLeader)
}

func TestCards(t *testing.T) {
	s := newTestGame(t, core.Atreides, core.Harkonnen)
	top := s.Decks.Treachery[0]

	next, card, err := DrawTreachery(s, IdentityShuffler{})
	require.NoError(t, err)
	assert.Equal(t, top, card)
	assert.Len(t, next.Decks.Treachery, 31)

	for i := 0; i < 4; i++ {
		next, err = GiveCard(next, core.Atreides, core.CardID("card"))
		require.NoError(t, err)
	}
	_, err = GiveCard(next, core.Atreides, "one_too_many")
	assert.True(t, core.IsInvariant(err), "hand limit is an invariant")

	next, err = DiscardCard(next, core.Atreides, "card")
	require.NoError(t, err)
	assert.Len(t, next.Factions[core.Atreides].Hand, 3)
	assert.Equal(t, []core.CardID{"card"}, next.Decks.TreacheryDiscard)
	_, err = DiscardCard(next, core.Harkonnen, "card")
	assert.True(t, core.IsInvariant(err))

	next = ReturnCardsToDeck(next, []core.CardID{"x", "y"})
	assert.Equal(t, []core.CardID{"x", "y"}, next.Decks.Treachery[:2])
}

func TestDrawTreachery_Reshuffles(t *testing.T) {
	s := newTestGame(t, core.Atreides, core.Harkonnen)
	s.Decks.Treachery = nil
	s.Decks.TreacheryDiscard = []core.CardID{"lasgun"}

	next, card, err := DrawTreachery(s, IdentityShuffler{})
	require.NoError(t, err)
	assert.Equal(t, core.CardID("lasgun"), card)
	assert.Empty(t, next.Decks.TreacheryDiscard)

	_, _, err = DrawTreachery(next, IdentityShuffler{})
	assert.ErrorIs(t, err, core.ErrEmptyDeck)
}

func TestAlliances(t *testing.T) {
	s := newTestGame(t)
	next, err := FormAlliance(s, core.Fremen, core.Atreides)
	require.NoError(t, err)
	assert.Equal(t, core.Atreides, next.AllyOf(core.Fremen))
	assert.Equal(t, [][2]core.Faction{{core.Atreides, core.Fremen}}, next.Alliances())
	require.NoError(t, CheckInvariants(next))

	_, err = FormAlliance(next, core.Fremen, core.Emperor)
	assert.True(t, core.IsInvariant(err))

	next = BreakAlliance(next, core.Atreides)
	assert.Equal(t, core.NoFaction, next.AllyOf(core.Fremen))
	assert.Empty(t, next.Alliances())
}

func TestCharityAndLog(t *testing.T) {
	s := newTestGame(t)
	s.Turn = 3
	next := RecordCharity(s, core.Fremen)
	assert.True(t, next.CharityClaimedThisTurn(core.Fremen))
	next.Turn = 4
	assert.False(t, next.CharityClaimedThisTurn(core.Fremen))

	next = AppendLog(next, core.Fremen, "CLAIM_CHARITY", "2 spice")
	require.Len(t, next.ActionLog, 1)
	assert.Equal(t, 4, next.ActionLog[0].Turn)
}

func TestCheckInvariants_Violations(t *testing.T) {
	s := newTestGame(t)
	s.Factions[core.Atreides].Reserves.Regular++
	s.Factions[core.Fremen].Spice += 5
	s.Factions[core.Emperor].Ally = core.Fremen

	err := CheckInvariants(s)
	require.Error(t, err)
	assert.True(t, core.IsInvariant(err))
	assert.Contains(t, err.Error(), "atreides force total")
	assert.Contains(t, err.Error(), "ledger")
	assert.Contains(t, err.Error(), "not mirrored")
}

func TestStormCardsAndSpiceDeck(t *testing.T) {
	s := newTestGame(t)
	s.Decks.Storm = nil
	next, card := DrawStormCard(s, IdentityShuffler{})
	assert.Equal(t, 1, card)
	assert.Len(t, next.Decks.Storm, 5)

	next.Decks.Spice = nil
	next.Decks.SpiceDiscardA = []string{"a"}
	next.Decks.SpiceDiscardB = []string{"b"}
	next = ShuffleSpiceDiscards(next, IdentityShuffler{})
	assert.Equal(t, []string{"a", "b"}, next.Decks.Spice)
	assert.Empty(t, next.Decks.SpiceDiscardA)
}
