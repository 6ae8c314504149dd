package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/testutil"
)

func TestStorm_FirstTurnDial(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Fremen)
	s = testutil.Place(t, s, core.Fremen, "south_mesa", 4, 5, 0)
	s = testutil.Place(t, s, core.Atreides, "south_mesa", 3, 4, 0)
	s = testutil.Place(t, s, core.Atreides, "tueks_sietch", 4, 2, 0)
	s = game.PlaceSpice(s, "cielago_north", 2, 8)
	s = game.PlaceSpice(s, "habbanya_ridge_flat", 17, 10)

	table, agents := scripts(core.Atreides, core.Fremen)
	agents[core.Atreides].Queue(agent.RequestDialStorm, act(agent.ActionDialStorm, map[string]interface{}{agent.KeyDial: 3}))
	agents[core.Fremen].Queue(agent.RequestDialStorm, act(agent.ActionDialStorm, map[string]interface{}{agent.KeyDial: 4}))

	next, evs := drive(t, NewStormHandler(game.IdentityShuffler{}), s, table)

	assert.Equal(t, 7, next.StormSector)
	assert.Equal(t, []core.Faction{core.Fremen, core.Atreides}, next.StormOrder)

	fremen := next.Factions[core.Fremen]
	st, ok := fremen.Stack("south_mesa", 4)
	require.True(t, ok)
	assert.Equal(t, 2, st.Regular, "fremen lose half rounded up")
	assert.Equal(t, 3, fremen.Tanks.Regular)

	atreides := next.Factions[core.Atreides]
	_, ok = atreides.Stack("south_mesa", 3)
	assert.False(t, ok)
	assert.Equal(t, 4, atreides.Tanks.Regular)
	_, ok = atreides.Stack("tueks_sietch", 4)
	assert.True(t, ok, "strongholds shelter from the storm")

	assert.Zero(t, next.SpiceIn("cielago_north"))
	assert.Equal(t, 10, next.SpiceIn("habbanya_ridge_flat"))
	assert.Len(t, ofType(evs, events.EventForcesKilledByStorm), 2)
	assert.Len(t, ofType(evs, events.EventSpiceDestroyed), 1)
}

func TestStorm_SparesAdvisors(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.BeneGesserit)
	s = testutil.Place(t, s, core.BeneGesserit, "south_mesa", 4, 2, 0)
	s, err := game.ShipAdvisors(s, core.BeneGesserit, "cielago_north", 2, 3)
	require.NoError(t, err)

	table, agents := scripts(core.Atreides, core.BeneGesserit)
	agents[core.Atreides].Queue(agent.RequestDialStorm, act(agent.ActionDialStorm, map[string]interface{}{agent.KeyDial: 3}))
	agents[core.BeneGesserit].Queue(agent.RequestDialStorm, act(agent.ActionDialStorm, map[string]interface{}{agent.KeyDial: 4}))

	next, evs := drive(t, NewStormHandler(game.IdentityShuffler{}), s, table)

	require.Equal(t, 7, next.StormSector)
	bg := next.Factions[core.BeneGesserit]
	_, ok := bg.Stack("south_mesa", 4)
	assert.False(t, ok, "fighters die in the storm")
	st, ok := bg.Stack("cielago_north", 2)
	require.True(t, ok)
	assert.Equal(t, 3, st.Advisors)
	assert.Equal(t, 2, bg.Tanks.Regular)

	killed := ofType(evs, events.EventForcesKilledByStorm)
	require.Len(t, killed, 1)
	assert.Equal(t, "south_mesa", killed[0].Data["territory"])
}

func TestStorm_InvalidDialCountsZero(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Fremen)
	table, agents := scripts(core.Atreides, core.Fremen)
	agents[core.Atreides].Queue(agent.RequestDialStorm, act(agent.ActionDialStorm, map[string]interface{}{agent.KeyDial: 25}))
	agents[core.Fremen].Queue(agent.RequestDialStorm, act(agent.ActionDialStorm, map[string]interface{}{agent.KeyDial: 2}))

	next, evs := drive(t, NewStormHandler(game.IdentityShuffler{}), s, table)

	assert.Equal(t, 2, next.StormSector)
	assert.Equal(t, []string{string(core.CodeInvalidAmount)}, rejectedCodes(evs))
}

func TestStorm_LaterTurnsDrawCards(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Fremen)
	s.Turn = 2
	h := NewStormHandler(game.IdentityShuffler{})

	res, err := h.Initialize(s)
	require.NoError(t, err)

	assert.True(t, res.PhaseComplete)
	assert.Empty(t, res.PendingRequests)
	assert.Equal(t, states.PhaseSpiceBlow, res.NextPhase)
	assert.Equal(t, 1, res.State.StormSector)
	assert.Len(t, res.State.Decks.Storm, 5)
}

func TestSpiceBlow_PlacesSpice(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Fremen)
	table, _ := scripts(core.Atreides, core.Fremen)

	next, evs := drive(t, NewSpiceBlowHandler(game.IdentityShuffler{}), s, table)

	assert.Equal(t, 8, next.SpiceAt("cielago_north", 2))
	assert.Equal(t, 12, next.SpiceAt("cielago_south", 1))
	assert.Equal(t, []string{"spice_cielago_north"}, next.Decks.SpiceDiscardA)
	assert.Equal(t, []string{"spice_cielago_south"}, next.Decks.SpiceDiscardB)
	assert.Len(t, ofType(evs, events.EventSpicePlaced), 2)
	assert.Empty(t, ofType(evs, events.EventNexusStarted))
}

func TestSpiceBlow_StormCoversSpice(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Fremen)
	s.StormSector = 2

	next, evs := drive(t, NewSpiceBlowHandler(game.IdentityShuffler{}), s, agent.PassAgent{})

	assert.Zero(t, next.SpiceIn("cielago_north"))
	assert.Len(t, ofType(evs, events.EventSpiceDestroyed), 1)
}

func TestSpiceBlow_WormAndNexus(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Fremen)
	s.Turn = 2
	s.Decks.Spice = []string{"shai_hulud_1", "spice_south_mesa", "spice_red_chasm"}
	s.Decks.SpiceDiscardA = []string{"spice_cielago_north"}
	s = testutil.Place(t, s, core.Atreides, "cielago_north", 1, 4, 0)
	s = testutil.Place(t, s, core.Fremen, "cielago_north", 2, 3, 0)
	s = game.PlaceSpice(s, "cielago_north", 2, 8)

	table, agents := scripts(core.Atreides, core.Fremen)
	agents[core.Atreides].Queue(agent.RequestAllianceDecision, act(agent.ActionFormAlliance, map[string]interface{}{agent.KeyTarget: "fremen"}))
	agents[core.Fremen].Queue(agent.RequestAllianceDecision, act(agent.ActionFormAlliance, map[string]interface{}{agent.KeyTarget: "atreides"}))

	next, evs := drive(t, NewSpiceBlowHandler(game.IdentityShuffler{}), s, table)

	assert.Equal(t, 4, next.Factions[core.Atreides].Tanks.Regular)
	_, ok := next.Factions[core.Fremen].Stack("cielago_north", 2)
	assert.True(t, ok, "fremen ride the worm")
	assert.Zero(t, next.SpiceIn("cielago_north"))
	assert.Equal(t, 10, next.SpiceIn("south_mesa"))
	assert.Equal(t, 8, next.SpiceIn("red_chasm"))

	assert.Len(t, ofType(evs, events.EventNexusStarted), 1)
	assert.Equal(t, core.Fremen, next.AllyOf(core.Atreides))
	assert.Len(t, ofType(evs, events.EventAllianceFormed), 1)
}

func TestSpiceBlow_OneSidedProposalAndBreak(t *testing.T) {
	s := testutil.NewEmptyBoardState(t, core.Atreides, core.Fremen, core.Harkonnen)
	s.Turn = 3
	s.Decks.Spice = []string{"shai_hulud_1", "spice_south_mesa", "spice_red_chasm"}
	s, err := game.FormAlliance(s, core.Atreides, core.Fremen)
	require.NoError(t, err)

	table, agents := scripts(core.Atreides, core.Fremen, core.Harkonnen)
	agents[core.Atreides].Queue(agent.RequestAllianceDecision, act(agent.ActionBreakAlliance, nil))
	agents[core.Harkonnen].Queue(agent.RequestAllianceDecision, act(agent.ActionFormAlliance, map[string]interface{}{agent.KeyTarget: "fremen"}))

	next, evs := drive(t, NewSpiceBlowHandler(game.IdentityShuffler{}), s, table)

	assert.Equal(t, core.NoFaction, next.AllyOf(core.Atreides))
	assert.Equal(t, core.NoFaction, next.AllyOf(core.Fremen))
	assert.Equal(t, core.NoFaction, next.AllyOf(core.Harkonnen))
	assert.Len(t, ofType(evs, events.EventAllianceBroken), 1)
	assert.Empty(t, ofType(evs, events.EventAllianceFormed))
}
