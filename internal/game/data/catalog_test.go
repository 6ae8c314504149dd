package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	assert.Len(t, c.AllLeaderIDs(), 30)
	assert.Len(t, c.AllCardIDs(), 32)
	assert.Len(t, c.SpiceCards(), 21)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, c.StormCards())
	assert.Equal(t, 18, c.Constants.Sectors)
	assert.Len(t, c.TerritoryIDs(), 42)
	assert.Equal(t, core.TerritoryID("polar_sink"), c.TerritoryIDs()[0])

	for _, f := range core.AllFactions() {
		assert.Len(t, c.LeadersOf(f), 5, "faction %s", f)
		setup, ok := c.FactionSetup(f)
		require.True(t, ok, "faction %s", f)
		assert.Equal(t, 20, setup.Regular+setup.Elite, "faction %s", f)
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c := Default()

	l, ok := c.Leader("stilgar")
	require.True(t, ok)
	assert.Equal(t, core.Fremen, l.Faction)
	assert.Equal(t, 7, c.LeaderStrength("stilgar"))

	_, ok = c.Leader("paul")
	assert.False(t, ok)
	assert.Equal(t, 0, c.LeaderStrength("paul"))

	lasgun, ok := c.Card("lasgun")
	require.True(t, ok)
	assert.True(t, lasgun.IsWeapon())
	assert.False(t, lasgun.IsDefense())

	hero, ok := c.Card("cheap_hero_1")
	require.True(t, ok)
	assert.True(t, hero.DiscardAfterUse)

	shield, _ := c.Card("shield_1")
	assert.True(t, shield.IsDefense())
	assert.False(t, shield.DiscardAfterUse)

	assert.Equal(t, []core.TerritoryID{"arrakeen", "carthag", "habbanya_ridge_sietch", "sietch_tabr", "tueks_sietch"}, c.Strongholds())
}

func TestCatalog_AdjacencyIsSymmetric(t *testing.T) {
	c := Default()
	for id, terr := range c.territories {
		for _, n := range terr.Adjacent {
			assert.True(t, c.Adjacent(n, id), "%s -> %s not mirrored", id, n)
		}
	}
	assert.True(t, c.Adjacent("arrakeen", "imperial_basin"))
	assert.False(t, c.Adjacent("arrakeen", "sietch_tabr"))
}

func TestCatalog_Distance(t *testing.T) {
	c := Default()

	d, ok := c.Distance("arrakeen", "arrakeen", nil)
	require.True(t, ok)
	assert.Equal(t, 0, d)

	d, ok = c.Distance("arrakeen", "imperial_basin", nil)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	d, ok = c.Distance("arrakeen", "carthag", nil)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	// Blocking the only intermediate hops forces a longer path
	blocked := func(id core.TerritoryID) bool { return id == "imperial_basin" }
	d, ok = c.Distance("arrakeen", "carthag", blocked)
	require.True(t, ok)
	assert.Greater(t, d, 2)

	_, ok = c.Distance("nowhere", "carthag", nil)
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]byte("leaders: [ {id: a}, {id: a} ]"))
	assert.Error(t, err)

	_, err = Load([]byte("territories: [ {id: a} ]\nadjacency: { a: [b] }"))
	assert.ErrorIs(t, err, core.ErrUnknownTerritory)

	_, err = Load([]byte(":::"))
	assert.Error(t, err)
}
