package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/testutil"
)

func TestCheckVictory(t *testing.T) {
	checker := NewWinConditionChecker(testutil.NopLogger())

	t.Run("no winner at start", func(t *testing.T) {
		s := testutil.NewTestState(t)
		v := checker.CheckVictory(s)
		assert.False(t, v.GameOver)
		assert.Empty(t, v.Winners)
	})

	t.Run("three strongholds alone", func(t *testing.T) {
		s := testutil.NewEmptyBoardState(t, core.Atreides, core.Harkonnen, core.Emperor)
		s = testutil.Place(t, s, core.Harkonnen, "carthag", 10, 1, 0)
		s = testutil.Place(t, s, core.Harkonnen, "arrakeen", 9, 1, 0)
		s = testutil.Place(t, s, core.Harkonnen, "sietch_tabr", 13, 1, 0)

		v := checker.CheckVictory(s)
		require.True(t, v.GameOver)
		assert.Equal(t, []core.Faction{core.Harkonnen}, v.Winners)
		assert.Equal(t, ReasonStrongholds, v.Reason)
	})

	t.Run("contested stronghold does not count", func(t *testing.T) {
		s := testutil.NewEmptyBoardState(t, core.Atreides, core.Harkonnen)
		s = testutil.Place(t, s, core.Harkonnen, "carthag", 10, 1, 0)
		s = testutil.Place(t, s, core.Harkonnen, "arrakeen", 9, 1, 0)
		s = testutil.Place(t, s, core.Harkonnen, "sietch_tabr", 13, 1, 0)
		s = testutil.Place(t, s, core.Atreides, "sietch_tabr", 13, 1, 0)

		assert.False(t, checker.CheckVictory(s).GameOver)
	})

	t.Run("four strongholds allied", func(t *testing.T) {
		s := testutil.NewEmptyBoardState(t, core.Atreides, core.Harkonnen, core.Fremen)
		s = testutil.Place(t, s, core.Atreides, "arrakeen", 9, 1, 0)
		s = testutil.Place(t, s, core.Atreides, "carthag", 10, 1, 0)
		s = testutil.Place(t, s, core.Atreides, "tueks_sietch", 4, 1, 0)
		assert.True(t, checker.CheckVictory(s).GameOver)

		var err error
		s, err = game.FormAlliance(s, core.Atreides, core.Fremen)
		require.NoError(t, err)
		assert.False(t, checker.CheckVictory(s).GameOver, "allies need four")

		s = testutil.Place(t, s, core.Fremen, "sietch_tabr", 13, 1, 0)
		v := checker.CheckVictory(s)
		require.True(t, v.GameOver)
		assert.ElementsMatch(t, []core.Faction{core.Atreides, core.Fremen}, v.Winners)
	})

	t.Run("prediction overrides", func(t *testing.T) {
		s := testutil.NewEmptyBoardState(t, core.BeneGesserit, core.Harkonnen)
		s.Prediction = game.Prediction{Faction: core.Harkonnen, Turn: 1}
		s = testutil.Place(t, s, core.Harkonnen, "carthag", 10, 1, 0)
		s = testutil.Place(t, s, core.Harkonnen, "arrakeen", 9, 1, 0)
		s = testutil.Place(t, s, core.Harkonnen, "sietch_tabr", 13, 1, 0)

		v := checker.CheckVictory(s)
		assert.Equal(t, []core.Faction{core.BeneGesserit}, v.Winners)
		assert.Equal(t, ReasonPrediction, v.Reason)

		s.Turn = 2
		v = checker.CheckVictory(s)
		assert.Equal(t, []core.Faction{core.Harkonnen}, v.Winners)
	})

	t.Run("guild wins at the final turn", func(t *testing.T) {
		s := testutil.NewTestState(t)
		s.Turn = s.Variant.MaxTurns
		v := checker.CheckVictory(s)
		require.True(t, v.GameOver)
		assert.Equal(t, []core.Faction{core.SpacingGuild}, v.Winners)
		assert.Equal(t, ReasonDefault, v.Reason)
	})

	t.Run("most strongholds at the final turn without guild", func(t *testing.T) {
		s := testutil.NewTestState(t, core.Atreides, core.Harkonnen, core.Fremen)
		s = testutil.Place(t, s, core.Fremen, "habbanya_ridge_sietch", 16, 1, 0)
		s.Turn = s.Variant.MaxTurns
		v := checker.CheckVictory(s)
		require.True(t, v.GameOver)
		assert.Equal(t, []core.Faction{core.Fremen}, v.Winners)
		assert.Equal(t, ReasonFinalTurn, v.Reason)
	})
}
