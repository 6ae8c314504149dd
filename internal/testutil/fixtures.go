package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
)

// TestGameID is the game id used by fixtures
const TestGameID = "test-game"

// NewTestState creates a game with the given factions (all six when none
// are given), decks in catalog order, on turn 1 with the storm at sector 0
func NewTestState(t testing.TB, factions ...core.Faction) *game.GameState {
	t.Helper()
	if len(factions) == 0 {
		factions = core.AllFactions()
	}
	s, err := game.NewGame(data.Default(), game.Options{GameID: TestGameID, Factions: factions}, game.IdentityShuffler{})
	require.NoError(t, err)
	s.Turn = 1
	return s
}

// NewEmptyBoardState is NewTestState with every starting stack returned to
// reserves
func NewEmptyBoardState(t testing.TB, factions ...core.Faction) *game.GameState {
	t.Helper()
	return ClearBoard(NewTestState(t, factions...))
}

// ClearBoard returns every unit on the board to its faction's reserves
func ClearBoard(s *game.GameState) *game.GameState {
	next := s.Clone()
	for _, fs := range next.Factions {
		for _, st := range fs.Forces {
			fs.Reserves.Regular += st.Regular + st.Advisors
			fs.Reserves.Elite += st.Elite
		}
		fs.Forces = nil
	}
	return next
}

// Place ships units from reserves to a location
func Place(t testing.TB, s *game.GameState, f core.Faction, territory core.TerritoryID, sector, regular, elite int) *game.GameState {
	t.Helper()
	next, err := game.ShipForces(s, f, territory, sector, regular, elite)
	require.NoError(t, err)
	return next
}

// Kill sends units from reserves straight to the tanks
func Kill(t testing.TB, s *game.GameState, f core.Faction, regular, elite int) *game.GameState {
	t.Helper()
	next := s.Clone()
	fs := next.Factions[f]
	require.GreaterOrEqual(t, fs.Reserves.Regular, regular)
	require.GreaterOrEqual(t, fs.Reserves.Elite, elite)
	fs.Reserves.Regular -= regular
	fs.Reserves.Elite -= elite
	fs.Tanks.Regular += regular
	fs.Tanks.Elite += elite
	return next
}

// GiveCards adds cards to a faction's hand
func GiveCards(t testing.TB, s *game.GameState, f core.Faction, cards ...core.CardID) *game.GameState {
	t.Helper()
	next := s
	for _, c := range cards {
		var err error
		next, err = game.GiveCard(next, f, c)
		require.NoError(t, err)
	}
	return next
}

// SetSpice sets a faction's spice through the bank so the ledger balances
func SetSpice(t testing.TB, s *game.GameState, f core.Faction, amount int) *game.GameState {
	t.Helper()
	have := s.Factions[f].Spice
	var (
		next *game.GameState
		err  error
	)
	if amount >= have {
		next, err = game.TransferSpice(s, core.NoFaction, f, amount-have)
	} else {
		next, err = game.TransferSpice(s, f, core.NoFaction, have-amount)
	}
	require.NoError(t, err)
	return next
}

// RequireInvariants fails the test when the state breaks a conservation law
func RequireInvariants(t testing.TB, s *game.GameState) {
	t.Helper()
	require.NoError(t, game.CheckInvariants(s))
}
