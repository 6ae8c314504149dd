package testutil

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
)

// NewTestShuffler creates a deterministic shuffler for tests
func NewTestShuffler(seed uint64) *game.SeededShuffler {
	return game.NewSeededShuffler(seed)
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}
