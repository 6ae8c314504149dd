package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext carries run-level information shared across phase transitions
type GameContext struct {
	// GameID uniquely identifies this game instance
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// StartTime is when the game left setup
	StartTime time.Time

	// Turn is the current turn number (0 during setup)
	Turn int

	// Winners holds the winning factions once the game has ended
	Winners []string

	// Error holds the error that aborted the run, if any
	Error error

	// Metadata for custom run data
	Metadata map[string]interface{}
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:   gameID,
		Logger:   logger.With().Str("game_id", gameID).Logger(),
		Metadata: make(map[string]interface{}),
	}
}

// GetElapsedTime returns the time elapsed since the game started
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	return time.Since(gc.StartTime)
}

// SetMetadata stores custom data
func (gc *GameContext) SetMetadata(key string, value interface{}) {
	gc.Metadata[key] = value
}

// GetMetadata retrieves custom data
func (gc *GameContext) GetMetadata(key string) (interface{}, bool) {
	val, exists := gc.Metadata[key]
	return val, exists
}
