package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant marks an engine programming error. Handlers return it
	// wrapped with context and the orchestrator aborts the run.
	ErrInvariant        = errors.New("engine invariant violated")
	ErrGameOver         = errors.New("game is over")
	ErrUnknownFaction   = errors.New("unknown faction")
	ErrNotInGame        = errors.New("faction not in game")
	ErrUnknownLeader    = errors.New("unknown leader")
	ErrUnknownCard      = errors.New("unknown card")
	ErrUnknownTerritory = errors.New("unknown territory")
	ErrEmptyDeck        = errors.New("deck is empty")
)

// Invariantf wraps ErrInvariant with a formatted description
func Invariantf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// IsInvariant reports whether err is an invariant violation
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// WrapActionError adds faction and action context to an error
func WrapActionError(faction Faction, action string, err error) error {
	if err == nil {
		return nil
	}
	if action == "" {
		return fmt.Errorf("%s action: %w", faction, err)
	}
	return fmt.Errorf("%s: %s: %w", faction, action, err)
}
