package core

import "fmt"

// Faction identifies one of the six playable factions
type Faction string

const (
	Atreides     Faction = "atreides"
	BeneGesserit Faction = "bene_gesserit"
	Emperor      Faction = "emperor"
	Fremen       Faction = "fremen"
	Harkonnen    Faction = "harkonnen"
	SpacingGuild Faction = "spacing_guild"
)

// NoFaction marks an absent faction reference (no ally, no captor, no winner)
const NoFaction Faction = ""

var allFactions = []Faction{Atreides, BeneGesserit, Emperor, Fremen, Harkonnen, SpacingGuild}

// AllFactions returns every faction in canonical order
func AllFactions() []Faction {
	out := make([]Faction, len(allFactions))
	copy(out, allFactions)
	return out
}

// ParseFaction converts a string into a Faction
func ParseFaction(s string) (Faction, error) {
	for _, f := range allFactions {
		if string(f) == s {
			return f, nil
		}
	}
	return NoFaction, fmt.Errorf("%w: %q", ErrUnknownFaction, s)
}

func (f Faction) String() string {
	if f == NoFaction {
		return "none"
	}
	return string(f)
}

// TerritoryID identifies a territory on the board
type TerritoryID string

// LeaderID identifies a leader definition
type LeaderID string

// CardID identifies a single physical treachery card
type CardID string

// SectorCount is the number of storm sectors around the board
const SectorCount = 18
