package game

import "github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"

// This file contains faction statistics derived from a game state.

// FactionStats summarises one faction's position
type FactionStats struct {
	Faction      core.Faction       `json:"faction"`
	Spice        int                `json:"spice"`
	Bribes       int                `json:"bribes"`
	Reserves     int                `json:"reserves"`
	OnBoard      int                `json:"on_board"`
	InTanks      int                `json:"in_tanks"`
	Cards        int                `json:"cards"`
	LeadersAlive int                `json:"leaders_alive"`
	Captured     int                `json:"captured"`
	Strongholds  []core.TerritoryID `json:"strongholds"`
	Ally         core.Faction       `json:"ally,omitempty"`
}

// Stats returns a summary per faction, in storm order
func (s *GameState) Stats() []FactionStats {
	factions := s.orderedFactions()
	out := make([]FactionStats, 0, len(factions))
	for _, f := range factions {
		fs := s.Factions[f]
		st := FactionStats{
			Faction:     f,
			Spice:       fs.Spice,
			Bribes:      fs.Bribes,
			Reserves:    fs.Reserves.Total(),
			OnBoard:     fs.OnBoard(),
			InTanks:     fs.Tanks.Total(),
			Cards:       len(fs.Hand),
			Strongholds: s.ControlledStrongholds(f),
			Ally:        fs.Ally,
		}
		for _, l := range s.LeadersHeldBy(f) {
			if l.OriginalFaction == f {
				st.LeadersAlive++
			} else {
				st.Captured++
			}
		}
		out = append(out, st)
	}
	return out
}

// Leading returns the faction holding the most strongholds, ties broken by
// spice then storm order
func (s *GameState) Leading() (FactionStats, bool) {
	var best FactionStats
	found := false
	for _, st := range s.Stats() {
		if !found ||
			len(st.Strongholds) > len(best.Strongholds) ||
			(len(st.Strongholds) == len(best.Strongholds) && st.Spice > best.Spice) {
			best, found = st, true
		}
	}
	return best, found
}
