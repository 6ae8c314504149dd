package game

import (
	"sort"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// ComputeStormOrder orders factions by how far counterclockwise their seat
// lies from the storm. A seat under the storm goes last.
func ComputeStormOrder(s *GameState) []core.Faction {
	factions := s.FactionList()
	dist := func(f core.Faction) int {
		d := (s.Factions[f].SeatSector - s.StormSector + core.SectorCount) % core.SectorCount
		if d == 0 {
			d = core.SectorCount
		}
		return d
	}
	sort.SliceStable(factions, func(i, j int) bool {
		return dist(factions[i]) < dist(factions[j])
	})
	return factions
}

// MoveStorm advances the storm counterclockwise and returns the sectors it
// passed over, ending with the sector it stops in
func MoveStorm(s *GameState, sectors int) (*GameState, []int) {
	next := s.Clone()
	var swept []int
	for i := 1; i <= sectors; i++ {
		swept = append(swept, (s.StormSector+i)%core.SectorCount)
	}
	next.StormSector = (s.StormSector + sectors) % core.SectorCount
	next.StormOrder = ComputeStormOrder(next)
	return next, swept
}

// InStorm reports whether a sector is under the storm
func (s *GameState) InStorm(sector int) bool {
	return sector == s.StormSector
}

// IndexInStormOrder returns the faction's position in storm order, or -1
func (s *GameState) IndexInStormOrder(f core.Faction) int {
	for i, o := range s.StormOrder {
		if o == f {
			return i
		}
	}
	return -1
}
