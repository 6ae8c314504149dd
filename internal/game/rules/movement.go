package rules

import (
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
)

const greatFlat core.TerritoryID = "the_great_flat"

// fremenShipmentReach is how far from the Great Flat Fremen may send forces
const fremenShipmentReach = 2

// LocationInStorm reports whether a sector of a territory is under the
// storm. The polar sink is never in storm.
func LocationInStorm(s *game.GameState, t core.TerritoryID, sector int) bool {
	def, ok := s.Catalog.Territory(t)
	if !ok || def.Type == data.TerrainPolar {
		return false
	}
	return s.InStorm(sector)
}

// stormBlocks reports whether the storm closes a territory to movement
func stormBlocks(s *game.GameState, t core.TerritoryID) bool {
	def, ok := s.Catalog.Territory(t)
	if !ok || def.Type == data.TerrainPolar {
		return false
	}
	for _, sector := range def.Sectors {
		if !s.InStorm(sector) {
			return false
		}
	}
	return true
}

// StrongholdFull reports whether f is kept out of a stronghold that
// already holds two other factions
func StrongholdFull(s *game.GameState, f core.Faction, t core.TerritoryID) bool {
	def, ok := s.Catalog.Territory(t)
	if !ok || !def.IsStronghold() {
		return false
	}
	others := 0
	for _, occ := range s.Occupants(t) {
		if occ == f {
			return false
		}
		others++
	}
	return others >= 2
}

// ShipmentCost returns the spice a faction pays to ship count units
func ShipmentCost(s *game.GameState, f core.Faction, t core.TerritoryID, count int) int {
	caps := Capabilities(f)
	if caps.ShipsFreeNearGreatFlat {
		return 0
	}
	consts := s.Catalog.Constants
	per := consts.ShipmentCostOther
	if def, ok := s.Catalog.Territory(t); ok && def.IsStronghold() {
		per = consts.ShipmentCostStronghold
	}
	cost := per * count
	if caps.ShipsAtHalfPrice {
		cost = (cost + 1) / 2
	}
	return cost
}

// checkLocation validates a territory/sector pair as a destination
func checkLocation(s *game.GameState, c *core.Collector, t core.TerritoryID, sector int) bool {
	def, ok := s.Catalog.Territory(t)
	if !ok {
		c.Add(core.CodeInvalidTerritory, fmt.Sprintf("unknown territory %q", t))
		return false
	}
	if !def.HasSector(sector) {
		c.Add(core.CodeInvalidSector, fmt.Sprintf("%s does not span sector %d", t, sector))
		return false
	}
	if LocationInStorm(s, t, sector) {
		c.Add(core.CodeStormBlocked, fmt.Sprintf("sector %d is in the storm", sector))
	}
	return true
}

// ValidateShipment checks shipping units from reserves onto the board
func ValidateShipment(s *game.GameState, f core.Faction, t core.TerritoryID, sector, regular, elite int) core.ValidationResult {
	fs, ok := s.Faction(f)
	if !ok {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s is not in the game", f))
	}
	var c core.Collector
	if !checkLocation(s, &c, t, sector) {
		return c.Result(nil)
	}
	if regular < 0 || elite < 0 || regular+elite == 0 {
		c.Add(core.CodeInvalidAmount, "shipment must contain at least one unit")
	}
	if fs.Reserves.Regular < regular || fs.Reserves.Elite < elite {
		c.Add(core.CodeInsufficientForces, fmt.Sprintf("reserves hold %d+%d", fs.Reserves.Regular, fs.Reserves.Elite))
	}
	if StrongholdFull(s, f, t) {
		c.Add(core.CodeStrongholdFull, fmt.Sprintf("%s already holds two factions", t))
	}
	if Capabilities(f).ShipsFreeNearGreatFlat {
		if d, ok := s.Catalog.Distance(greatFlat, t, nil); !ok || d > fremenShipmentReach {
			c.Add(core.CodeShipmentRestricted, fmt.Sprintf("%s is more than %d territories from the Great Flat", t, fremenShipmentReach))
		}
	}
	cost := ShipmentCost(s, f, t, regular+elite)
	if cost > fs.Spice {
		c.Add(core.CodeInsufficientSpice, fmt.Sprintf("shipment costs %d, %s holds %d", cost, f, fs.Spice))
	}
	return c.Result(map[string]interface{}{"cost": cost})
}

// ValidateMovement checks moving units from one board location to another
func ValidateMovement(s *game.GameState, f core.Faction, from core.TerritoryID, fromSector int, to core.TerritoryID, toSector int, regular, elite int) core.ValidationResult {
	fs, ok := s.Faction(f)
	if !ok {
		return core.Reject(core.CodeNotEligible, fmt.Sprintf("%s is not in the game", f))
	}
	var c core.Collector
	st, ok := fs.Stack(from, fromSector)
	if !ok {
		c.Add(core.CodeInsufficientForces, fmt.Sprintf("%s has no forces in %s/%d", f, from, fromSector))
		return c.Result(nil)
	}
	if LocationInStorm(s, from, fromSector) {
		c.Add(core.CodeStormBlocked, fmt.Sprintf("forces in %s/%d are in the storm", from, fromSector))
	}
	if !checkLocation(s, &c, to, toSector) {
		return c.Result(nil)
	}
	if from == to && fromSector == toSector {
		c.Add(core.CodeInvalidTarget, "destination equals origin")
	}
	if regular < 0 || elite < 0 || regular+elite == 0 {
		c.Add(core.CodeInvalidAmount, "movement must contain at least one unit")
	}
	if st.Regular < regular || st.Elite < elite {
		c.Add(core.CodeInsufficientForces, fmt.Sprintf("stack holds %d+%d", st.Regular, st.Elite))
	}
	if StrongholdFull(s, f, to) {
		c.Add(core.CodeStrongholdFull, fmt.Sprintf("%s already holds two factions", to))
	}
	moveRange := MovementRange(s, f)
	d, reachable := s.Catalog.Distance(from, to, func(t core.TerritoryID) bool { return stormBlocks(s, t) })
	if !reachable || d > moveRange {
		c.Add(core.CodeNotAdjacent, fmt.Sprintf("%s is out of range %d from %s", to, moveRange, from))
	}
	return c.Result(map[string]interface{}{"distance": d})
}

// Destination is a reachable territory and a sector to enter it by
type Destination struct {
	Territory core.TerritoryID `json:"territory"`
	Sector    int              `json:"sector"`
	Distance  int              `json:"distance"`
}

// LegalDestinations lists every location a stack may legally move to.
// Each territory is offered once, by its first sector outside the storm.
func LegalDestinations(s *game.GameState, f core.Faction, from core.TerritoryID, fromSector int) []Destination {
	fs, ok := s.Faction(f)
	if !ok {
		return nil
	}
	st, ok := fs.Stack(from, fromSector)
	if !ok || st.Fighters() == 0 || LocationInStorm(s, from, fromSector) {
		return nil
	}
	moveRange := MovementRange(s, f)
	blocked := func(t core.TerritoryID) bool { return stormBlocks(s, t) }

	var out []Destination
	for _, t := range allTerritories(s.Catalog) {
		if t == from || StrongholdFull(s, f, t) {
			continue
		}
		d, ok := s.Catalog.Distance(from, t, blocked)
		if !ok || d > moveRange {
			continue
		}
		def, _ := s.Catalog.Territory(t)
		for _, sector := range def.Sectors {
			if !LocationInStorm(s, t, sector) {
				out = append(out, Destination{Territory: t, Sector: sector, Distance: d})
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// ShipmentTargets lists the locations a faction may ship to this turn
func ShipmentTargets(s *game.GameState, f core.Faction) []Destination {
	var out []Destination
	for _, t := range allTerritories(s.Catalog) {
		if StrongholdFull(s, f, t) {
			continue
		}
		if Capabilities(f).ShipsFreeNearGreatFlat {
			if d, ok := s.Catalog.Distance(greatFlat, t, nil); !ok || d > fremenShipmentReach {
				continue
			}
		}
		def, _ := s.Catalog.Territory(t)
		for _, sector := range def.Sectors {
			if !LocationInStorm(s, t, sector) {
				out = append(out, Destination{Territory: t, Sector: sector})
				break
			}
		}
	}
	return out
}

func allTerritories(cat *data.Catalog) []core.TerritoryID {
	return cat.TerritoryIDs()
}
