// Package data holds the read-only lookup tables the engine consumes: leader
// and treachery card definitions, the territory map, the spice deck and the
// numeric constants of the rulebook.
package data

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// CardType classifies a treachery card
type CardType string

const (
	CardWeaponProjectile  CardType = "weapon_projectile"
	CardWeaponPoison      CardType = "weapon_poison"
	CardWeaponLasgun      CardType = "weapon_lasgun"
	CardDefenseProjectile CardType = "defense_projectile"
	CardDefensePoison     CardType = "defense_poison"
	CardCheapHero         CardType = "cheap_hero"
	CardSpecial           CardType = "special"
	CardWorthless         CardType = "worthless"
)

// TerrainType classifies a territory
type TerrainType string

const (
	TerrainSand       TerrainType = "sand"
	TerrainRock       TerrainType = "rock"
	TerrainStronghold TerrainType = "stronghold"
	TerrainPolar      TerrainType = "polar"
)

// LeaderDef is the static definition of a leader disc
type LeaderDef struct {
	ID       core.LeaderID `yaml:"id"`
	Faction  core.Faction  `yaml:"faction"`
	Name     string        `yaml:"name"`
	Strength int           `yaml:"strength"`
}

// CardDef is the static definition of a treachery card
type CardDef struct {
	ID              core.CardID `yaml:"id"`
	Name            string      `yaml:"name"`
	Type            CardType    `yaml:"type"`
	DiscardAfterUse bool        `yaml:"discard_after_use"`
}

// IsWeapon reports whether the card may fill the weapon slot of a battle plan
func (c CardDef) IsWeapon() bool {
	return c.Type == CardWeaponProjectile || c.Type == CardWeaponPoison || c.Type == CardWeaponLasgun
}

// IsDefense reports whether the card may fill the defense slot of a battle plan
func (c CardDef) IsDefense() bool {
	return c.Type == CardDefenseProjectile || c.Type == CardDefensePoison
}

// TerritoryDef is the static definition of a territory
type TerritoryDef struct {
	ID       core.TerritoryID   `yaml:"id"`
	Name     string             `yaml:"name"`
	Type     TerrainType        `yaml:"type"`
	Sectors  []int              `yaml:"sectors"`
	Adjacent []core.TerritoryID `yaml:"-"`
}

// IsStronghold reports whether the territory is one of the five strongholds
func (t TerritoryDef) IsStronghold() bool {
	return t.Type == TerrainStronghold
}

// ProtectedFromStorm reports whether forces here survive the storm
func (t TerritoryDef) ProtectedFromStorm() bool {
	return t.Type != TerrainSand
}

// HasSector reports whether the territory spans the given sector
func (t TerritoryDef) HasSector(sector int) bool {
	for _, s := range t.Sectors {
		if s == sector {
			return true
		}
	}
	return false
}

// SpiceCardDef is one card of the spice deck; worm cards carry no territory
type SpiceCardDef struct {
	ID        string           `yaml:"id"`
	Territory core.TerritoryID `yaml:"territory"`
	Sector    int              `yaml:"sector"`
	Amount    int              `yaml:"amount"`
	Worm      bool             `yaml:"worm"`
}

// BoardPlacement is a starting force stack
type BoardPlacement struct {
	Territory core.TerritoryID `yaml:"territory"`
	Sector    int              `yaml:"sector"`
	Regular   int              `yaml:"regular"`
	Elite     int              `yaml:"elite"`
	Advisors  int              `yaml:"advisors"`
}

// FactionSetup is a faction's starting position
type FactionSetup struct {
	SeatSector    int              `yaml:"seat_sector"`
	Spice         int              `yaml:"spice"`
	Regular       int              `yaml:"regular"`
	Elite         int              `yaml:"elite"`
	FreeRevival   int              `yaml:"free_revival"`
	StartingCards int              `yaml:"starting_cards"`
	HandSize      int              `yaml:"hand_size"`
	Board         []BoardPlacement `yaml:"board"`
}

// Constants are the numeric rule parameters
type Constants struct {
	Sectors                       int `yaml:"sectors"`
	MaxTurns                      int `yaml:"max_turns"`
	StormDialMax                  int `yaml:"storm_dial_max"`
	HandSize                      int `yaml:"hand_size"`
	CharityThreshold              int `yaml:"charity_threshold"`
	RevivalCostPerForce           int `yaml:"revival_cost_per_force"`
	MaxForcesRevivedPerTurn       int `yaml:"max_forces_revived_per_turn"`
	MaxEliteRevivedPerTurn        int `yaml:"max_elite_revived_per_turn"`
	SpicePerForce                 int `yaml:"spice_per_force"`
	SpicePerForceWithOrnithopters int `yaml:"spice_per_force_with_ornithopters"`
	ShipmentCostStronghold        int `yaml:"shipment_cost_stronghold"`
	ShipmentCostOther             int `yaml:"shipment_cost_other"`
	KwisatzHaderachThreshold      int `yaml:"kwisatz_haderach_threshold"`
	KwisatzHaderachBonus          int `yaml:"kwisatz_haderach_bonus"`
	CaptureKillReward             int `yaml:"capture_kill_reward"`
	StrongholdsToWin              int `yaml:"strongholds_to_win"`
	StrongholdsToWinAllied        int `yaml:"strongholds_to_win_allied"`
	TraitorCardsDealt             int `yaml:"traitor_cards_dealt"`
	MinBid                        int `yaml:"min_bid"`
}

type catalogFile struct {
	Constants   Constants                               `yaml:"constants"`
	Factions    map[core.Faction]FactionSetup           `yaml:"factions"`
	Leaders     []LeaderDef                             `yaml:"leaders"`
	Cards       []CardDef                               `yaml:"cards"`
	Territories []TerritoryDef                          `yaml:"territories"`
	Adjacency   map[core.TerritoryID][]core.TerritoryID `yaml:"adjacency"`
	SpiceCards  []SpiceCardDef                          `yaml:"spice_cards"`
	StormCards  []int                                   `yaml:"storm_cards"`
}

// Catalog is the indexed, read-only view of the static tables
type Catalog struct {
	Constants      Constants
	factions       map[core.Faction]FactionSetup
	leaders        map[core.LeaderID]LeaderDef
	leaderOrder    []core.LeaderID
	cards          map[core.CardID]CardDef
	cardOrder      []core.CardID
	territories    map[core.TerritoryID]TerritoryDef
	territoryOrder []core.TerritoryID
	spiceCards     []SpiceCardDef
	stormCards     []int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded data is
// malformed, which can only happen through a bad edit of catalog.yaml.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(defaultCatalogYAML)
		if err != nil {
			panic("embedded catalog is invalid: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses and indexes a catalog document
func Load(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		Constants:   f.Constants,
		factions:    f.Factions,
		leaders:     make(map[core.LeaderID]LeaderDef, len(f.Leaders)),
		cards:       make(map[core.CardID]CardDef, len(f.Cards)),
		territories: make(map[core.TerritoryID]TerritoryDef, len(f.Territories)),
		spiceCards:  f.SpiceCards,
		stormCards:  f.StormCards,
	}
	if c.factions == nil {
		c.factions = map[core.Faction]FactionSetup{}
	}

	for _, l := range f.Leaders {
		if _, dup := c.leaders[l.ID]; dup {
			return nil, fmt.Errorf("duplicate leader %q", l.ID)
		}
		c.leaders[l.ID] = l
		c.leaderOrder = append(c.leaderOrder, l.ID)
	}
	for _, card := range f.Cards {
		if _, dup := c.cards[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card %q", card.ID)
		}
		c.cards[card.ID] = card
		c.cardOrder = append(c.cardOrder, card.ID)
	}
	for _, t := range f.Territories {
		if _, dup := c.territories[t.ID]; dup {
			return nil, fmt.Errorf("duplicate territory %q", t.ID)
		}
		c.territories[t.ID] = t
		c.territoryOrder = append(c.territoryOrder, t.ID)
	}

	adj := make(map[core.TerritoryID]map[core.TerritoryID]struct{})
	link := func(a, b core.TerritoryID) {
		if adj[a] == nil {
			adj[a] = make(map[core.TerritoryID]struct{})
		}
		adj[a][b] = struct{}{}
	}
	for from, tos := range f.Adjacency {
		if _, ok := c.territories[from]; !ok {
			return nil, fmt.Errorf("adjacency: %w: %q", core.ErrUnknownTerritory, from)
		}
		for _, to := range tos {
			if _, ok := c.territories[to]; !ok {
				return nil, fmt.Errorf("adjacency: %w: %q", core.ErrUnknownTerritory, to)
			}
			link(from, to)
			link(to, from)
		}
	}
	for id, t := range c.territories {
		for n := range adj[id] {
			t.Adjacent = append(t.Adjacent, n)
		}
		sort.Slice(t.Adjacent, func(i, j int) bool { return t.Adjacent[i] < t.Adjacent[j] })
		c.territories[id] = t
	}

	for _, sc := range c.spiceCards {
		if sc.Worm {
			continue
		}
		t, ok := c.territories[sc.Territory]
		if !ok {
			return nil, fmt.Errorf("spice card %s: %w: %q", sc.ID, core.ErrUnknownTerritory, sc.Territory)
		}
		if !t.HasSector(sc.Sector) {
			return nil, fmt.Errorf("spice card %s: sector %d not in %s", sc.ID, sc.Sector, sc.Territory)
		}
	}
	for faction, setup := range c.factions {
		for _, p := range setup.Board {
			if _, ok := c.territories[p.Territory]; !ok {
				return nil, fmt.Errorf("setup %s: %w: %q", faction, core.ErrUnknownTerritory, p.Territory)
			}
		}
	}
	return c, nil
}

// Leader looks up a leader definition
func (c *Catalog) Leader(id core.LeaderID) (LeaderDef, bool) {
	l, ok := c.leaders[id]
	return l, ok
}

// LeaderStrength returns the strength of a leader, zero when unknown
func (c *Catalog) LeaderStrength(id core.LeaderID) int {
	return c.leaders[id].Strength
}

// LeadersOf returns the leader definitions of a faction in catalog order
func (c *Catalog) LeadersOf(f core.Faction) []LeaderDef {
	var out []LeaderDef
	for _, id := range c.leaderOrder {
		if l := c.leaders[id]; l.Faction == f {
			out = append(out, l)
		}
	}
	return out
}

// AllLeaderIDs returns every leader id in catalog order
func (c *Catalog) AllLeaderIDs() []core.LeaderID {
	out := make([]core.LeaderID, len(c.leaderOrder))
	copy(out, c.leaderOrder)
	return out
}

// Card looks up a treachery card definition
func (c *Catalog) Card(id core.CardID) (CardDef, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// AllCardIDs returns every treachery card id in catalog order
func (c *Catalog) AllCardIDs() []core.CardID {
	out := make([]core.CardID, len(c.cardOrder))
	copy(out, c.cardOrder)
	return out
}

// Territory looks up a territory definition
func (c *Catalog) Territory(id core.TerritoryID) (TerritoryDef, bool) {
	t, ok := c.territories[id]
	return t, ok
}

// TerritoryIDs returns every territory id in catalog order
func (c *Catalog) TerritoryIDs() []core.TerritoryID {
	out := make([]core.TerritoryID, len(c.territoryOrder))
	copy(out, c.territoryOrder)
	return out
}

// Strongholds returns the stronghold territory ids, sorted
func (c *Catalog) Strongholds() []core.TerritoryID {
	var out []core.TerritoryID
	for id, t := range c.territories {
		if t.IsStronghold() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Adjacent reports whether two territories share a border
func (c *Catalog) Adjacent(a, b core.TerritoryID) bool {
	t, ok := c.territories[a]
	if !ok {
		return false
	}
	for _, n := range t.Adjacent {
		if n == b {
			return true
		}
	}
	return false
}

// Distance returns the minimum number of territory steps from a to b,
// ignoring territories for which blocked returns true. The destination
// itself is never treated as blocked. ok is false when b is unreachable.
func (c *Catalog) Distance(a, b core.TerritoryID, blocked func(core.TerritoryID) bool) (int, bool) {
	if _, ok := c.territories[a]; !ok {
		return 0, false
	}
	if a == b {
		return 0, true
	}
	dist := map[core.TerritoryID]int{a: 0}
	queue := []core.TerritoryID{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range c.territories[cur].Adjacent {
			if _, seen := dist[n]; seen {
				continue
			}
			if n == b {
				return dist[cur] + 1, true
			}
			if blocked != nil && blocked(n) {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}
	return 0, false
}

// FactionSetup returns the starting position of a faction
func (c *Catalog) FactionSetup(f core.Faction) (FactionSetup, bool) {
	s, ok := c.factions[f]
	return s, ok
}

// SpiceCards returns a copy of the spice deck definition
func (c *Catalog) SpiceCards() []SpiceCardDef {
	out := make([]SpiceCardDef, len(c.spiceCards))
	copy(out, c.spiceCards)
	return out
}

// SpiceCard looks up a spice card by id
func (c *Catalog) SpiceCard(id string) (SpiceCardDef, bool) {
	for _, sc := range c.spiceCards {
		if sc.ID == id {
			return sc, true
		}
	}
	return SpiceCardDef{}, false
}

// StormCards returns a copy of the storm deck definition
func (c *Catalog) StormCards() []int {
	out := make([]int, len(c.stormCards))
	copy(out, c.stormCards)
	return out
}
