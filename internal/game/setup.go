package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// Options configure a new game
type Options struct {
	GameID   string
	Factions []core.Faction
	Variant  Variant
}

// NewGame builds the starting state: faction positions from the catalog,
// shuffled decks and storm order. Traitors and starting hands are dealt by
// the setup phase.
func NewGame(cat *data.Catalog, opts Options, sh Shuffler) (*GameState, error) {
	if cat == nil {
		cat = data.Default()
	}
	if len(opts.Factions) < 2 {
		return nil, fmt.Errorf("a game needs at least 2 factions, got %d", len(opts.Factions))
	}
	gameID := opts.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}
	variant := opts.Variant
	if variant.MaxTurns <= 0 {
		variant.MaxTurns = cat.Constants.MaxTurns
	}

	s := &GameState{
		GameID:         gameID,
		Phase:          states.PhaseSetup,
		Factions:       make(map[core.Faction]*FactionState, len(opts.Factions)),
		Variant:        variant,
		CharityClaimed: make(map[core.Faction]int),
		Catalog:        cat,
	}

	for _, f := range opts.Factions {
		if _, dup := s.Factions[f]; dup {
			return nil, fmt.Errorf("faction %s listed twice", f)
		}
		fs, err := newFactionState(cat, f)
		if err != nil {
			return nil, err
		}
		s.Factions[f] = fs
		s.Ledger.Initial += fs.Spice
	}

	s.Decks = newDecks(cat, s.FactionList(), sh)
	s.StormOrder = ComputeStormOrder(s)
	return s, nil
}

func newFactionState(cat *data.Catalog, f core.Faction) (*FactionState, error) {
	setup, ok := cat.FactionSetup(f)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownFaction, f)
	}
	fs := &FactionState{
		Faction:     f,
		Spice:       setup.Spice,
		Reserves:    ForceCount{Regular: setup.Regular, Elite: setup.Elite},
		HandLimit:   setup.HandSize,
		SeatSector:  setup.SeatSector,
		FreeRevival: setup.FreeRevival,
		TotalForces: setup.Regular + setup.Elite,
	}
	if fs.HandLimit == 0 {
		fs.HandLimit = cat.Constants.HandSize
	}
	for _, p := range setup.Board {
		if fs.Reserves.Regular < p.Regular+p.Advisors || fs.Reserves.Elite < p.Elite {
			return nil, fmt.Errorf("%s board placement in %s exceeds its forces", f, p.Territory)
		}
		fs.Reserves.Regular -= p.Regular + p.Advisors
		fs.Reserves.Elite -= p.Elite
		addToStack(fs, p.Territory, p.Sector, p.Regular, p.Elite, p.Advisors)
	}
	for _, def := range cat.LeadersOf(f) {
		fs.Leaders = append(fs.Leaders, Leader{
			ID:              def.ID,
			OriginalFaction: f,
			Location:        LeaderInPool,
		})
	}
	return fs, nil
}

func newDecks(cat *data.Catalog, factions []core.Faction, sh Shuffler) Decks {
	d := Decks{
		Treachery: cat.AllCardIDs(),
		Storm:     cat.StormCards(),
	}
	for _, sc := range cat.SpiceCards() {
		d.Spice = append(d.Spice, sc.ID)
	}
	for _, f := range factions {
		for _, l := range cat.LeadersOf(f) {
			d.Traitor = append(d.Traitor, l.ID)
		}
	}
	shuffleSlice(sh, d.Treachery)
	shuffleSlice(sh, d.Storm)
	shuffleSlice(sh, d.Spice)
	shuffleSlice(sh, d.Traitor)
	return d
}

func shuffleSlice[T any](sh Shuffler, items []T) {
	sh.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// ShuffleSpiceDiscards rebuilds the spice deck from both discard piles when
// it runs out
func ShuffleSpiceDiscards(s *GameState, sh Shuffler) *GameState {
	next := s.Clone()
	next.Decks.Spice = append(append(next.Decks.Spice, next.Decks.SpiceDiscardA...), next.Decks.SpiceDiscardB...)
	next.Decks.SpiceDiscardA = nil
	next.Decks.SpiceDiscardB = nil
	shuffleSlice(sh, next.Decks.Spice)
	return next
}

// DrawStormCard takes the top storm card, reshuffling the full storm deck
// when it is empty
func DrawStormCard(s *GameState, sh Shuffler) (*GameState, int) {
	next := s.Clone()
	if len(next.Decks.Storm) == 0 {
		next.Decks.Storm = s.Catalog.StormCards()
		shuffleSlice(sh, next.Decks.Storm)
	}
	card := next.Decks.Storm[0]
	next.Decks.Storm = next.Decks.Storm[1:]
	return next, card
}
