package game

import (
	"sort"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// LeaderLocation is where a leader disc currently sits
type LeaderLocation string

const (
	LeaderInPool        LeaderLocation = "pool"
	LeaderOnBoard       LeaderLocation = "on_board"
	LeaderTanksFaceUp   LeaderLocation = "tanks_face_up"
	LeaderTanksFaceDown LeaderLocation = "tanks_face_down"
	LeaderCaptorPool    LeaderLocation = "captor_pool"
)

// Leader is the mutable state of one leader disc. It always stays in the
// roster of its original faction; CapturedBy names the faction currently
// holding it.
type Leader struct {
	ID              core.LeaderID    `json:"id"`
	OriginalFaction core.Faction     `json:"original_faction"`
	CapturedBy      core.Faction     `json:"captured_by,omitempty"`
	Location        LeaderLocation   `json:"location"`
	UsedThisTurn    bool             `json:"used_this_turn"`
	UsedInTerritory core.TerritoryID `json:"used_in_territory,omitempty"`
	HasBeenKilled   bool             `json:"has_been_killed"`
}

// Alive reports whether the leader is out of the tanks
func (l Leader) Alive() bool {
	return l.Location != LeaderTanksFaceUp && l.Location != LeaderTanksFaceDown
}

// Holder returns the faction that currently controls the leader
func (l Leader) Holder() core.Faction {
	if l.CapturedBy != core.NoFaction {
		return l.CapturedBy
	}
	return l.OriginalFaction
}

// ForceCount is a regular/elite pair off the board
type ForceCount struct {
	Regular int `json:"regular"`
	Elite   int `json:"elite"`
}

// Total returns regular plus elite units
func (fc ForceCount) Total() int {
	return fc.Regular + fc.Elite
}

// ForceStack is a faction's presence in one sector of one territory.
// Advisors are Bene Gesserit units that never fight.
type ForceStack struct {
	Territory core.TerritoryID `json:"territory"`
	Sector    int              `json:"sector"`
	Regular   int              `json:"regular"`
	Elite     int              `json:"elite"`
	Advisors  int              `json:"advisors,omitempty"`
}

// Fighters returns the units that take part in battles and occupation
func (fs ForceStack) Fighters() int {
	return fs.Regular + fs.Elite
}

// Total returns every unit in the stack
func (fs ForceStack) Total() int {
	return fs.Regular + fs.Elite + fs.Advisors
}

// SpiceStack is spice lying on the board
type SpiceStack struct {
	Territory core.TerritoryID `json:"territory"`
	Sector    int              `json:"sector"`
	Amount    int              `json:"amount"`
}

// FactionState is everything one faction owns
type FactionState struct {
	Faction            core.Faction    `json:"faction"`
	Spice              int             `json:"spice"`
	Bribes             int             `json:"bribes"`
	Reserves           ForceCount      `json:"reserves"`
	Tanks              ForceCount      `json:"tanks"`
	Forces             []ForceStack    `json:"forces"`
	Hand               []core.CardID   `json:"hand"`
	HandLimit          int             `json:"hand_limit"`
	Leaders            []Leader        `json:"leaders"`
	Traitors           []core.LeaderID `json:"traitors"`
	Ally               core.Faction    `json:"ally,omitempty"`
	SeatSector         int             `json:"seat_sector"`
	FreeRevival        int             `json:"free_revival"`
	TotalForces        int             `json:"total_forces"`
	ForcesLostInBattle int             `json:"forces_lost_in_battle"`
}

// OnBoard returns the number of units the faction has on the board
func (fs *FactionState) OnBoard() int {
	n := 0
	for _, st := range fs.Forces {
		n += st.Total()
	}
	return n
}

// StacksIn returns the faction's stacks in a territory
func (fs *FactionState) StacksIn(t core.TerritoryID) []ForceStack {
	var out []ForceStack
	for _, st := range fs.Forces {
		if st.Territory == t {
			out = append(out, st)
		}
	}
	return out
}

// FightersIn returns the faction's fighting units in a territory
func (fs *FactionState) FightersIn(t core.TerritoryID) ForceCount {
	var fc ForceCount
	for _, st := range fs.Forces {
		if st.Territory == t {
			fc.Regular += st.Regular
			fc.Elite += st.Elite
		}
	}
	return fc
}

// Stack returns the stack at an exact location
func (fs *FactionState) Stack(t core.TerritoryID, sector int) (ForceStack, bool) {
	for _, st := range fs.Forces {
		if st.Territory == t && st.Sector == sector {
			return st, true
		}
	}
	return ForceStack{}, false
}

// HasCard reports whether the card is in hand
func (fs *FactionState) HasCard(id core.CardID) bool {
	for _, c := range fs.Hand {
		if c == id {
			return true
		}
	}
	return false
}

// HandFull reports whether the hand is at its limit
func (fs *FactionState) HandFull() bool {
	return len(fs.Hand) >= fs.HandLimit
}

// Leader returns a leader from the faction's own roster
func (fs *FactionState) Leader(id core.LeaderID) (Leader, bool) {
	for _, l := range fs.Leaders {
		if l.ID == id {
			return l, true
		}
	}
	return Leader{}, false
}

// HasTraitor reports whether the faction holds a traitor card for the leader
func (fs *FactionState) HasTraitor(id core.LeaderID) bool {
	for _, t := range fs.Traitors {
		if t == id {
			return true
		}
	}
	return false
}

// Prediction is the Bene Gesserit secret prediction
type Prediction struct {
	Faction core.Faction `json:"faction"`
	Turn    int          `json:"turn"`
}

// Variant holds the rule options chosen for a game
type Variant struct {
	AdvancedCombat bool `json:"advanced_combat"`
	MaxTurns       int  `json:"max_turns"`
}

// Decks holds every draw pile and discard pile. Index 0 is the top.
type Decks struct {
	Treachery        []core.CardID   `json:"treachery"`
	TreacheryDiscard []core.CardID   `json:"treachery_discard"`
	Spice            []string        `json:"spice"`
	SpiceDiscardA    []string        `json:"spice_discard_a"`
	SpiceDiscardB    []string        `json:"spice_discard_b"`
	Storm            []int           `json:"storm"`
	Traitor          []core.LeaderID `json:"traitor"`
}

// SpiceLedger meters spice entering and leaving play through the bank
type SpiceLedger struct {
	Initial int `json:"initial"`
	Minted  int `json:"minted"`
	Burned  int `json:"burned"`
}

// LogEntry is one line of the action log
type LogEntry struct {
	Turn    int              `json:"turn"`
	Phase   states.GamePhase `json:"phase"`
	Faction core.Faction     `json:"faction,omitempty"`
	Action  string           `json:"action"`
	Detail  string           `json:"detail,omitempty"`
}

// GameState is the complete snapshot of a game. Functions in this package
// never modify a state passed to them; they return a modified clone.
type GameState struct {
	GameID                string                         `json:"game_id"`
	Turn                  int                            `json:"turn"`
	Phase                 states.GamePhase               `json:"phase"`
	StormSector           int                            `json:"storm_sector"`
	StormOrder            []core.Faction                 `json:"storm_order"`
	Factions              map[core.Faction]*FactionState `json:"factions"`
	Spice                 []SpiceStack                   `json:"spice"`
	Decks                 Decks                          `json:"decks"`
	Ledger                SpiceLedger                    `json:"ledger"`
	Winners               []core.Faction                 `json:"winners,omitempty"`
	ActionLog             []LogEntry                     `json:"action_log"`
	Variant               Variant                        `json:"variant"`
	Prediction            Prediction                     `json:"prediction"`
	CurrentBattle         *CurrentBattle                 `json:"current_battle,omitempty"`
	CharityClaimed        map[core.Faction]int           `json:"charity_claimed"`
	KwisatzHaderachActive bool                           `json:"kwisatz_haderach_active"`
	Catalog               *data.Catalog                  `json:"-"`
}

// Faction returns a faction's state
func (s *GameState) Faction(f core.Faction) (*FactionState, bool) {
	fs, ok := s.Factions[f]
	return fs, ok
}

// InGame reports whether the faction is playing
func (s *GameState) InGame(f core.Faction) bool {
	_, ok := s.Factions[f]
	return ok
}

// FactionList returns the playing factions in canonical order
func (s *GameState) FactionList() []core.Faction {
	var out []core.Faction
	for _, f := range core.AllFactions() {
		if s.InGame(f) {
			out = append(out, f)
		}
	}
	return out
}

// IsOver reports whether winners have been declared
func (s *GameState) IsOver() bool {
	return len(s.Winners) > 0 || s.Phase == states.PhaseGameOver
}

// AllyOf returns the ally of a faction, if any
func (s *GameState) AllyOf(f core.Faction) core.Faction {
	if fs, ok := s.Factions[f]; ok {
		return fs.Ally
	}
	return core.NoFaction
}

// Alliances returns every alliance as an ordered pair
func (s *GameState) Alliances() [][2]core.Faction {
	var out [][2]core.Faction
	for _, f := range s.FactionList() {
		ally := s.Factions[f].Ally
		if ally != core.NoFaction && f < ally {
			out = append(out, [2]core.Faction{f, ally})
		}
	}
	return out
}

// SpiceAt returns the spice in one sector of a territory
func (s *GameState) SpiceAt(t core.TerritoryID, sector int) int {
	for _, sp := range s.Spice {
		if sp.Territory == t && sp.Sector == sector {
			return sp.Amount
		}
	}
	return 0
}

// SpiceIn returns the spice anywhere in a territory
func (s *GameState) SpiceIn(t core.TerritoryID) int {
	n := 0
	for _, sp := range s.Spice {
		if sp.Territory == t {
			n += sp.Amount
		}
	}
	return n
}

// Occupants returns the factions with fighters in a territory, in storm order
func (s *GameState) Occupants(t core.TerritoryID) []core.Faction {
	var out []core.Faction
	for _, f := range s.orderedFactions() {
		if s.Factions[f].FightersIn(t).Total() > 0 {
			out = append(out, f)
		}
	}
	return out
}

// LeaderByID finds a leader across every roster
func (s *GameState) LeaderByID(id core.LeaderID) (Leader, bool) {
	for _, fs := range s.Factions {
		if l, ok := fs.Leader(id); ok {
			return l, true
		}
	}
	return Leader{}, false
}

// LeadersHeldBy returns the living leaders a faction controls: its own
// leaders that are not captured plus leaders it has captured
func (s *GameState) LeadersHeldBy(f core.Faction) []Leader {
	var out []Leader
	for _, owner := range s.FactionList() {
		for _, l := range s.Factions[owner].Leaders {
			if l.Alive() && l.Holder() == f {
				out = append(out, l)
			}
		}
	}
	return out
}

// CharityClaimedThisTurn reports whether the faction already took charity
func (s *GameState) CharityClaimedThisTurn(f core.Faction) bool {
	turn, ok := s.CharityClaimed[f]
	return ok && turn == s.Turn
}

// ControlledStrongholds returns the strongholds where the faction is the
// only faction with fighters present
func (s *GameState) ControlledStrongholds(f core.Faction) []core.TerritoryID {
	var out []core.TerritoryID
	for _, t := range s.Catalog.Strongholds() {
		occ := s.Occupants(t)
		if len(occ) == 1 && occ[0] == f {
			out = append(out, t)
		}
	}
	return out
}

// orderedFactions returns storm order when known, otherwise canonical order
func (s *GameState) orderedFactions() []core.Faction {
	if len(s.StormOrder) == len(s.Factions) {
		return s.StormOrder
	}
	return s.FactionList()
}

// Clone returns a deep copy of the state
func (s *GameState) Clone() *GameState {
	c := *s
	c.StormOrder = append([]core.Faction(nil), s.StormOrder...)
	c.Factions = make(map[core.Faction]*FactionState, len(s.Factions))
	for f, fs := range s.Factions {
		c.Factions[f] = fs.clone()
	}
	c.Spice = append([]SpiceStack(nil), s.Spice...)
	c.Decks = Decks{
		Treachery:        append([]core.CardID(nil), s.Decks.Treachery...),
		TreacheryDiscard: append([]core.CardID(nil), s.Decks.TreacheryDiscard...),
		Spice:            append([]string(nil), s.Decks.Spice...),
		SpiceDiscardA:    append([]string(nil), s.Decks.SpiceDiscardA...),
		SpiceDiscardB:    append([]string(nil), s.Decks.SpiceDiscardB...),
		Storm:            append([]int(nil), s.Decks.Storm...),
		Traitor:          append([]core.LeaderID(nil), s.Decks.Traitor...),
	}
	c.Winners = append([]core.Faction(nil), s.Winners...)
	c.ActionLog = append([]LogEntry(nil), s.ActionLog...)
	if s.CurrentBattle != nil {
		c.CurrentBattle = s.CurrentBattle.Clone()
	}
	c.CharityClaimed = make(map[core.Faction]int, len(s.CharityClaimed))
	for f, t := range s.CharityClaimed {
		c.CharityClaimed[f] = t
	}
	return &c
}

func (fs *FactionState) clone() *FactionState {
	c := *fs
	c.Forces = append([]ForceStack(nil), fs.Forces...)
	c.Hand = append([]core.CardID(nil), fs.Hand...)
	c.Leaders = append([]Leader(nil), fs.Leaders...)
	c.Traitors = append([]core.LeaderID(nil), fs.Traitors...)
	return &c
}

// sortStacks keeps force stacks in a stable order
func sortStacks(stacks []ForceStack) {
	sort.Slice(stacks, func(i, j int) bool {
		if stacks[i].Territory != stacks[j].Territory {
			return stacks[i].Territory < stacks[j].Territory
		}
		return stacks[i].Sector < stacks[j].Sector
	})
}
