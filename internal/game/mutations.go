package game

import (
	"fmt"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// mutate applies fn to a clone of s and returns the clone
func mutate(s *GameState, fn func(*GameState) error) (*GameState, error) {
	next := s.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	return next, nil
}

func factionOf(s *GameState, f core.Faction) (*FactionState, error) {
	fs, ok := s.Factions[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotInGame, f)
	}
	return fs, nil
}

// AppendLog records an action in the log
func AppendLog(s *GameState, f core.Faction, action, detail string) *GameState {
	next := s.Clone()
	next.ActionLog = append(next.ActionLog, LogEntry{
		Turn:    s.Turn,
		Phase:   s.Phase,
		Faction: f,
		Action:  action,
		Detail:  detail,
	})
	return next
}

// TransferSpice moves spice between factions. NoFaction stands for the
// bank on either side, and the ledger meters those flows.
func TransferSpice(s *GameState, from, to core.Faction, amount int) (*GameState, error) {
	if amount < 0 {
		return nil, core.Invariantf("negative spice transfer %d", amount)
	}
	return mutate(s, func(n *GameState) error {
		if from == core.NoFaction {
			n.Ledger.Minted += amount
		} else {
			fs, err := factionOf(n, from)
			if err != nil {
				return err
			}
			if fs.Spice < amount {
				return core.Invariantf("%s pays %d spice but holds %d", from, amount, fs.Spice)
			}
			fs.Spice -= amount
		}
		if to == core.NoFaction {
			n.Ledger.Burned += amount
			return nil
		}
		fs, err := factionOf(n, to)
		if err != nil {
			return err
		}
		fs.Spice += amount
		return nil
	})
}

// AddBribe moves spice from one faction into another's pending bribes
func AddBribe(s *GameState, from, to core.Faction, amount int) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		payer, err := factionOf(n, from)
		if err != nil {
			return err
		}
		payee, err := factionOf(n, to)
		if err != nil {
			return err
		}
		if amount < 0 || payer.Spice < amount {
			return core.Invariantf("%s cannot bribe %d spice", from, amount)
		}
		payer.Spice -= amount
		payee.Bribes += amount
		return nil
	})
}

// PayBribes moves every pending bribe into its holder's spice
func PayBribes(s *GameState) *GameState {
	next := s.Clone()
	for _, fs := range next.Factions {
		fs.Spice += fs.Bribes
		fs.Bribes = 0
	}
	return next
}

// PlaceSpice adds bank spice to a sector of a territory
func PlaceSpice(s *GameState, t core.TerritoryID, sector, amount int) *GameState {
	next := s.Clone()
	next.Ledger.Minted += amount
	for i := range next.Spice {
		if next.Spice[i].Territory == t && next.Spice[i].Sector == sector {
			next.Spice[i].Amount += amount
			return next
		}
	}
	next.Spice = append(next.Spice, SpiceStack{Territory: t, Sector: sector, Amount: amount})
	return next
}

// RemoveSpiceIf returns to the bank all board spice matching pred and
// reports the amount removed
func RemoveSpiceIf(s *GameState, pred func(SpiceStack) bool) (*GameState, int) {
	next := s.Clone()
	removed := 0
	kept := next.Spice[:0]
	for _, sp := range next.Spice {
		if pred(sp) {
			removed += sp.Amount
			continue
		}
		kept = append(kept, sp)
	}
	next.Spice = kept
	next.Ledger.Burned += removed
	return next, removed
}

// RemoveTerritorySpice returns every spice token in a territory to the bank
func RemoveTerritorySpice(s *GameState, t core.TerritoryID) (*GameState, int) {
	return RemoveSpiceIf(s, func(sp SpiceStack) bool { return sp.Territory == t })
}

// CollectSpice moves up to amount spice from a sector to a faction and
// reports how much was taken
func CollectSpice(s *GameState, f core.Faction, t core.TerritoryID, sector, amount int) (*GameState, int, error) {
	taken := 0
	next, err := mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		kept := n.Spice[:0]
		for _, sp := range n.Spice {
			if sp.Territory == t && sp.Sector == sector && taken == 0 {
				taken = min(amount, sp.Amount)
				sp.Amount -= taken
			}
			if sp.Amount > 0 {
				kept = append(kept, sp)
			}
		}
		n.Spice = kept
		fs.Spice += taken
		return nil
	})
	return next, taken, err
}

// addToStack adds units to the stack at a location, creating it if needed
func addToStack(fs *FactionState, t core.TerritoryID, sector, regular, elite, advisors int) {
	for i := range fs.Forces {
		st := &fs.Forces[i]
		if st.Territory == t && st.Sector == sector {
			st.Regular += regular
			st.Elite += elite
			st.Advisors += advisors
			return
		}
	}
	fs.Forces = append(fs.Forces, ForceStack{
		Territory: t, Sector: sector, Regular: regular, Elite: elite, Advisors: advisors,
	})
	sortStacks(fs.Forces)
}

// takeFromStack removes units from a stack, dropping it once empty
func takeFromStack(fs *FactionState, t core.TerritoryID, sector, regular, elite, advisors int) error {
	for i := range fs.Forces {
		st := &fs.Forces[i]
		if st.Territory != t || st.Sector != sector {
			continue
		}
		if st.Regular < regular || st.Elite < elite || st.Advisors < advisors {
			return core.Invariantf("%s stack in %s/%d has %d+%d+%d, cannot remove %d+%d+%d",
				fs.Faction, t, sector, st.Regular, st.Elite, st.Advisors, regular, elite, advisors)
		}
		st.Regular -= regular
		st.Elite -= elite
		st.Advisors -= advisors
		if st.Total() == 0 {
			fs.Forces = append(fs.Forces[:i], fs.Forces[i+1:]...)
		}
		return nil
	}
	return core.Invariantf("%s has no stack in %s/%d", fs.Faction, t, sector)
}

// ShipForces moves units from reserves onto the board
func ShipForces(s *GameState, f core.Faction, t core.TerritoryID, sector, regular, elite int) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		if regular < 0 || elite < 0 || fs.Reserves.Regular < regular || fs.Reserves.Elite < elite {
			return core.Invariantf("%s ships %d+%d from reserves %d+%d", f, regular, elite, fs.Reserves.Regular, fs.Reserves.Elite)
		}
		fs.Reserves.Regular -= regular
		fs.Reserves.Elite -= elite
		addToStack(fs, t, sector, regular, elite, 0)
		return nil
	})
}

// ShipAdvisors moves regular reserves onto the board as advisors
func ShipAdvisors(s *GameState, f core.Faction, t core.TerritoryID, sector, count int) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		if count < 0 || fs.Reserves.Regular < count {
			return core.Invariantf("%s sends %d advisors from %d reserves", f, count, fs.Reserves.Regular)
		}
		fs.Reserves.Regular -= count
		addToStack(fs, t, sector, 0, 0, count)
		return nil
	})
}

// MoveForces moves units, advisors included, between board locations
func MoveForces(s *GameState, f core.Faction, from core.TerritoryID, fromSector int, to core.TerritoryID, toSector int, regular, elite, advisors int) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		if err := takeFromStack(fs, from, fromSector, regular, elite, advisors); err != nil {
			return err
		}
		addToStack(fs, to, toSector, regular, elite, advisors)
		return nil
	})
}

// ForcesToTanks sends units from one stack to the tanks. Advisors go to
// the tanks as regular units.
func ForcesToTanks(s *GameState, f core.Faction, t core.TerritoryID, sector, regular, elite, advisors int) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		if err := takeFromStack(fs, t, sector, regular, elite, advisors); err != nil {
			return err
		}
		fs.Tanks.Regular += regular + advisors
		fs.Tanks.Elite += elite
		return nil
	})
}

// LoseForcesInTerritory sends a number of fighters from a territory to the
// tanks, taking from stacks in sector order
func LoseForcesInTerritory(s *GameState, f core.Faction, t core.TerritoryID, regular, elite int) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		have := fs.FightersIn(t)
		if have.Regular < regular || have.Elite < elite {
			return core.Invariantf("%s loses %d+%d in %s but has %d+%d", f, regular, elite, t, have.Regular, have.Elite)
		}
		for _, st := range fs.StacksIn(t) {
			r := min(regular, st.Regular)
			e := min(elite, st.Elite)
			if r+e == 0 {
				continue
			}
			if err := takeFromStack(fs, t, st.Sector, r, e, 0); err != nil {
				return err
			}
			regular -= r
			elite -= e
		}
		lost := have.Total() - fs.FightersIn(t).Total()
		fs.Tanks.Regular += have.Regular - fs.FightersIn(t).Regular
		fs.Tanks.Elite += have.Elite - fs.FightersIn(t).Elite
		fs.ForcesLostInBattle += lost
		return nil
	})
}

// AllFightersToTanks sends every fighter a faction has in a territory to
// the tanks and reports the units lost. Advisors stay where they are.
func AllFightersToTanks(s *GameState, f core.Faction, t core.TerritoryID) (*GameState, ForceCount, error) {
	var lost ForceCount
	next, err := mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		lost = fs.FightersIn(t)
		for _, st := range fs.StacksIn(t) {
			if err := takeFromStack(fs, t, st.Sector, st.Regular, st.Elite, 0); err != nil {
				return err
			}
		}
		fs.Tanks.Regular += lost.Regular
		fs.Tanks.Elite += lost.Elite
		fs.ForcesLostInBattle += lost.Total()
		return nil
	})
	return next, lost, err
}

// ReviveForces returns units from the tanks to reserves
func ReviveForces(s *GameState, f core.Faction, regular, elite int) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		if regular < 0 || elite < 0 || fs.Tanks.Regular < regular || fs.Tanks.Elite < elite {
			return core.Invariantf("%s revives %d+%d from tanks %d+%d", f, regular, elite, fs.Tanks.Regular, fs.Tanks.Elite)
		}
		fs.Tanks.Regular -= regular
		fs.Tanks.Elite -= elite
		fs.Reserves.Regular += regular
		fs.Reserves.Elite += elite
		return nil
	})
}

// updateLeader applies fn to a leader wherever it is held
func updateLeader(s *GameState, id core.LeaderID, fn func(*Leader) error) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		for _, fs := range n.Factions {
			for i := range fs.Leaders {
				if fs.Leaders[i].ID == id {
					return fn(&fs.Leaders[i])
				}
			}
		}
		return fmt.Errorf("%w: %s", core.ErrUnknownLeader, id)
	})
}

// KillLeader sends a leader face up to its original owner's tanks
func KillLeader(s *GameState, id core.LeaderID) (*GameState, error) {
	return updateLeader(s, id, func(l *Leader) error {
		l.Location = LeaderTanksFaceUp
		l.CapturedBy = core.NoFaction
		l.HasBeenKilled = true
		return nil
	})
}

// ReviveLeader returns a dead leader to its owner's pool
func ReviveLeader(s *GameState, id core.LeaderID) (*GameState, error) {
	return updateLeader(s, id, func(l *Leader) error {
		if l.Alive() {
			return core.Invariantf("leader %s is not in the tanks", id)
		}
		l.Location = LeaderInPool
		l.UsedThisTurn = false
		l.UsedInTerritory = ""
		return nil
	})
}

// CaptureLeader places an enemy leader into the captor's pool
func CaptureLeader(s *GameState, id core.LeaderID, captor core.Faction) (*GameState, error) {
	return updateLeader(s, id, func(l *Leader) error {
		if !l.Alive() {
			return core.Invariantf("cannot capture dead leader %s", id)
		}
		l.CapturedBy = captor
		l.Location = LeaderCaptorPool
		return nil
	})
}

// ReturnLeader gives a captured leader back to its original owner
func ReturnLeader(s *GameState, id core.LeaderID) (*GameState, error) {
	return updateLeader(s, id, func(l *Leader) error {
		l.CapturedBy = core.NoFaction
		if l.Alive() {
			l.Location = LeaderInPool
		}
		return nil
	})
}

// UseLeader marks a leader as committed to a battle in a territory
func UseLeader(s *GameState, id core.LeaderID, t core.TerritoryID) (*GameState, error) {
	return updateLeader(s, id, func(l *Leader) error {
		l.UsedThisTurn = true
		l.UsedInTerritory = t
		if l.Alive() {
			l.Location = LeaderOnBoard
		}
		return nil
	})
}

// ResetLeaderUsage returns leaders on the board to their pools
func ResetLeaderUsage(s *GameState) *GameState {
	next := s.Clone()
	for _, fs := range next.Factions {
		for i := range fs.Leaders {
			l := &fs.Leaders[i]
			l.UsedThisTurn = false
			l.UsedInTerritory = ""
			if l.Location == LeaderOnBoard {
				l.Location = LeaderInPool
				if l.CapturedBy != core.NoFaction {
					l.Location = LeaderCaptorPool
				}
			}
		}
	}
	return next
}

// GiveCard adds a card to a faction's hand. Exceeding the hand limit is an
// invariant violation; callers check HandFull first.
func GiveCard(s *GameState, f core.Faction, card core.CardID) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		if fs.HandFull() {
			return core.Invariantf("%s hand exceeds %d cards", f, fs.HandLimit)
		}
		fs.Hand = append(fs.Hand, card)
		return nil
	})
}

// DiscardCard moves a card from a hand to the treachery discard pile
func DiscardCard(s *GameState, f core.Faction, card core.CardID) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		for i, c := range fs.Hand {
			if c == card {
				fs.Hand = append(fs.Hand[:i], fs.Hand[i+1:]...)
				n.Decks.TreacheryDiscard = append(n.Decks.TreacheryDiscard, card)
				return nil
			}
		}
		return core.Invariantf("%s discards %s not in hand", f, card)
	})
}

// DrawTreachery takes the top treachery card, reshuffling the discard pile
// into the deck when the deck is empty
func DrawTreachery(s *GameState, sh Shuffler) (*GameState, core.CardID, error) {
	next := s.Clone()
	if len(next.Decks.Treachery) == 0 {
		next.Decks.Treachery = next.Decks.TreacheryDiscard
		next.Decks.TreacheryDiscard = nil
		sh.Shuffle(len(next.Decks.Treachery), func(i, j int) {
			next.Decks.Treachery[i], next.Decks.Treachery[j] = next.Decks.Treachery[j], next.Decks.Treachery[i]
		})
	}
	if len(next.Decks.Treachery) == 0 {
		return nil, "", core.ErrEmptyDeck
	}
	card := next.Decks.Treachery[0]
	next.Decks.Treachery = next.Decks.Treachery[1:]
	return next, card, nil
}

// ReturnCardsToDeck puts cards back on top of the treachery deck in order
func ReturnCardsToDeck(s *GameState, cards []core.CardID) *GameState {
	next := s.Clone()
	next.Decks.Treachery = append(append([]core.CardID(nil), cards...), next.Decks.Treachery...)
	return next
}

// FormAlliance links two unallied factions
func FormAlliance(s *GameState, a, b core.Faction) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fa, err := factionOf(n, a)
		if err != nil {
			return err
		}
		fb, err := factionOf(n, b)
		if err != nil {
			return err
		}
		if a == b || fa.Ally != core.NoFaction || fb.Ally != core.NoFaction {
			return core.Invariantf("cannot ally %s with %s", a, b)
		}
		fa.Ally = b
		fb.Ally = a
		return nil
	})
}

// BreakAlliance dissolves the faction's alliance, if any
func BreakAlliance(s *GameState, f core.Faction) *GameState {
	next := s.Clone()
	fs, ok := next.Factions[f]
	if !ok || fs.Ally == core.NoFaction {
		return next
	}
	if other, ok := next.Factions[fs.Ally]; ok {
		other.Ally = core.NoFaction
	}
	fs.Ally = core.NoFaction
	return next
}

// RecordCharity marks a charity claim for the current turn
func RecordCharity(s *GameState, f core.Faction) *GameState {
	next := s.Clone()
	next.CharityClaimed[f] = s.Turn
	return next
}
