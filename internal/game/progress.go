package game

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// SetPhase records the phase being played
func SetPhase(s *GameState, p states.GamePhase) *GameState {
	next := s.Clone()
	next.Phase = p
	return next
}

// AdvanceTurn starts the next turn and frees every leader for battle
func AdvanceTurn(s *GameState) *GameState {
	next := ResetLeaderUsage(s)
	next.Turn++
	return next
}

// DeclareWinners ends the game
func DeclareWinners(s *GameState, winners []core.Faction) *GameState {
	next := s.Clone()
	next.Winners = append([]core.Faction(nil), winners...)
	return next
}

// WithBattle replaces the battle being fought; nil clears it
func WithBattle(s *GameState, b *CurrentBattle) *GameState {
	next := s.Clone()
	next.CurrentBattle = nil
	if b != nil {
		next.CurrentBattle = b.Clone()
	}
	return next
}

// ActivateKwisatzHaderach unlocks the Kwisatz Haderach for the rest of the game
func ActivateKwisatzHaderach(s *GameState) *GameState {
	next := s.Clone()
	next.KwisatzHaderachActive = true
	return next
}

// SetPrediction stores the Bene Gesserit prediction
func SetPrediction(s *GameState, p Prediction) *GameState {
	next := s.Clone()
	next.Prediction = p
	return next
}

// DealTraitors deals n traitor cards to every faction from the top of the
// traitor deck, in canonical faction order
func DealTraitors(s *GameState, n int) (*GameState, map[core.Faction][]core.LeaderID, error) {
	next := s.Clone()
	dealt := make(map[core.Faction][]core.LeaderID)
	for _, f := range next.FactionList() {
		if len(next.Decks.Traitor) < n {
			return nil, nil, core.Invariantf("traitor deck holds %d cards, %s needs %d", len(next.Decks.Traitor), f, n)
		}
		dealt[f] = append([]core.LeaderID(nil), next.Decks.Traitor[:n]...)
		next.Decks.Traitor = next.Decks.Traitor[n:]
	}
	return next, dealt, nil
}

// SetTraitors records the traitor cards a faction keeps. Cards not kept
// leave play.
func SetTraitors(s *GameState, f core.Faction, ids []core.LeaderID) (*GameState, error) {
	return mutate(s, func(n *GameState) error {
		fs, err := factionOf(n, f)
		if err != nil {
			return err
		}
		fs.Traitors = append([]core.LeaderID(nil), ids...)
		return nil
	})
}

// DrawSpiceCard takes the top spice card, rebuilding the deck from both
// discard piles when it is empty
func DrawSpiceCard(s *GameState, sh Shuffler) (*GameState, string, error) {
	next := s
	if len(s.Decks.Spice) == 0 {
		next = ShuffleSpiceDiscards(s, sh)
	} else {
		next = s.Clone()
	}
	if len(next.Decks.Spice) == 0 {
		return nil, "", core.ErrEmptyDeck
	}
	card := next.Decks.Spice[0]
	next.Decks.Spice = next.Decks.Spice[1:]
	return next, card, nil
}

// DiscardSpiceCard places a spice card on discard pile A or B
func DiscardSpiceCard(s *GameState, pileB bool, card string) *GameState {
	next := s.Clone()
	if pileB {
		next.Decks.SpiceDiscardB = append(next.Decks.SpiceDiscardB, card)
	} else {
		next.Decks.SpiceDiscardA = append(next.Decks.SpiceDiscardA, card)
	}
	return next
}

// TopSpiceDiscard returns the last card placed on a spice discard pile
func (s *GameState) TopSpiceDiscard(pileB bool) (string, bool) {
	pile := s.Decks.SpiceDiscardA
	if pileB {
		pile = s.Decks.SpiceDiscardB
	}
	if len(pile) == 0 {
		return "", false
	}
	return pile[len(pile)-1], true
}
