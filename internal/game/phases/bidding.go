package phases

import (
	"errors"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// auction is the running state of the card being sold
type auction struct {
	started      bool
	participants map[core.Faction]bool
	seat         int
	bid          int
	high         core.Faction
	passes       int
}

// BiddingHandler auctions one treachery card per eligible bidder. Bidding
// is sequential around the table starting one seat later for every card.
type BiddingHandler struct {
	shuffler game.Shuffler
	cards    []core.CardID
	idx      int
	finished bool
	auction  auction
	current  *agent.Request
}

// NewBiddingHandler creates the bidding phase handler
func NewBiddingHandler(sh game.Shuffler) *BiddingHandler {
	return &BiddingHandler{shuffler: sh}
}

// Phase implements Handler
func (h *BiddingHandler) Phase() states.GamePhase { return states.PhaseBidding }

// Initialize implements Handler
func (h *BiddingHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.cards = nil
	h.idx = 0
	h.finished = false
	h.auction = auction{}
	h.current = nil

	st := newStep(s)
	bidders := 0
	for _, f := range s.FactionList() {
		if !s.Factions[f].HandFull() {
			bidders++
		}
	}
	for i := 0; i < bidders; i++ {
		next, card, err := game.DrawTreachery(st.state, h.shuffler)
		if errors.Is(err, core.ErrEmptyDeck) {
			break
		}
		if err != nil {
			return StepResult{}, err
		}
		st.state = next
		h.cards = append(h.cards, card)
	}
	st.event(events.EventCardsDealt, map[string]interface{}{
		"count": len(h.cards),
	}, "%d treachery cards go up for auction", len(h.cards))
	return h.advance(st)
}

// ProcessStep implements Handler
func (h *BiddingHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	if h.current == nil {
		return h.advance(st)
	}
	f := h.current.Faction
	resp, ok := responseFrom(responses, f)
	if !ok {
		return st.wait(false, *h.current), nil
	}
	h.current = nil

	a := &h.auction
	placed := false
	if !resp.Passed && resp.ActionType == agent.ActionBid {
		amount := resp.IntOr(agent.KeyAmount, 0)
		res := rules.ValidateBid(st.state, f, amount, a.bid)
		if res.Valid {
			a.bid = amount
			a.high = f
			a.passes = 0
			placed = true
			st.event(events.EventBidPlaced, map[string]interface{}{
				"faction": string(f),
				"amount":  amount,
				"card":    h.idx + 1,
			}, "%s bids %d", f, amount)
		} else {
			st.reject(f, string(agent.ActionBid), res)
		}
	}
	if !placed {
		h.pass(st, f, false)
	}
	a.seat++
	return h.advance(st)
}

func (h *BiddingHandler) pass(st *step, f core.Faction, auto bool) {
	h.auction.passes++
	st.event(events.EventBidPassed, map[string]interface{}{
		"faction": string(f),
		"auto":    auto,
		"card":    h.idx + 1,
	}, "%s passes", f)
}

// advance runs the auction forward until a decision is needed or bidding
// is over
func (h *BiddingHandler) advance(st *step) (StepResult, error) {
	order := st.state.StormOrder
	for !h.finished {
		if h.idx >= len(h.cards) {
			h.finished = true
			break
		}
		a := &h.auction
		if !a.started {
			if !h.startAuction(st) {
				h.finished = true
				break
			}
			continue
		}

		n := len(a.participants)
		if a.high != core.NoFaction && a.passes >= n-1 {
			if err := h.sell(st); err != nil {
				return StepResult{}, err
			}
			continue
		}
		if a.high == core.NoFaction && a.passes >= n {
			st.event(events.EventBoughtIn, map[string]interface{}{
				"card":     h.idx + 1,
				"returned": len(h.cards) - h.idx,
			}, "every faction passes; %d cards return to the deck", len(h.cards)-h.idx)
			h.finished = true
			break
		}

		f := order[a.seat%len(order)]
		if !a.participants[f] || f == a.high {
			a.seat++
			continue
		}
		if !rules.CanBid(st.state, f, a.bid) {
			h.pass(st, f, true)
			a.seat++
			continue
		}
		req := h.request(st.state, f)
		h.current = &req
		return st.wait(false, req), nil
	}
	st.event(events.EventBiddingComplete, map[string]interface{}{
		"sold": h.idx,
	}, "bidding is over")
	return st.complete(states.PhaseRevival), nil
}

// startAuction opens bidding on the next card and reports whether anyone
// can take part
func (h *BiddingHandler) startAuction(st *step) bool {
	s := st.state
	h.auction = auction{participants: map[core.Faction]bool{}}
	for _, f := range s.StormOrder {
		if !s.Factions[f].HandFull() {
			h.auction.participants[f] = true
		}
	}
	if len(h.auction.participants) == 0 {
		return false
	}
	h.auction.started = true
	h.auction.seat = h.idx % len(s.StormOrder)
	if peeker, ok := rules.FactionWith(s, func(c rules.Capability) bool { return c.PeeksAuctionCards }); ok {
		st.event(events.EventCardPeeked, map[string]interface{}{
			"faction": string(peeker),
			"card":    h.idx + 1,
		}, "%s foresees card %d", peeker, h.idx+1)
	}
	return true
}

func (h *BiddingHandler) request(s *game.GameState, f core.Faction) agent.Request {
	a := h.auction
	ctx := map[string]interface{}{
		agent.CtxCurrentBid:     a.bid,
		agent.CtxMinBid:         rules.MinimumBid(s, a.bid),
		agent.CtxHighBidder:     string(a.high),
		agent.CtxSpice:          s.Factions[f].Spice,
		agent.CtxCardNumber:     h.idx + 1,
		agent.CtxCardsInAuction: len(h.cards),
	}
	if rules.Capabilities(f).PeeksAuctionCards {
		ctx[agent.CtxPeekedCard] = string(h.cards[h.idx])
	}
	return newRequest(f, agent.RequestBidOrPass, ctx, agent.ActionBid, agent.ActionPass)
}

// sell hands the card to the high bidder and collects the price
func (h *BiddingHandler) sell(st *step) error {
	a := h.auction
	card := h.cards[h.idx]
	buyer := a.high

	payee := core.NoFaction
	if f, ok := rules.FactionWith(st.state, func(c rules.Capability) bool { return c.ReceivesBidPayments }); ok && f != buyer {
		payee = f
	}
	next, err := game.TransferSpice(st.state, buyer, payee, a.bid)
	if err != nil {
		return err
	}
	if next, err = game.GiveCard(next, buyer, card); err != nil {
		return err
	}
	st.state = next
	st.event(events.EventCardWon, map[string]interface{}{
		"faction": string(buyer),
		"price":   a.bid,
		"paid_to": string(payee),
		"card":    h.idx + 1,
	}, "%s wins card %d for %d spice", buyer, h.idx+1, a.bid)

	if rules.Capabilities(buyer).BonusCardOnWin && !st.state.Factions[buyer].HandFull() {
		next, bonus, err := game.DrawTreachery(st.state, h.shuffler)
		switch {
		case errors.Is(err, core.ErrEmptyDeck):
		case err != nil:
			return err
		default:
			if next, err = game.GiveCard(next, buyer, bonus); err != nil {
				return err
			}
			st.state = next
			st.event(events.EventBonusCardDrawn, map[string]interface{}{
				"faction": string(buyer),
			}, "%s draws a bonus card", buyer)
		}
	}
	st.state = game.AppendLog(st.state, buyer, "bid_won", string(card))

	h.idx++
	h.auction = auction{}
	return nil
}

// Cleanup returns unsold cards to the top of the deck
func (h *BiddingHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	if h.idx < len(h.cards) {
		s = game.ReturnCardsToDeck(s, h.cards[h.idx:])
	}
	h.cards = nil
	h.idx = 0
	h.current = nil
	return s, nil
}
