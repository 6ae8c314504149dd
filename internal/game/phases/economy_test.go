package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/testutil"
)

func TestCharity_ClaimAndPass(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.BeneGesserit, core.Fremen)
	s = testutil.SetSpice(t, s, core.Atreides, 0)

	table, agents := scripts(core.Atreides, core.BeneGesserit, core.Fremen)
	agents[core.Atreides].Queue(agent.RequestClaimCharity, act(agent.ActionClaimCharity, nil))

	next, evs := drive(t, NewCharityHandler(), s, table)

	assert.Equal(t, 2, next.Factions[core.Atreides].Spice)
	assert.Equal(t, 5, next.Factions[core.BeneGesserit].Spice)
	assert.Empty(t, agents[core.Fremen].Requests(), "fremen hold enough spice")
	require.Len(t, agents[core.BeneGesserit].Requests(), 1, "bene gesserit are always offered charity")
	assert.Equal(t, 2, agents[core.BeneGesserit].Requests()[0].Int(agent.CtxCharityAmount))
	assert.Len(t, ofType(evs, events.EventCharityClaimed), 1)
	assert.True(t, next.CharityClaimedThisTurn(core.Atreides))
}

func TestCharity_OncePerTurn(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Fremen)
	s = testutil.SetSpice(t, s, core.Atreides, 0)
	s = game.RecordCharity(s, core.Atreides)

	h := NewCharityHandler()
	res, err := h.Initialize(s)
	require.NoError(t, err)
	assert.True(t, res.PhaseComplete)
	assert.Equal(t, states.PhaseBidding, res.NextPhase)
}

func TestBidding_Auction(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Harkonnen)
	table, agents := scripts(core.Atreides, core.Harkonnen)
	agents[core.Atreides].Queue(agent.RequestBidOrPass,
		act(agent.ActionBid, map[string]interface{}{agent.KeyAmount: 1}),
		pass(),
	)
	agents[core.Harkonnen].Queue(agent.RequestBidOrPass,
		act(agent.ActionBid, map[string]interface{}{agent.KeyAmount: 1}),
		act(agent.ActionBid, map[string]interface{}{agent.KeyAmount: 2}),
	)

	next, evs := drive(t, NewBiddingHandler(game.IdentityShuffler{}), s, table)

	assert.Equal(t, []core.CardID{"crysknife"}, next.Factions[core.Atreides].Hand)
	assert.Equal(t, []core.CardID{"maula_pistol", "slip_tip"}, next.Factions[core.Harkonnen].Hand)
	assert.Equal(t, 9, next.Factions[core.Atreides].Spice)
	assert.Equal(t, 8, next.Factions[core.Harkonnen].Spice)

	assert.Equal(t, []string{string(core.CodeBidTooLow)}, rejectedCodes(evs))
	assert.Len(t, ofType(evs, events.EventCardWon), 2)
	assert.Len(t, ofType(evs, events.EventCardPeeked), 2)
	assert.Len(t, ofType(evs, events.EventBonusCardDrawn), 1)
	assert.Len(t, ofType(evs, events.EventBiddingComplete), 1)

	reqs := agents[core.Atreides].RequestsOfType(agent.RequestBidOrPass)
	require.NotEmpty(t, reqs)
	assert.Equal(t, "crysknife", reqs[0].String(agent.CtxPeekedCard))
	for _, r := range agents[core.Harkonnen].RequestsOfType(agent.RequestBidOrPass) {
		assert.NotContains(t, r.Context, agent.CtxPeekedCard)
	}
}

func TestBidding_EmperorCollectsPayment(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Emperor)
	table, agents := scripts(core.Atreides, core.Emperor)
	agents[core.Atreides].Queue(agent.RequestBidOrPass,
		act(agent.ActionBid, map[string]interface{}{agent.KeyAmount: 3}),
		pass(),
	)
	agents[core.Emperor].Queue(agent.RequestBidOrPass,
		pass(),
		act(agent.ActionBid, map[string]interface{}{agent.KeyAmount: 2}),
	)

	next, _ := drive(t, NewBiddingHandler(game.IdentityShuffler{}), s, table)

	assert.Equal(t, 7, next.Factions[core.Atreides].Spice)
	assert.Equal(t, 11, next.Factions[core.Emperor].Spice, "paid 3 by atreides, paid 2 to the bank")
	assert.Len(t, next.Factions[core.Emperor].Hand, 1)
}

func TestBidding_BoughtIn(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Harkonnen)

	next, evs := drive(t, NewBiddingHandler(game.IdentityShuffler{}), s, agent.PassAgent{})

	assert.Len(t, ofType(evs, events.EventBoughtIn), 1)
	assert.Empty(t, next.Factions[core.Atreides].Hand)
	assert.Empty(t, next.Factions[core.Harkonnen].Hand)
	require.GreaterOrEqual(t, len(next.Decks.Treachery), 2)
	assert.Equal(t, []core.CardID{"crysknife", "maula_pistol"}, next.Decks.Treachery[:2])
}

func TestBidding_BrokeFactionsAutoPass(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Harkonnen)
	s = testutil.SetSpice(t, s, core.Harkonnen, 0)
	table, agents := scripts(core.Atreides, core.Harkonnen)
	agents[core.Atreides].Queue(agent.RequestBidOrPass,
		act(agent.ActionBid, map[string]interface{}{agent.KeyAmount: 1}),
		act(agent.ActionBid, map[string]interface{}{agent.KeyAmount: 1}),
	)

	next, evs := drive(t, NewBiddingHandler(game.IdentityShuffler{}), s, table)

	assert.Len(t, next.Factions[core.Atreides].Hand, 2)
	assert.Empty(t, agents[core.Harkonnen].Requests())
	for _, e := range ofType(evs, events.EventBidPassed) {
		assert.Equal(t, true, e.Data["auto"])
	}
}

func TestBidding_FullHandsSkipAuction(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Fremen)
	s = testutil.GiveCards(t, s, core.Atreides, "lasgun", "shield_1", "shield_2", "shield_3")
	s = testutil.GiveCards(t, s, core.Fremen, "snooper_1", "snooper_2", "snooper_3", "snooper_4")

	h := NewBiddingHandler(game.IdentityShuffler{})
	res, err := h.Initialize(s)
	require.NoError(t, err)
	assert.True(t, res.PhaseComplete)
	assert.Equal(t, states.PhaseRevival, res.NextPhase)
}

func TestRevival(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Harkonnen)
	s = testutil.Kill(t, s, core.Atreides, 10, 0)
	s = testutil.Kill(t, s, core.Harkonnen, 4, 0)

	table, agents := scripts(core.Atreides, core.Harkonnen)
	agents[core.Atreides].Queue(agent.RequestReviveForces, act(agent.ActionRevive, map[string]interface{}{agent.KeyCount: 3}))

	next, evs := drive(t, NewRevivalHandler(), s, table)

	atreides := next.Factions[core.Atreides]
	assert.Equal(t, 7, atreides.Tanks.Regular)
	assert.Equal(t, 8, atreides.Spice)

	harkonnen := next.Factions[core.Harkonnen]
	assert.Equal(t, 2, harkonnen.Tanks.Regular, "free revival happens even on a pass")
	assert.Equal(t, 10, harkonnen.Spice)
	assert.Len(t, ofType(evs, events.EventForcesRevived), 2)
}

func TestRevival_OverLimitIsCapped(t *testing.T) {
	s := testutil.NewTestState(t, core.Atreides, core.Harkonnen)
	s = testutil.Kill(t, s, core.Atreides, 10, 0)

	table, agents := scripts(core.Atreides, core.Harkonnen)
	agents[core.Atreides].Queue(agent.RequestReviveForces, act(agent.ActionRevive, map[string]interface{}{agent.KeyCount: 5}))

	next, evs := drive(t, NewRevivalHandler(), s, table)

	assert.Equal(t, 7, next.Factions[core.Atreides].Tanks.Regular, "capped at three, two of them free")
	assert.Equal(t, 8, next.Factions[core.Atreides].Spice)
	assert.Contains(t, rejectedCodes(evs), string(core.CodeRevivalLimit))
	revived := ofType(evs, events.EventForcesRevived)
	require.Len(t, revived, 1)
	assert.Equal(t, 3, revived[0].Data["regular"])
	assert.Equal(t, 2, revived[0].Data["cost"])
	assert.Empty(t, agents[core.Harkonnen].Requests(), "nothing to revive")
}
