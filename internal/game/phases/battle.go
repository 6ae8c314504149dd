package phases

import (
	"fmt"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/battle"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// pendingBattle is a contested territory waiting to be fought
type pendingBattle struct {
	Territory core.TerritoryID
	A, B      core.Faction
}

func (p pendingBattle) key() string {
	a, b := p.A, p.B
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s/%s/%s", p.Territory, a, b)
}

func (p pendingBattle) involves(f core.Faction) bool {
	return p.A == f || p.B == f
}

func (p pendingBattle) opponent(f core.Faction) core.Faction {
	if p.A == f {
		return p.B
	}
	return p.A
}

// postStep orders the decisions taken after a battle is resolved
type postStep int

const (
	postKeepCards postStep = iota
	postCapture
	postDone
)

// BattleHandler fights every battle on the board, one at a time. Each
// battle walks through the steps of game.BattleStep.
type BattleHandler struct {
	fought  map[string]bool
	count   int
	options []pendingBattle
	outcome *battle.Outcome
	post    postStep
	round   *round
	current *agent.Request
}

// NewBattleHandler creates the battle phase handler
func NewBattleHandler() *BattleHandler {
	return &BattleHandler{}
}

// Phase implements Handler
func (h *BattleHandler) Phase() states.GamePhase { return states.PhaseBattle }

// Initialize implements Handler
func (h *BattleHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.fought = map[string]bool{}
	h.count = 0
	h.reset()
	st := newStep(game.WithBattle(s, nil))
	return h.advance(st)
}

func (h *BattleHandler) reset() {
	h.options = nil
	h.outcome = nil
	h.post = postKeepCards
	h.round = nil
	h.current = nil
}

// IdentifyBattles lists every territory where two unallied factions have
// fighters, in catalog order. The Polar Sink never hosts a battle.
func IdentifyBattles(s *game.GameState) []pendingBattle {
	var out []pendingBattle
	for _, t := range s.Catalog.TerritoryIDs() {
		if t == polarSink {
			continue
		}
		occ := s.Occupants(t)
		for i := 0; i < len(occ); i++ {
			for j := i + 1; j < len(occ); j++ {
				if s.AllyOf(occ[i]) == occ[j] {
					continue
				}
				out = append(out, pendingBattle{Territory: t, A: occ[i], B: occ[j]})
			}
		}
	}
	return out
}

// ProcessStep implements Handler
func (h *BattleHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	b := s.CurrentBattle

	switch {
	case h.current != nil:
		resp, ok := responseFrom(responses, h.current.Faction)
		if !ok {
			return st.wait(false, *h.current), nil
		}
		req := *h.current
		h.current = nil
		if err := h.handleSequential(st, req, resp); err != nil {
			return StepResult{}, err
		}
	case h.round != nil && b != nil:
		h.round.record(responses)
		if !h.round.done() {
			return st.wait(true, h.round.outstanding()...), nil
		}
		if err := h.handleRound(st); err != nil {
			return StepResult{}, err
		}
		h.round = nil
	}
	return h.advance(st)
}

// handleSequential applies a single-faction decision
func (h *BattleHandler) handleSequential(st *step, req agent.Request, resp agent.Response) error {
	switch req.Type {
	case agent.RequestChooseBattle:
		return h.startBattle(st, h.chooseBattle(st, req.Faction, resp))
	case agent.RequestUsePrescience:
		h.usePrescience(st, req, resp)
	case agent.RequestUseVoice:
		h.useVoice(st, req, resp)
	case agent.RequestChooseCardsToKeep:
		h.post = postCapture
		return h.keepCards(st, resp)
	case agent.RequestCaptureLeader:
		h.post = postDone
		return h.capture(st, resp)
	}
	return nil
}

// handleRound applies a completed simultaneous round
func (h *BattleHandler) handleRound(st *step) error {
	b := st.state.CurrentBattle.Clone()
	switch b.Step {
	case game.StepBattlePlans:
		for _, f := range h.round.factions() {
			resp, _ := h.round.answer(f)
			plan := h.plan(st, b, f, resp)
			if f == b.Aggressor {
				b.AggressorPlan = &plan
			} else {
				b.DefenderPlan = &plan
			}
		}
		st.event(events.EventBattlePlansRevealed, map[string]interface{}{
			"territory": string(b.Territory),
			"aggressor": planData(*b.AggressorPlan),
			"defender":  planData(*b.DefenderPlan),
		}, "battle plans revealed in %s", b.Territory)
		b.Step = game.StepPrescienceReveal
	case game.StepTraitorCall:
		for _, f := range h.round.factions() {
			resp, _ := h.round.answer(f)
			if resp.Passed || resp.ActionType != agent.ActionCallTraitor {
				continue
			}
			res := rules.ValidateTraitorCall(st.state, b, f)
			if !res.Valid {
				st.reject(f, string(agent.ActionCallTraitor), res)
				continue
			}
			if b.TraitorCalls == nil {
				b.TraitorCalls = map[core.Faction]bool{}
			}
			b.TraitorCalls[f] = true
			st.event(events.EventTraitorRevealed, map[string]interface{}{
				"faction": string(f),
				"leader":  res.Context["leader"],
			}, "%s reveals %v as a traitor", f, res.Context["leader"])
		}
		b.Step = game.StepResolution
	}
	st.state = game.WithBattle(st.state, b)
	return nil
}

// advance drives the battle state machine until a decision is needed or
// no battle remains
func (h *BattleHandler) advance(st *step) (StepResult, error) {
	for {
		b := st.state.CurrentBattle
		if b == nil {
			pending := h.remaining(st.state)
			if len(pending) == 0 {
				if h.count == 0 {
					st.event(events.EventNoBattles, nil, "no battles this turn")
				}
				return st.complete(states.PhaseSpiceCollection), nil
			}
			aggressor := h.aggressor(st.state, pending)
			h.options = nil
			for _, p := range pending {
				if p.involves(aggressor) {
					h.options = append(h.options, p)
				}
			}
			var battles []map[string]interface{}
			for _, p := range h.options {
				battles = append(battles, map[string]interface{}{
					"territory": string(p.Territory),
					"opponent":  string(p.opponent(aggressor)),
				})
			}
			return h.ask(st, newRequest(aggressor, agent.RequestChooseBattle, map[string]interface{}{
				agent.CtxBattles: battles,
			}, agent.ActionChooseBattle, agent.ActionPass)), nil
		}

		next := b.Clone()
		switch b.Step {
		case game.StepAggressorChoice:
			next.Step = game.StepPrescience
		case game.StepPrescience:
			next.Step = game.StepVoice
			if req, ok := prescienceRequest(st.state, b); ok {
				st.state = game.WithBattle(st.state, next)
				return h.ask(st, req), nil
			}
		case game.StepVoice:
			next.Step = game.StepBattlePlans
			if req, ok := voiceRequest(st.state, b); ok {
				st.state = game.WithBattle(st.state, next)
				return h.ask(st, req), nil
			}
		case game.StepBattlePlans:
			reqs := []agent.Request{planRequest(st.state, b, b.Aggressor), planRequest(st.state, b, b.Defender)}
			h.round = newRound(reqs)
			return st.wait(true, reqs...), nil
		case game.StepPrescienceReveal:
			revealPrescience(st, next)
			next.Step = game.StepTraitorCall
		case game.StepTraitorCall:
			if reqs := traitorRequests(st.state, b); len(reqs) > 0 {
				h.round = newRound(reqs)
				return st.wait(true, reqs...), nil
			}
			next.Step = game.StepResolution
		case game.StepResolution:
			if err := h.resolve(st, b); err != nil {
				return StepResult{}, err
			}
			next.Step = game.StepPostResolution
		case game.StepPostResolution:
			if req, ok := h.postRequest(st.state); ok {
				return h.ask(st, req), nil
			}
			next.Step = game.StepCleanup
		case game.StepCleanup:
			h.fought[pendingBattle{Territory: b.Territory, A: b.Aggressor, B: b.Defender}.key()] = true
			h.count++
			h.reset()
			st.state = game.WithBattle(st.state, nil)
			continue
		}
		st.state = game.WithBattle(st.state, next)
	}
}

func (h *BattleHandler) ask(st *step, req agent.Request) StepResult {
	h.current = &req
	return st.wait(false, req)
}

// remaining lists the battles not yet fought this phase
func (h *BattleHandler) remaining(s *game.GameState) []pendingBattle {
	var out []pendingBattle
	for _, p := range IdentifyBattles(s) {
		if !h.fought[p.key()] {
			out = append(out, p)
		}
	}
	return out
}

// aggressor is the first faction in storm order involved in a battle
func (h *BattleHandler) aggressor(s *game.GameState, pending []pendingBattle) core.Faction {
	for _, f := range s.StormOrder {
		for _, p := range pending {
			if p.involves(f) {
				return f
			}
		}
	}
	return pending[0].A
}

func (h *BattleHandler) chooseBattle(st *step, f core.Faction, resp agent.Response) pendingBattle {
	choice := h.options[0]
	if resp.Passed {
		return choice
	}
	t := core.TerritoryID(resp.String(agent.KeyTerritory))
	target := core.Faction(resp.String(agent.KeyTarget))
	for _, p := range h.options {
		if p.Territory == t && (target == core.NoFaction || p.opponent(f) == target) {
			return p
		}
	}
	st.reject(f, string(agent.ActionChooseBattle), core.Reject(core.CodeInvalidTarget, fmt.Sprintf("no battle against %s in %s", target, t)))
	return choice
}

func (h *BattleHandler) startBattle(st *step, p pendingBattle) error {
	aggressor := st.state.StormOrder[0]
	for _, f := range st.state.StormOrder {
		if p.involves(f) {
			aggressor = f
			break
		}
	}
	if aggressor == core.NoFaction || !p.involves(aggressor) {
		return core.Invariantf("no aggressor for battle in %s", p.Territory)
	}
	defender := p.opponent(aggressor)
	sector := 0
	if stacks := st.state.Factions[aggressor].StacksIn(p.Territory); len(stacks) > 0 {
		sector = stacks[0].Sector
	}
	st.state = game.WithBattle(st.state, &game.CurrentBattle{
		Territory: p.Territory,
		Sector:    sector,
		Aggressor: aggressor,
		Defender:  defender,
		Step:      game.StepAggressorChoice,
	})
	st.event(events.EventBattleStarted, map[string]interface{}{
		"territory": string(p.Territory),
		"aggressor": string(aggressor),
		"defender":  string(defender),
	}, "%s attacks %s in %s", aggressor, defender, p.Territory)
	return nil
}

// helperFor returns the faction holding a capability that may act in the
// battle, either as a side or as the ally of a side, and the side it helps
func helperFor(s *game.GameState, b *game.CurrentBattle, has func(rules.Capability) bool) (core.Faction, core.Faction, bool) {
	for _, side := range []core.Faction{b.Aggressor, b.Defender} {
		if has(rules.Capabilities(side)) {
			return side, side, true
		}
	}
	for _, side := range []core.Faction{b.Aggressor, b.Defender} {
		if ally := s.AllyOf(side); ally != core.NoFaction && has(rules.Capabilities(ally)) {
			return ally, side, true
		}
	}
	return core.NoFaction, core.NoFaction, false
}

func prescienceRequest(s *game.GameState, b *game.CurrentBattle) (agent.Request, bool) {
	asker, side, ok := helperFor(s, b, func(c rules.Capability) bool { return c.Prescience })
	if !ok {
		return agent.Request{}, false
	}
	return newRequest(asker, agent.RequestUsePrescience, map[string]interface{}{
		agent.CtxTerritory: string(b.Territory),
		agent.CtxOpponent:  string(b.Opponent(side)),
		agent.CtxElements:  rules.PrescienceElements,
	}, agent.ActionUsePrescience, agent.ActionPass), true
}

func (h *BattleHandler) usePrescience(st *step, req agent.Request, resp agent.Response) {
	if resp.Passed || resp.ActionType != agent.ActionUsePrescience {
		return
	}
	element := resp.String(agent.KeyElement)
	if res := rules.ValidatePrescience(element); !res.Valid {
		st.reject(req.Faction, string(agent.ActionUsePrescience), res)
		return
	}
	b := st.state.CurrentBattle.Clone()
	target := core.Faction(req.String(agent.CtxOpponent))
	b.Prescience = &game.PrescienceState{Asker: req.Faction, Target: target, Element: element}
	st.state = game.WithBattle(st.state, b)
	st.event(events.EventPrescienceUsed, map[string]interface{}{
		"faction": string(req.Faction),
		"target":  string(target),
		"element": element,
	}, "%s asks to see the %s of %s", req.Faction, element, target)
}

func voiceRequest(s *game.GameState, b *game.CurrentBattle) (agent.Request, bool) {
	user, side, ok := helperFor(s, b, func(c rules.Capability) bool { return c.Voice })
	if !ok {
		return agent.Request{}, false
	}
	return newRequest(user, agent.RequestUseVoice, map[string]interface{}{
		agent.CtxTerritory: string(b.Territory),
		agent.CtxOpponent:  string(b.Opponent(side)),
		agent.CtxCardTypes: strs(rules.VoiceCardTypes),
	}, agent.ActionUseVoice, agent.ActionPass), true
}

func (h *BattleHandler) useVoice(st *step, req agent.Request, resp agent.Response) {
	if resp.Passed || resp.ActionType != agent.ActionUseVoice {
		return
	}
	command := resp.String(agent.KeyCommand)
	cardType := resp.String(agent.KeyCardType)
	if res := rules.ValidateVoice(command, cardType); !res.Valid {
		st.reject(req.Faction, string(agent.ActionUseVoice), res)
		return
	}
	b := st.state.CurrentBattle.Clone()
	target := core.Faction(req.String(agent.CtxOpponent))
	b.Voice = &game.VoiceState{User: req.Faction, Target: target, Command: command, CardType: cardType}
	st.state = game.WithBattle(st.state, b)
	st.event(events.EventVoiceUsed, map[string]interface{}{
		"faction":   string(req.Faction),
		"target":    string(target),
		"command":   command,
		"card_type": cardType,
	}, "%s commands %s: %s %s", req.Faction, target, command, cardType)
}

func planRequest(s *game.GameState, b *game.CurrentBattle, f core.Faction) agent.Request {
	var leaders []string
	for _, l := range rules.AvailableLeaders(s, f, b.Territory) {
		leaders = append(leaders, string(l.ID))
	}
	ctx := map[string]interface{}{
		agent.CtxTerritory:       string(b.Territory),
		agent.CtxOpponent:        string(b.Opponent(f)),
		agent.CtxAggressor:       string(b.Aggressor),
		agent.CtxDefender:        string(b.Defender),
		agent.CtxLeaders:         leaders,
		agent.CtxCheapHeroes:     strs(rules.CardsOfType(s, f, func(d data.CardDef) bool { return d.Type == data.CardCheapHero })),
		agent.CtxWeapons:         strs(rules.CardsOfType(s, f, data.CardDef.IsWeapon)),
		agent.CtxDefenses:        strs(rules.CardsOfType(s, f, data.CardDef.IsDefense)),
		agent.CtxMaxDial:         rules.MaxDial(s, b, f),
		agent.CtxKwisatzHaderach: rules.KwisatzHaderachAvailable(s, f),
		agent.CtxAdvancedCombat:  s.Variant.AdvancedCombat,
		agent.CtxSpice:           s.Factions[f].Spice,
	}
	if v := b.Voice; v != nil && v.Target == f {
		ctx[agent.CtxVoice] = map[string]interface{}{"command": v.Command, "card_type": v.CardType}
	}
	return newRequest(f, agent.RequestCreateBattlePlan, ctx, agent.ActionSubmitPlan)
}

// plan turns a response into a validated plan, falling back to the default
func (h *BattleHandler) plan(st *step, b *game.CurrentBattle, f core.Faction, resp agent.Response) game.BattlePlan {
	if resp.Passed {
		return rules.DefaultBattlePlan(st.state, b, f)
	}
	p := game.BattlePlan{
		Faction:         f,
		Leader:          core.LeaderID(resp.String(agent.KeyLeader)),
		CheapHero:       core.CardID(resp.String(agent.KeyCheapHero)),
		ForcesDialed:    resp.IntOr(agent.KeyForcesDialed, 0),
		Weapon:          core.CardID(resp.String(agent.KeyWeapon)),
		Defense:         core.CardID(resp.String(agent.KeyDefense)),
		SpiceDialed:     resp.IntOr(agent.KeySpiceDialed, 0),
		KwisatzHaderach: resp.Bool(agent.KeyKwisatzHaderach),
	}
	if res := rules.ValidateBattlePlan(st.state, b, p); !res.Valid {
		st.reject(f, string(agent.ActionSubmitPlan), res)
		return rules.DefaultBattlePlan(st.state, b, f)
	}
	return p
}

func planData(p game.BattlePlan) map[string]interface{} {
	return map[string]interface{}{
		"faction":          string(p.Faction),
		"leader":           string(p.Leader),
		"cheap_hero":       string(p.CheapHero),
		"forces_dialed":    p.ForcesDialed,
		"weapon":           string(p.Weapon),
		"defense":          string(p.Defense),
		"spice_dialed":     p.SpiceDialed,
		"kwisatz_haderach": p.KwisatzHaderach,
	}
}

// revealPrescience answers the prescience question from the committed plan
func revealPrescience(st *step, b *game.CurrentBattle) {
	ps := b.Prescience
	if ps == nil {
		return
	}
	target := b.Plan(ps.Target)
	if target == nil {
		return
	}
	switch ps.Element {
	case game.PrescienceLeader:
		ps.Revealed = string(target.Leader)
		if target.CheapHero != "" {
			ps.Revealed = string(target.CheapHero)
		}
	case game.PrescienceWeapon:
		ps.Revealed = string(target.Weapon)
	case game.PrescienceDefense:
		ps.Revealed = string(target.Defense)
	case game.PrescienceDial:
		ps.Revealed = fmt.Sprint(target.ForcesDialed)
	}
	st.event(events.EventPrescienceRevealed, map[string]interface{}{
		"faction":  string(ps.Asker),
		"element":  ps.Element,
		"revealed": ps.Revealed,
	}, "%s sees %s: %q", ps.Asker, ps.Element, ps.Revealed)
}

func traitorRequests(s *game.GameState, b *game.CurrentBattle) []agent.Request {
	var reqs []agent.Request
	for _, f := range []core.Faction{b.Aggressor, b.Defender} {
		res := rules.ValidateTraitorCall(s, b, f)
		if !res.Valid {
			continue
		}
		reqs = append(reqs, newRequest(f, agent.RequestCallTraitor, map[string]interface{}{
			agent.CtxOpponentLeader: res.Context["leader"],
		}, agent.ActionCallTraitor, agent.ActionPass))
	}
	return reqs
}

func (h *BattleHandler) resolve(st *step, b *game.CurrentBattle) error {
	o := battle.Resolve(st.state, b, battle.OptionsFor(st.state))
	st.emit(o.Events...)
	next, evs, err := battle.Apply(st.state, o)
	if err != nil {
		return err
	}
	st.state = next
	st.emit(evs...)
	h.outcome = &o
	h.post = postKeepCards
	return nil
}

// postRequest returns the next post-resolution decision of the winner
func (h *BattleHandler) postRequest(s *game.GameState) (agent.Request, bool) {
	o := h.outcome
	if o == nil || o.Winner == core.NoFaction {
		return agent.Request{}, false
	}
	for h.post != postDone {
		switch h.post {
		case postKeepCards:
			if kept := keepable(s, o); len(kept) > 0 {
				return newRequest(o.Winner, agent.RequestChooseCardsToKeep, map[string]interface{}{
					agent.CtxPlayedCards: strs(kept),
				}, agent.ActionKeepCards, agent.ActionPass), true
			}
			h.post = postCapture
		case postCapture:
			if len(o.CaptureCandidates) > 0 {
				return newRequest(o.Winner, agent.RequestCaptureLeader, map[string]interface{}{
					agent.CtxCandidates: strs(o.CaptureCandidates),
					agent.CtxOpponent:   string(o.Loser),
				}, agent.ActionCaptureLeader, agent.ActionKillCaptured, agent.ActionDeclineCapture, agent.ActionPass), true
			}
			h.post = postDone
		}
	}
	return agent.Request{}, false
}

// keepable returns the winner's played cards still in hand
func keepable(s *game.GameState, o *battle.Outcome) []core.CardID {
	side := o.Side(o.Winner)
	if side == nil {
		return nil
	}
	var out []core.CardID
	for _, c := range side.Keepable {
		if s.Factions[o.Winner].HasCard(c) {
			out = append(out, c)
		}
	}
	return out
}

func (h *BattleHandler) keepCards(st *step, resp agent.Response) error {
	f := h.outcome.Winner
	cards := keepable(st.state, h.outcome)
	if resp.Passed {
		for _, c := range cards {
			st.event(events.EventCardKept, map[string]interface{}{"faction": string(f), "card": string(c)}, "%s keeps %s", f, c)
		}
		return nil
	}
	keep := map[string]bool{}
	for _, c := range resp.Strings(agent.KeyKeep) {
		keep[c] = true
	}
	for _, c := range cards {
		if keep[string(c)] {
			st.event(events.EventCardKept, map[string]interface{}{"faction": string(f), "card": string(c)}, "%s keeps %s", f, c)
			continue
		}
		next, err := game.DiscardCard(st.state, f, c)
		if err != nil {
			return err
		}
		st.state = next
		st.event(events.EventCardDiscarded, map[string]interface{}{"faction": string(f), "card": string(c)}, "%s discards %s", f, c)
	}
	return nil
}

func (h *BattleHandler) capture(st *step, resp agent.Response) error {
	o := h.outcome
	f := o.Winner
	if resp.Passed || resp.ActionType == agent.ActionDeclineCapture {
		return nil
	}
	id := core.LeaderID(resp.String(agent.KeyLeader))
	res := rules.ValidateCapture(st.state, f, o.CaptureCandidates, id)
	if !res.Valid {
		st.reject(f, string(resp.ActionType), res)
		return nil
	}
	var (
		next *game.GameState
		evs  []events.PhaseEvent
		err  error
	)
	switch resp.ActionType {
	case agent.ActionCaptureLeader:
		next, evs, err = battle.Capture(st.state, f, id)
	case agent.ActionKillCaptured:
		next, evs, err = battle.KillForReward(st.state, f, id)
	default:
		st.reject(f, string(resp.ActionType), core.Reject(core.CodeInvalidAction, "expected capture, kill or decline"))
		return nil
	}
	if err != nil {
		return err
	}
	st.state = next
	st.emit(evs...)
	return nil
}

// Cleanup implements Handler
func (h *BattleHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	h.reset()
	h.fought = nil
	return game.WithBattle(s, nil), nil
}
