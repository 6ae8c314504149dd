package agent

import (
	"context"
	"sync"

	"golang.org/x/exp/rand"
)

// HeuristicAgent plays simple legal moves drawn from the options listed in
// each request context. It is the default opponent of the simulation runner.
type HeuristicAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
	// Aggression is the probability of bidding, shipping and moving when
	// able. Zero makes the agent fully passive in those rounds.
	Aggression float64
}

// NewHeuristicAgent creates a HeuristicAgent with a deterministic seed
func NewHeuristicAgent(seed uint64) *HeuristicAgent {
	return &HeuristicAgent{rng: rand.New(rand.NewSource(seed)), Aggression: 0.6}
}

func (h *HeuristicAgent) chance(p float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64() < p
}

func (h *HeuristicAgent) intn(n int) int {
	if n <= 0 {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Intn(n)
}

// Respond implements Agent
func (h *HeuristicAgent) Respond(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	f := req.Faction
	switch req.Type {
	case RequestSelectTraitor:
		return h.selectTraitor(req), nil
	case RequestPredictWinner:
		return h.predict(req), nil
	case RequestDialStorm:
		return Act(f, ActionDialStorm, map[string]interface{}{KeyDial: h.intn(req.Int(CtxMaxDial) + 1)}), nil
	case RequestClaimCharity:
		return Act(f, ActionClaimCharity, map[string]interface{}{KeyAmount: req.Int(CtxCharityAmount)}), nil
	case RequestBidOrPass:
		return h.bid(req), nil
	case RequestReviveForces:
		return h.revive(req), nil
	case RequestShipForces:
		return h.ship(req), nil
	case RequestMoveForces:
		return h.move(req), nil
	case RequestSendAdvisor:
		return Act(f, ActionSendAdvisor, nil), nil
	case RequestChooseBattle:
		return h.chooseBattle(req), nil
	case RequestUsePrescience:
		return h.prescience(req), nil
	case RequestUseVoice:
		return h.voice(req), nil
	case RequestCreateBattlePlan:
		return h.battlePlan(req), nil
	case RequestCallTraitor:
		if req.Allows(ActionCallTraitor) {
			return Act(f, ActionCallTraitor, nil), nil
		}
	case RequestChooseCardsToKeep:
		return Act(f, ActionKeepCards, map[string]interface{}{KeyKeep: req.Strings(CtxPlayedCards)}), nil
	case RequestCaptureLeader:
		if c := req.Strings(CtxCandidates); len(c) > 0 {
			return Act(f, ActionCaptureLeader, map[string]interface{}{KeyLeader: c[0]}), nil
		}
	}
	return Pass(f), nil
}

func (h *HeuristicAgent) selectTraitor(req Request) Response {
	dealt := req.Strings(CtxDealtTraitors)
	if len(dealt) == 0 {
		return Pass(req.Faction)
	}
	return Act(req.Faction, ActionSelectTraitor, map[string]interface{}{KeyTraitor: dealt[h.intn(len(dealt))]})
}

func (h *HeuristicAgent) predict(req Request) Response {
	var others []string
	for _, f := range req.Strings(CtxFactions) {
		if f != string(req.Faction) {
			others = append(others, f)
		}
	}
	if len(others) == 0 {
		return Pass(req.Faction)
	}
	turns := req.Int(CtxMaxTurns)
	if turns < 1 {
		turns = 1
	}
	return Act(req.Faction, ActionPredict, map[string]interface{}{
		KeyFaction: others[h.intn(len(others))],
		KeyTurn:    h.intn(turns) + 1,
	})
}

func (h *HeuristicAgent) bid(req Request) Response {
	minBid := req.Int(CtxMinBid)
	spice := req.Int(CtxSpice)
	// keep a reserve for shipping
	if minBid > spice || minBid > spice/2+1 || !h.chance(h.Aggression) {
		return Pass(req.Faction)
	}
	return Act(req.Faction, ActionBid, map[string]interface{}{KeyAmount: minBid})
}

func (h *HeuristicAgent) revive(req Request) Response {
	free := req.Int(CtxFreeRevival)
	tanks := req.Int(CtxTanksRegular) + req.Int(CtxTanksElite)
	if tanks == 0 {
		return Pass(req.Faction)
	}
	paid := req.Int(CtxMaxRevival) - free
	if affordable := req.Int(CtxSpice) / 2 / max(req.Int(CtxRevivalCost), 1); paid > affordable {
		paid = affordable
	}
	paid = max(min(paid, tanks-free), 0)
	if paid == 0 && free == 0 {
		return Pass(req.Faction)
	}
	return Act(req.Faction, ActionRevive, map[string]interface{}{KeyCount: paid})
}

func (h *HeuristicAgent) ship(req Request) Response {
	reserves := req.Int(CtxReservesRegular)
	if reserves == 0 || !h.chance(h.Aggression) {
		return Pass(req.Faction)
	}
	spice := req.Int(CtxSpice)
	targets := req.Maps(CtxShipmentTargets)
	// prefer the cheapest affordable target, strongholds first in catalog order
	best := -1
	for i, t := range targets {
		cost := MapInt(t, "cost")
		if cost > spice {
			continue
		}
		if best < 0 || cost < MapInt(targets[best], "cost") {
			best = i
		}
	}
	if best < 0 {
		return Pass(req.Faction)
	}
	target := targets[best]
	count := min(reserves, 5)
	if per := MapInt(target, "cost"); per > 0 {
		count = min(count, spice/per)
	}
	if count == 0 {
		return Pass(req.Faction)
	}
	return Act(req.Faction, ActionShip, map[string]interface{}{
		KeyTerritory: MapString(target, "territory"),
		KeySector:    MapInt(target, "sector"),
		KeyRegular:   count,
		KeyElite:     0,
	})
}

func (h *HeuristicAgent) move(req Request) Response {
	if !h.chance(h.Aggression) {
		return Pass(req.Faction)
	}
	for _, stack := range req.Maps(CtxStacks) {
		dests := mapsValue(stack[CtxDestinations])
		if len(dests) == 0 {
			continue
		}
		dest := dests[h.intn(len(dests))]
		return Act(req.Faction, ActionMove, map[string]interface{}{
			KeyFrom:       MapString(stack, "territory"),
			KeyFromSector: MapInt(stack, "sector"),
			KeyTo:         MapString(dest, "territory"),
			KeyToSector:   MapInt(dest, "sector"),
			KeyRegular:    MapInt(stack, "regular"),
			KeyElite:      MapInt(stack, "elite"),
		})
	}
	return Pass(req.Faction)
}

func (h *HeuristicAgent) chooseBattle(req Request) Response {
	battles := req.Maps(CtxBattles)
	if len(battles) == 0 {
		return Pass(req.Faction)
	}
	b := battles[0]
	return Act(req.Faction, ActionChooseBattle, map[string]interface{}{
		KeyTerritory: MapString(b, "territory"),
		KeyTarget:    MapString(b, "opponent"),
	})
}

func (h *HeuristicAgent) prescience(req Request) Response {
	elements := req.Strings(CtxElements)
	if len(elements) == 0 {
		return Pass(req.Faction)
	}
	return Act(req.Faction, ActionUsePrescience, map[string]interface{}{KeyElement: elements[h.intn(len(elements))]})
}

func (h *HeuristicAgent) voice(req Request) Response {
	types := req.Strings(CtxCardTypes)
	if len(types) == 0 {
		return Pass(req.Faction)
	}
	return Act(req.Faction, ActionUseVoice, map[string]interface{}{
		KeyCommand:  "not_play",
		KeyCardType: types[h.intn(len(types))],
	})
}

func (h *HeuristicAgent) battlePlan(req Request) Response {
	data := map[string]interface{}{KeyForcesDialed: req.Int(CtxMaxDial)}
	if leaders := req.Strings(CtxLeaders); len(leaders) > 0 {
		data[KeyLeader] = leaders[0]
	} else if heroes := req.Strings(CtxCheapHeroes); len(heroes) > 0 {
		data[KeyCheapHero] = heroes[0]
	}
	if weapons := req.Strings(CtxWeapons); len(weapons) > 0 {
		data[KeyWeapon] = weapons[0]
	}
	if defenses := req.Strings(CtxDefenses); len(defenses) > 0 {
		data[KeyDefense] = defenses[0]
	}
	if req.Bool(CtxKwisatzHaderach) {
		data[KeyKwisatzHaderach] = true
	}
	return Act(req.Faction, ActionSubmitPlan, data)
}

var _ Agent = (*HeuristicAgent)(nil)
