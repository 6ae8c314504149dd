package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/states"
)

// polarSink is where advisors land and where no battle is ever fought
const polarSink core.TerritoryID = "polar_sink"

type shipMoveStep int

const (
	stepShip shipMoveStep = iota
	stepAdvisor
	stepMove
	stepNextFaction
)

// ShipMoveHandler walks the storm order. Each faction ships and then moves;
// after another faction ships the Bene Gesserit may send an advisor.
type ShipMoveHandler struct {
	order   []core.Faction
	idx     int
	step    shipMoveStep
	shipped bool
	current *agent.Request
}

// NewShipMoveHandler creates the shipment and movement phase handler
func NewShipMoveHandler() *ShipMoveHandler {
	return &ShipMoveHandler{}
}

// Phase implements Handler
func (h *ShipMoveHandler) Phase() states.GamePhase { return states.PhaseShipmentMovement }

// Initialize implements Handler
func (h *ShipMoveHandler) Initialize(s *game.GameState) (StepResult, error) {
	h.order = append([]core.Faction(nil), s.StormOrder...)
	h.idx = 0
	h.step = stepShip
	h.shipped = false
	h.current = nil
	return h.advance(newStep(s))
}

// ProcessStep implements Handler
func (h *ShipMoveHandler) ProcessStep(s *game.GameState, responses []agent.Response) (StepResult, error) {
	st := newStep(s)
	if h.current == nil {
		return h.advance(st)
	}
	resp, ok := responseFrom(responses, h.current.Faction)
	if !ok {
		return st.wait(false, *h.current), nil
	}
	req := *h.current
	h.current = nil

	var err error
	switch req.Type {
	case agent.RequestShipForces:
		err = h.ship(st, resp)
		h.step = stepAdvisor
	case agent.RequestSendAdvisor:
		err = sendAdvisor(st, resp)
		h.step = stepMove
	case agent.RequestMoveForces:
		err = move(st, resp)
		h.step = stepNextFaction
	}
	if err != nil {
		return StepResult{}, err
	}
	return h.advance(st)
}

// advance finds the next decision or completes the phase
func (h *ShipMoveHandler) advance(st *step) (StepResult, error) {
	for h.idx < len(h.order) {
		f := h.order[h.idx]
		switch h.step {
		case stepShip:
			h.shipped = false
			if req, ok := shipRequest(st.state, f); ok {
				return h.ask(st, req), nil
			}
			h.step = stepAdvisor
		case stepAdvisor:
			h.step = stepMove
			if req, ok := advisorRequest(st.state, f, h.shipped); ok {
				return h.ask(st, req), nil
			}
		case stepMove:
			h.step = stepNextFaction
			if req, ok := moveRequest(st.state, f); ok {
				return h.ask(st, req), nil
			}
		case stepNextFaction:
			h.idx++
			h.step = stepShip
		}
	}
	return st.complete(states.PhaseBattle), nil
}

func (h *ShipMoveHandler) ask(st *step, req agent.Request) StepResult {
	h.current = &req
	return st.wait(false, req)
}

func shipRequest(s *game.GameState, f core.Faction) (agent.Request, bool) {
	fs := s.Factions[f]
	if fs.Reserves.Total() == 0 {
		return agent.Request{}, false
	}
	var targets []map[string]interface{}
	for _, d := range rules.ShipmentTargets(s, f) {
		targets = append(targets, map[string]interface{}{
			"territory": string(d.Territory),
			"sector":    d.Sector,
			"cost":      rules.ShipmentCost(s, f, d.Territory, 1),
		})
	}
	if len(targets) == 0 {
		return agent.Request{}, false
	}
	return newRequest(f, agent.RequestShipForces, map[string]interface{}{
		agent.CtxShipmentTargets: targets,
		agent.CtxReservesRegular: fs.Reserves.Regular,
		agent.CtxReservesElite:   fs.Reserves.Elite,
		agent.CtxSpice:           fs.Spice,
	}, agent.ActionShip, agent.ActionPass), true
}

func (h *ShipMoveHandler) ship(st *step, resp agent.Response) error {
	f := resp.Faction
	if resp.Passed || resp.ActionType != agent.ActionShip {
		return nil
	}
	t := core.TerritoryID(resp.String(agent.KeyTerritory))
	sector := resp.IntOr(agent.KeySector, -1)
	regular := resp.IntOr(agent.KeyRegular, 0)
	elite := resp.IntOr(agent.KeyElite, 0)
	res := rules.ValidateShipment(st.state, f, t, sector, regular, elite)
	if !res.Valid {
		st.reject(f, string(agent.ActionShip), res)
		return nil
	}

	cost := res.Int("cost")
	payee := core.NoFaction
	if guild, ok := rules.FactionWith(st.state, func(c rules.Capability) bool { return c.ReceivesShipmentPayments }); ok && guild != f {
		payee = guild
	}
	next, err := game.TransferSpice(st.state, f, payee, cost)
	if err != nil {
		return err
	}
	if next, err = game.ShipForces(next, f, t, sector, regular, elite); err != nil {
		return err
	}
	st.state = game.AppendLog(next, f, "ship", string(t))
	h.shipped = true
	st.event(events.EventForcesShipped, map[string]interface{}{
		"faction":   string(f),
		"territory": string(t),
		"sector":    sector,
		"regular":   regular,
		"elite":     elite,
		"cost":      cost,
		"paid_to":   string(payee),
	}, "%s ships %d forces to %s for %d spice", f, regular+elite, t, cost)
	return nil
}

// advisorRequest offers the free advisor after another faction has shipped
func advisorRequest(s *game.GameState, shipper core.Faction, shipped bool) (agent.Request, bool) {
	if !shipped {
		return agent.Request{}, false
	}
	bg, ok := rules.FactionWith(s, func(c rules.Capability) bool { return c.SendsAdvisors })
	if !ok || bg == shipper || !rules.ValidateAdvisor(s, bg).Valid {
		return agent.Request{}, false
	}
	return newRequest(bg, agent.RequestSendAdvisor, map[string]interface{}{
		agent.CtxShipper:         string(shipper),
		agent.CtxReservesRegular: s.Factions[bg].Reserves.Regular,
	}, agent.ActionSendAdvisor, agent.ActionPass), true
}

func sendAdvisor(st *step, resp agent.Response) error {
	f := resp.Faction
	if resp.Passed || resp.ActionType != agent.ActionSendAdvisor {
		return nil
	}
	if res := rules.ValidateAdvisor(st.state, f); !res.Valid {
		st.reject(f, string(agent.ActionSendAdvisor), res)
		return nil
	}
	next, err := game.ShipAdvisors(st.state, f, polarSink, 0, 1)
	if err != nil {
		return err
	}
	st.state = next
	st.event(events.EventAdvisorSent, map[string]interface{}{
		"faction":   string(f),
		"territory": string(polarSink),
	}, "%s sends an advisor to the Polar Sink", f)
	return nil
}

func moveRequest(s *game.GameState, f core.Faction) (agent.Request, bool) {
	var stacks []map[string]interface{}
	for _, stack := range s.Factions[f].Forces {
		if stack.Fighters() == 0 {
			continue
		}
		dests := rules.LegalDestinations(s, f, stack.Territory, stack.Sector)
		if len(dests) == 0 {
			continue
		}
		var options []map[string]interface{}
		for _, d := range dests {
			options = append(options, map[string]interface{}{
				"territory": string(d.Territory),
				"sector":    d.Sector,
			})
		}
		stacks = append(stacks, map[string]interface{}{
			"territory":           string(stack.Territory),
			"sector":              stack.Sector,
			"regular":             stack.Regular,
			"elite":               stack.Elite,
			agent.CtxDestinations: options,
		})
	}
	if len(stacks) == 0 {
		return agent.Request{}, false
	}
	return newRequest(f, agent.RequestMoveForces, map[string]interface{}{
		agent.CtxStacks: stacks,
	}, agent.ActionMove, agent.ActionPass), true
}

func move(st *step, resp agent.Response) error {
	f := resp.Faction
	if resp.Passed || resp.ActionType != agent.ActionMove {
		return nil
	}
	from := core.TerritoryID(resp.String(agent.KeyFrom))
	fromSector := resp.IntOr(agent.KeyFromSector, -1)
	to := core.TerritoryID(resp.String(agent.KeyTo))
	toSector := resp.IntOr(agent.KeyToSector, -1)
	regular := resp.IntOr(agent.KeyRegular, 0)
	elite := resp.IntOr(agent.KeyElite, 0)
	res := rules.ValidateMovement(st.state, f, from, fromSector, to, toSector, regular, elite)
	if !res.Valid {
		st.reject(f, string(agent.ActionMove), res)
		return nil
	}
	next, err := game.MoveForces(st.state, f, from, fromSector, to, toSector, regular, elite, 0)
	if err != nil {
		return err
	}
	st.state = game.AppendLog(next, f, "move", string(from)+"->"+string(to))
	st.event(events.EventForcesMoved, map[string]interface{}{
		"faction":  string(f),
		"from":     string(from),
		"to":       string(to),
		"regular":  regular,
		"elite":    elite,
		"distance": res.Int("distance"),
	}, "%s moves %d forces from %s to %s", f, regular+elite, from, to)
	return nil
}

// Cleanup implements Handler
func (h *ShipMoveHandler) Cleanup(s *game.GameState) (*game.GameState, error) {
	h.current = nil
	h.order = nil
	return s, nil
}
