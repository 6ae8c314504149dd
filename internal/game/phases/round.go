package phases

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// round tracks a simultaneous decision round. Responses from factions
// that were not asked, or that already answered, are ignored.
type round struct {
	requests []agent.Request
	answers  map[core.Faction]agent.Response
}

func newRound(reqs []agent.Request) *round {
	return &round{requests: reqs, answers: make(map[core.Faction]agent.Response, len(reqs))}
}

func (r *round) asked(f core.Faction) bool {
	for _, req := range r.requests {
		if req.Faction == f {
			return true
		}
	}
	return false
}

func (r *round) record(responses []agent.Response) {
	for _, resp := range responses {
		if !r.asked(resp.Faction) {
			continue
		}
		if _, done := r.answers[resp.Faction]; done {
			continue
		}
		r.answers[resp.Faction] = resp
	}
}

func (r *round) done() bool {
	return len(r.answers) == len(r.requests)
}

// outstanding returns the requests still unanswered
func (r *round) outstanding() []agent.Request {
	var out []agent.Request
	for _, req := range r.requests {
		if _, ok := r.answers[req.Faction]; !ok {
			out = append(out, req)
		}
	}
	return out
}

func (r *round) answer(f core.Faction) (agent.Response, bool) {
	resp, ok := r.answers[f]
	return resp, ok
}

// factions returns the asked factions in request order
func (r *round) factions() []core.Faction {
	out := make([]core.Faction, len(r.requests))
	for i, req := range r.requests {
		out[i] = req.Faction
	}
	return out
}
