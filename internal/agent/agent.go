package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

var (
	ErrNoAgent         = errors.New("no agent registered for faction")
	ErrScriptExhausted = errors.New("scripted agent has no queued response")
	ErrFactionMismatch = errors.New("response faction does not match request")
)

// Agent answers decision requests for one or more factions
type Agent interface {
	// Respond returns the decision for req. Implementations must honour ctx
	// cancellation when they block.
	Respond(ctx context.Context, req Request) (Response, error)
}

// Func adapts a plain function to the Agent interface
type Func func(ctx context.Context, req Request) (Response, error)

// Respond implements Agent
func (f Func) Respond(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Table routes each request to the agent seated for the requesting faction
type Table map[core.Faction]Agent

// Respond implements Agent
func (t Table) Respond(ctx context.Context, req Request) (Response, error) {
	a, ok := t[req.Faction]
	if !ok || a == nil {
		return Response{}, fmt.Errorf("%w: %s", ErrNoAgent, req.Faction)
	}
	return a.Respond(ctx, req)
}

// PassAgent passes on every decision
type PassAgent struct{}

// Respond implements Agent
func (PassAgent) Respond(_ context.Context, req Request) (Response, error) {
	return Pass(req.Faction), nil
}

// ScriptedAgent replays queued responses per request type and records every
// request it was shown. Request types with an empty queue fall back to the
// Fallback agent, or fail with ErrScriptExhausted when there is none.
type ScriptedAgent struct {
	mu       sync.Mutex
	queues   map[RequestType][]Response
	requests []Request
	Fallback Agent
}

// NewScriptedAgent creates a ScriptedAgent that passes when its script runs out
func NewScriptedAgent() *ScriptedAgent {
	return &ScriptedAgent{queues: make(map[RequestType][]Response), Fallback: PassAgent{}}
}

// Queue appends responses for the given request type
func (s *ScriptedAgent) Queue(t RequestType, responses ...Response) *ScriptedAgent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[t] = append(s.queues[t], responses...)
	return s
}

// Respond implements Agent
func (s *ScriptedAgent) Respond(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	queue := s.queues[req.Type]
	if len(queue) > 0 {
		resp := queue[0]
		s.queues[req.Type] = queue[1:]
		s.mu.Unlock()
		if resp.Faction == core.NoFaction {
			resp.Faction = req.Faction
		}
		return resp, nil
	}
	fallback := s.Fallback
	s.mu.Unlock()

	if fallback == nil {
		return Response{}, fmt.Errorf("%w: %s", ErrScriptExhausted, req.Type)
	}
	return fallback.Respond(ctx, req)
}

// Requests returns a copy of every request seen so far
func (s *ScriptedAgent) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsOfType returns the recorded requests of one type
func (s *ScriptedAgent) RequestsOfType(t RequestType) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Remaining reports how many queued responses of the type are left
func (s *ScriptedAgent) Remaining(t RequestType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[t])
}
