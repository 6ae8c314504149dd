package subscribers

import (
	"sync"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
)

// Recorder keeps every PhaseEvent published on the bus, in order
type Recorder struct {
	id     string
	mu     sync.Mutex
	events []events.PhaseEvent
}

// NewRecorder creates a recorder subscriber
func NewRecorder(id string) *Recorder {
	return &Recorder{id: id}
}

// ID returns the subscriber's unique identifier
func (r *Recorder) ID() string {
	return r.id
}

// InterestedIn only accepts phase events
func (r *Recorder) InterestedIn(eventType string) bool {
	return eventType == events.TypePhaseEvent
}

// HandleEvent stores the wrapped PhaseEvent
func (r *Recorder) HandleEvent(event events.Event) {
	pe, ok := event.(*events.PhaseEventPublished)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, pe.Event)
}

// Events returns a copy of everything recorded
func (r *Recorder) Events() []events.PhaseEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.PhaseEvent, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type
func (r *Recorder) OfType(t events.PhaseEventType) []events.PhaseEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.PhaseEvent
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
