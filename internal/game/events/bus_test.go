package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	received := false
	var receivedEvent Event

	bus.SubscribeFunc(TypeGameStarted, func(e Event) {
		received = true
		receivedEvent = e
	})

	bus.Publish(NewGameStartedEvent("test-game", []string{"atreides", "harkonnen"}, 42))

	assert.True(t, received, "Event handler should have been called")
	assert.NotNil(t, receivedEvent, "Event should have been received")
	assert.Equal(t, TypeGameStarted, receivedEvent.Type())
	assert.Equal(t, "test-game", receivedEvent.GameID())
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	handler1Called := false
	handler2Called := false

	bus.SubscribeFunc(TypeTurnStarted, func(e Event) {
		handler1Called = true
	})
	bus.SubscribeFunc(TypeTurnStarted, func(e Event) {
		handler2Called = true
	})

	bus.Publish(NewTurnStartedEvent("test-game", 1))

	assert.True(t, handler1Called, "Handler 1 should have been called")
	assert.True(t, handler2Called, "Handler 2 should have been called")
	assert.Equal(t, 2, bus.GetFuncHandlerCount(TypeTurnStarted))
}

func TestEventBusUnsubscribeFunc(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	id := bus.SubscribeFunc(TypeTurnStarted, func(e Event) { calls++ })

	bus.Publish(NewTurnStartedEvent("g", 1))
	bus.Unsubscribe(id)
	bus.Publish(NewTurnStartedEvent("g", 2))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.GetFuncHandlerCount(TypeTurnStarted))
}

func TestEventBusRecoversFromPanics(t *testing.T) {
	bus := NewEventBus()
	after := false
	bus.SubscribeFunc(TypePhaseEvent, func(e Event) { panic("boom") })
	bus.SubscribeFunc(TypePhaseEvent, func(e Event) { after = true })

	assert.NotPanics(t, func() {
		bus.Publish(NewPhaseEventPublished("g", 1, "BATTLE", PhaseEvent{Type: EventLeaderKilled}))
	})
	assert.True(t, after)
}

// TestSubscriber is a test implementation of Subscriber
type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string {
	return ts.id
}

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus()

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypeGameStarted: true,
			TypeGameEnded:   true,
		},
	}
	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.GetSubscriberCount())

	bus.Publish(NewGameStartedEvent("test-game", nil, 1))
	bus.Publish(NewTurnStartedEvent("test-game", 1))
	bus.Publish(NewGameEndedEvent("test-game", []string{"fremen"}, true, time.Minute, 10, 400))

	// Only GameStarted and GameEnded are of interest
	assert.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypeGameStarted, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypeGameEnded, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	bus.Publish(NewGameStartedEvent("test-game", nil, 1))
	assert.Len(t, subscriber.receivedEvents, 2)
}

func TestEventsCarryTurn(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want int
	}{
		{"game started", NewGameStartedEvent("g", nil, 1), 0},
		{"turn started", NewTurnStartedEvent("g", 4), 4},
		{"transition", NewStateTransitionEvent("g", "STORM", "SPICE_BLOW", 2, "STORM complete"), 2},
		{"phase event", NewPhaseEventPublished("g", 3, "BATTLE", PhaseEvent{Type: EventLeaderKilled}), 3},
		{"decision", NewDecisionRequestedEvent("g", 5, "BIDDING", "fremen", "BID", false), 5},
		{"game ended", NewGameEndedEvent("g", nil, false, time.Second, 7, 90), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.Turn())
			assert.Equal(t, "g", tt.ev.GameID())
		})
	}
}

func TestNewPhaseEvent(t *testing.T) {
	ev := NewPhaseEvent(EventSpiceCollected, map[string]interface{}{"amount": 6}, "%s collected %d spice", "fremen", 6)
	assert.Equal(t, EventSpiceCollected, ev.Type)
	assert.Equal(t, "fremen collected 6 spice", ev.Message)
	assert.Equal(t, 6, ev.Data["amount"])
}
