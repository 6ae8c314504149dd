package events

import (
	"time"
)

// Event is anything published on the game bus. Every event belongs to one
// game and is stamped with the turn it happened on; events published
// before the first turn carry turn 0.
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
	Turn() int
}

// Envelope carries the fields shared by every bus event
type Envelope struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
	GameTurn  int       `json:"turn"`
}

func (e Envelope) Type() string         { return e.EventType }
func (e Envelope) Timestamp() time.Time { return e.Time }
func (e Envelope) GameID() string       { return e.Game }
func (e Envelope) Turn() int            { return e.GameTurn }

func envelope(eventType, gameID string, turn int) Envelope {
	return Envelope{EventType: eventType, Time: time.Now(), Game: gameID, GameTurn: turn}
}

// EventHandler is a function that processes events
type EventHandler func(Event)

// Subscriber receives the events it is interested in
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// Publisher is the write side of the bus. The state machine only needs this.
type Publisher interface {
	Publish(Event)
}

// Bus is what the engine needs from an event bus
type Bus interface {
	Publisher
	Subscribe(Subscriber)
	// Unsubscribe removes a subscriber or a function handler by id
	Unsubscribe(id string)
	SubscribeFunc(eventType string, handler EventHandler) string
}
