package engine

import (
	"github.com/brensch/retrosnake/game"
)

// EventKind identifies what happened in the loop.
type EventKind uint8

const (
	// EventStarted fires after (re)initialization, before the first tick.
	EventStarted EventKind = iota
	// EventFrame fires after every committed tick, once the frame is drawn.
	EventFrame
	// EventFoodEaten fires when the head was on the food at the start of a tick.
	EventFoodEaten
	// EventDirection fires when a direction request is accepted.
	EventDirection
	// EventGameOver fires once when the loop enters the terminal state.
	EventGameOver
)

var eventKindNames = [...]string{
	EventStarted:   "started",
	EventFrame:     "frame",
	EventFoodEaten: "food_eaten",
	EventDirection: "direction",
	EventGameOver:  "game_over",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is emitted by the loop goroutine to every observer.
type Event struct {
	Kind      EventKind
	GameID    string
	Tick      int
	Score     int
	Direction game.Direction
	// Snapshot is set for started, frame and game over events.
	Snapshot game.Snapshot
}

// Observer receives loop events. Observe is called on the loop goroutine
// and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
