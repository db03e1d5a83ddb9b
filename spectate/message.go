// Package spectate publishes a running game as a read-only websocket feed
// and provides the client used to watch it.
package spectate

import (
	"encoding/json"

	"github.com/brensch/retrosnake/engine"
	"github.com/brensch/retrosnake/game"
)

// Message types on the wire.
const (
	TypeStarted  = "started"
	TypeFrame    = "frame"
	TypeGameOver = "game_over"
)

// Envelope is the outer JSON object of every feed message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame is the payload of every message type.
type Frame struct {
	GameID    string  `json:"game_id"`
	Tick      int     `json:"tick"`
	Score     int     `json:"score"`
	Phase     string  `json:"phase"`
	Direction string  `json:"direction"`
	Cell      int     `json:"cell"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Snake     []Coord `json:"snake"`
	Food      Coord   `json:"food"`
}

// Message is a decoded feed message.
type Message struct {
	Type  string
	Frame Frame
}

func messageType(k engine.EventKind) (string, bool) {
	switch k {
	case engine.EventStarted:
		return TypeStarted, true
	case engine.EventFrame:
		return TypeFrame, true
	case engine.EventGameOver:
		return TypeGameOver, true
	}
	return "", false
}

// NewFrame converts a loop event into its wire payload.
func NewFrame(e engine.Event, cell int) Frame {
	snap := e.Snapshot
	f := Frame{
		GameID:    e.GameID,
		Tick:      e.Tick,
		Score:     e.Score,
		Phase:     snap.Phase.String(),
		Direction: e.Direction.String(),
		Cell:      cell,
		Width:     snap.Bounds.Width,
		Height:    snap.Bounds.Height,
		Snake:     make([]Coord, len(snap.Snake)),
		Food:      coord(snap.Food),
	}
	for i, p := range snap.Snake {
		f.Snake[i] = coord(p)
	}
	return f
}

func coord(p game.Point) Coord {
	return Coord{X: p.X, Y: p.Y}
}

func encode(typ string, f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Data: data})
}

func decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{}, err
	}
	msg := Message{Type: env.Type}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &msg.Frame); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}
