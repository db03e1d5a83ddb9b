// Package rules implements the retrosnake state transitions: direction
// changes, the terminal check, and the per-tick move.
package rules

import (
	"fmt"
	"math/rand"

	"github.com/brensch/retrosnake/game"
)

// StepCells is how far the head moves per tick, in cells. Segments are
// drawn with radius = cell, so a two-cell step keeps them from overlapping.
const StepCells = 2

// Outcome describes what a tick did.
type Outcome struct {
	Ate      bool
	Terminal bool
	// Candidate is the head position the tick tried to move to.
	Candidate game.Point
}

// SetDirection applies a direction request. Requests for the reverse of
// the current heading, and requests after game over, are ignored.
// Returns true if the request was accepted.
func SetDirection(state *game.GameState, requested game.Direction) bool {
	if state.Phase == game.Terminal {
		return false
	}
	if requested == state.Direction.Opposite() {
		return false
	}
	state.Direction = requested
	return true
}

// IsTerminal reports whether a head at (x, y) ends the game: outside
// [0,W) x [0,H), or on any non-head segment.
func IsTerminal(state *game.GameState, bounds game.Bounds, x, y int) bool {
	if !bounds.Contains(x, y) {
		return true
	}
	for i := 1; i < len(state.Snake); i++ {
		if state.Snake[i].X == x && state.Snake[i].Y == y {
			return true
		}
	}
	return false
}

// Tick advances state by one step in place.
//
// Eating is checked against the head before it moves: the score goes up,
// a placeholder segment is appended off-surface at (-cell,-cell) and new
// food is spawned. The head then moves StepCells cells; if that lands on a
// wall or the body the phase becomes Terminal and the head is left where
// it was. Otherwise the body follows the leader.
//
// rng may be nil for deterministic food placement.
func Tick(state *game.GameState, bounds game.Bounds, rng *rand.Rand) (Outcome, error) {
	var out Outcome
	if state.Phase == game.Terminal {
		out.Terminal = true
		return out, nil
	}
	if len(state.Snake) == 0 {
		return out, fmt.Errorf("tick: empty snake")
	}

	cell := state.Cell
	head := state.Head()

	if head == state.Food {
		food, err := game.SpawnFood(rng, bounds.Width, bounds.Height, cell, uint64(state.Tick))
		if err != nil {
			return out, fmt.Errorf("spawn food: %w", err)
		}
		state.Score++
		state.Snake = append(state.Snake, game.Point{X: -cell, Y: -cell})
		state.Food = food
		out.Ate = true
	}

	dx, dy := state.Direction.Delta()
	candidate := game.Point{X: head.X + dx*StepCells*cell, Y: head.Y + dy*StepCells*cell}
	out.Candidate = candidate

	if IsTerminal(state, bounds, candidate.X, candidate.Y) {
		state.Phase = game.Terminal
		out.Terminal = true
		return out, nil
	}

	prev := head
	state.Snake[0] = candidate
	for i := 1; i < len(state.Snake); i++ {
		prev, state.Snake[i] = state.Snake[i], prev
	}
	state.Tick++
	return out, nil
}

// Reset builds a fresh running state for cfg on bounds.
func Reset(cfg game.Config, bounds game.Bounds, rng *rand.Rand) (*game.GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := bounds.Check(cfg.CellSize); err != nil {
		return nil, err
	}
	state := game.NewState(cfg)
	food, err := game.SpawnFood(rng, bounds.Width, bounds.Height, cfg.CellSize, 0)
	if err != nil {
		return nil, fmt.Errorf("spawn food: %w", err)
	}
	state.Food = food
	return state, nil
}
