// Package game defines the core state types for retrosnake.
//
// Coordinates are surface pixels: (0,0) is top-left, X grows to the right
// and Y grows downwards. Every coordinate is a multiple of the configured
// cell size.
package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidConfig is wrapped by every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrDegenerateSurface is returned when the surface is too small to place food.
	ErrDegenerateSurface = errors.New("degenerate surface")
)

// Point is a surface coordinate.
type Point struct {
	X int
	Y int
}

// Direction is the heading of the snake head.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{Up: "up", Down: "down", Left: "left", Right: "right"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Delta returns the unit step for d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

// ParseDirection accepts the lower-case names returned by String.
func ParseDirection(s string) (Direction, error) {
	for i, n := range directionNames {
		if n == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Phase is the game loop state.
type Phase uint8

const (
	Running Phase = iota
	Terminal
)

func (p Phase) String() string {
	if p == Terminal {
		return "terminal"
	}
	return "running"
}

// Config holds the fixed game parameters.
type Config struct {
	CellSize   int   // Draw radius; every coordinate is a multiple of it.
	TailLength int   // Segments at (re)initialization.
	Speed      int   // 1..999, tick period is (1000-Speed) ms.
	Seed       int64 // 0 means seed from the clock.
}

// DefaultConfig returns 28px cells, a 3 segment tail and speed 800 (200ms ticks).
func DefaultConfig() Config {
	return Config{CellSize: 28, TailLength: 3, Speed: 800}
}

// Validate reports malformed configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell size %d must be positive", ErrInvalidConfig, c.CellSize)
	}
	if c.TailLength < 1 {
		return fmt.Errorf("%w: tail length %d must be at least 1", ErrInvalidConfig, c.TailLength)
	}
	if c.Speed < 1 || c.Speed > 999 {
		return fmt.Errorf("%w: speed %d outside 1..999", ErrInvalidConfig, c.Speed)
	}
	return nil
}

// TickPeriod is the wall-clock time between ticks.
func (c Config) TickPeriod() time.Duration {
	return time.Duration(1000-c.Speed) * time.Millisecond
}

// Bounds is the playable surface size in pixels.
type Bounds struct {
	Width  int
	Height int
}

// Check validates that food can be placed on b with the given cell size.
func (b Bounds) Check(cell int) error {
	if b.Width < 3*cell || b.Height < 3*cell {
		return fmt.Errorf("%w: %dx%d is smaller than 3 cells of %dpx", ErrDegenerateSurface, b.Width, b.Height, cell)
	}
	return nil
}

// Contains reports whether p lies in [0,Width) x [0,Height).
func (b Bounds) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// GameState is everything the loop mutates. Snake[0] is the head.
type GameState struct {
	Cell      int
	Snake     []Point
	Food      Point
	Direction Direction
	Score     int
	Phase     Phase
	Tick      int
}

// NewState builds the initial snake: head at (cell*tail, cell), each
// following segment two cells further left.
func NewState(cfg Config) *GameState {
	s := &GameState{
		Cell:      cfg.CellSize,
		Snake:     make([]Point, 0, cfg.TailLength),
		Direction: Right,
		Phase:     Running,
	}
	x := cfg.CellSize * cfg.TailLength
	for i := 0; i < cfg.TailLength; i++ {
		s.Snake = append(s.Snake, Point{X: x, Y: cfg.CellSize})
		x -= cfg.CellSize * 2
	}
	return s
}

// Head returns the head segment.
func (s *GameState) Head() Point {
	return s.Snake[0]
}

// Clone performs a deep copy of the state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	if len(s.Snake) > 0 {
		out.Snake = make([]Point, len(s.Snake))
		copy(out.Snake, s.Snake)
	}
	return &out
}

// Snapshot is an immutable view handed to renderers and observers.
type Snapshot struct {
	Bounds    Bounds
	Snake     []Point
	Food      Point
	Direction Direction
	Score     int
	Phase     Phase
	Tick      int
}

// Snapshot copies s together with the bounds it was evaluated against.
func (s *GameState) Snapshot(b Bounds) Snapshot {
	c := s.Clone()
	return Snapshot{
		Bounds:    b,
		Snake:     c.Snake,
		Food:      c.Food,
		Direction: c.Direction,
		Score:     c.Score,
		Phase:     c.Phase,
		Tick:      c.Tick,
	}
}
