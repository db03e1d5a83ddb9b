package game

import (
	"errors"
	"testing"
	"time"
)

func TestNewState_DefaultSnake(t *testing.T) {
	s := NewState(DefaultConfig())

	want := []Point{{X: 84, Y: 28}, {X: 28, Y: 28}, {X: -28, Y: 28}}
	if len(s.Snake) != len(want) {
		t.Fatalf("snake len=%d want=%d", len(s.Snake), len(want))
	}
	for i := range want {
		if s.Snake[i] != want[i] {
			t.Fatalf("snake[%d]=%v want=%v", i, s.Snake[i], want[i])
		}
	}
	if s.Direction != Right {
		t.Fatalf("direction=%s want=right", s.Direction)
	}
	if s.Score != 0 || s.Phase != Running || s.Tick != 0 {
		t.Fatalf("score=%d phase=%s tick=%d want 0/running/0", s.Score, s.Phase, s.Tick)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"zero cell", Config{CellSize: 0, TailLength: 3, Speed: 800}, false},
		{"negative cell", Config{CellSize: -4, TailLength: 3, Speed: 800}, false},
		{"no tail", Config{CellSize: 28, TailLength: 0, Speed: 800}, false},
		{"speed too low", Config{CellSize: 28, TailLength: 3, Speed: 0}, false},
		{"speed too high", Config{CellSize: 28, TailLength: 3, Speed: 1000}, false},
		{"slowest", Config{CellSize: 28, TailLength: 3, Speed: 1}, true},
		{"fastest", Config{CellSize: 28, TailLength: 3, Speed: 999}, true},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: err=%v want ErrInvalidConfig", tc.name, err)
		}
	}
}

func TestConfigTickPeriod(t *testing.T) {
	if got := DefaultConfig().TickPeriod(); got != 200*time.Millisecond {
		t.Fatalf("period=%s want=200ms", got)
	}
	if got := (Config{Speed: 1}).TickPeriod(); got != 999*time.Millisecond {
		t.Fatalf("period=%s want=999ms", got)
	}
}

func TestBoundsCheck(t *testing.T) {
	if err := (Bounds{Width: 560, Height: 560}).Check(28); err != nil {
		t.Fatalf("560x560: %v", err)
	}
	if err := (Bounds{Width: 83, Height: 560}).Check(28); !errors.Is(err, ErrDegenerateSurface) {
		t.Fatalf("83x560: err=%v want ErrDegenerateSurface", err)
	}
}

func TestDirectionOpposite(t *testing.T) {
	pairs := map[Direction]Direction{Up: Down, Down: Up, Left: Right, Right: Left}
	for d, want := range pairs {
		if got := d.Opposite(); got != want {
			t.Fatalf("%s.Opposite()=%s want=%s", d, got, want)
		}
		if got := d.Opposite().Opposite(); got != d {
			t.Fatalf("%s double opposite=%s", d, got)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{Up, Down, Left, Right} {
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Fatalf("ParseDirection(%q)=%s,%v", d.String(), got, err)
		}
	}
	if _, err := ParseDirection("top"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewState(DefaultConfig())
	c := s.Clone()
	c.Snake[0].X = 999
	c.Score = 7
	if s.Snake[0].X == 999 || s.Score == 7 {
		t.Fatalf("clone shares memory with source")
	}
}
