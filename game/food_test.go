package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSpawnFood_EvenIndexWithinMargin(t *testing.T) {
	const cell = 28
	rng := rand.New(rand.NewSource(1))
	for _, size := range [][2]int{{560, 560}, {1080, 1920}, {3 * cell, 3 * cell}, {100, 700}} {
		w, h := size[0], size[1]
		for i := 0; i < 2000; i++ {
			p, err := SpawnFood(rng, w, h, cell, 0)
			if err != nil {
				t.Fatalf("%dx%d: %v", w, h, err)
			}
			if p.X%cell != 0 || p.Y%cell != 0 {
				t.Fatalf("%dx%d: %v not cell aligned", w, h, p)
			}
			if ix, iy := p.X/cell-1, p.Y/cell-1; ix%2 != 0 || iy%2 != 0 {
				t.Fatalf("%dx%d: %v has odd grid index (%d,%d)", w, h, p, ix, iy)
			}
			if p.X < cell || p.X > w-cell || p.Y < cell || p.Y > h-cell {
				t.Fatalf("%dx%d: %v outside [cell, dim-cell]", w, h, p)
			}
		}
	}
}

func TestSpawnFood_NilRNGIsDeterministic(t *testing.T) {
	a, err := SpawnFood(nil, 560, 560, 28, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := SpawnFood(nil, 560, 560, 28, 42)
	if a != b {
		t.Fatalf("same salt produced %v and %v", a, b)
	}
}

func TestSpawnFood_Degenerate(t *testing.T) {
	if _, err := SpawnFood(nil, 56, 560, 28, 0); !errors.Is(err, ErrDegenerateSurface) {
		t.Fatalf("err=%v want ErrDegenerateSurface", err)
	}
	if _, err := SpawnFood(nil, 560, 560, 0, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err=%v want ErrInvalidConfig", err)
	}
}
