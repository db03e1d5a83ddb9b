// food.go implements food placement.

package game

import (
	"math/rand"
)

// SpawnFood picks the next food position on a width x height surface.
//
// Grid indices are drawn from [0, (dim-2*cell)/cell), odd indices are
// rounded up to the next even one, and the result is offset by one cell,
// so food always lands within [cell, dim-cell]. Cells under the snake are
// not excluded.
//
// If rng is nil, a deterministic splitmix sequence keyed by salt is used.
func SpawnFood(rng *rand.Rand, width, height, cell int, salt uint64) (Point, error) {
	if cell <= 0 {
		return Point{}, ErrInvalidConfig
	}
	cols := (width - 2*cell) / cell
	rows := (height - 2*cell) / cell
	if cols <= 0 || rows <= 0 {
		return Point{}, ErrDegenerateSurface
	}

	var ix, iy int
	if rng != nil {
		ix = rng.Intn(cols)
		iy = rng.Intn(rows)
	} else {
		ix = int(deterministicU64Fast(salt, 0x5EED) % uint64(cols))
		iy = int(deterministicU64Fast(salt, 0xF00D) % uint64(rows))
	}
	if ix%2 != 0 {
		ix++
	}
	if iy%2 != 0 {
		iy++
	}
	return Point{X: cell*ix + cell, Y: cell*iy + cell}, nil
}

// deterministicU64Fast is a simple deterministic hasher for reproducibility.
func deterministicU64Fast(a, b uint64) uint64 {
	// Variant of splitmix64
	x := a + b
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
