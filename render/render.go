// Package render defines the presentation contract the game loop draws
// through, and paints snapshots onto it.
package render

import (
	"image/color"

	"github.com/brensch/retrosnake/game"
)

// Surface is a drawable area. Size is queried on demand; a canvas is
// acquired, drawn on and released within a single tick.
type Surface interface {
	Size() (width, height int)
	Acquire() (Canvas, error)
	Release(Canvas) error
}

// Canvas receives draw primitives between Acquire and Release.
type Canvas interface {
	Clear()
	FillCircle(x, y, radius int, c color.RGBA)
	// DrawBitmap blits the head bitmap with its top-left corner at (x, y).
	DrawBitmap(x, y int)
}

var (
	SnakeColor = color.RGBA{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}
	FoodColor  = SnakeColor
)

// Paint draws a frame: head circle and bitmap, the food, then the body.
// Every circle has radius cell.
func Paint(c Canvas, snap game.Snapshot, cell int) {
	c.Clear()
	if len(snap.Snake) == 0 {
		return
	}
	head := snap.Snake[0]
	c.FillCircle(head.X, head.Y, cell, SnakeColor)
	c.DrawBitmap(head.X-cell, head.Y-cell)
	c.FillCircle(snap.Food.X, snap.Food.Y, cell, FoodColor)
	for _, p := range snap.Snake[1:] {
		c.FillCircle(p.X, p.Y, cell, SnakeColor)
	}
}

// Draw acquires a canvas from s, paints snap and releases it. The canvas
// is released even if painting panics.
func Draw(s Surface, snap game.Snapshot, cell int) (err error) {
	c, err := s.Acquire()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.Release(c); err == nil {
			err = rerr
		}
	}()
	Paint(c, snap, cell)
	return nil
}
