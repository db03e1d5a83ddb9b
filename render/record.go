package render

import (
	"image/color"
	"sync"
)

// OpKind identifies a recorded draw primitive.
type OpKind uint8

const (
	OpClear OpKind = iota
	OpCircle
	OpBitmap
)

// Op is one recorded draw call.
type Op struct {
	Kind   OpKind
	X, Y   int
	Radius int
	Color  color.RGBA
}

// DisplayList is a Canvas that records draw calls for later replay.
type DisplayList struct {
	Ops []Op
}

func (d *DisplayList) Clear()              { d.Ops = append(d.Ops[:0], Op{Kind: OpClear}) }
func (d *DisplayList) DrawBitmap(x, y int) { d.Ops = append(d.Ops, Op{Kind: OpBitmap, X: x, Y: y}) }

func (d *DisplayList) FillCircle(x, y, radius int, c color.RGBA) {
	d.Ops = append(d.Ops, Op{Kind: OpCircle, X: x, Y: y, Radius: radius, Color: c})
}

// Circles returns the recorded circles in draw order.
func (d *DisplayList) Circles() []Op {
	var out []Op
	for _, op := range d.Ops {
		if op.Kind == OpCircle {
			out = append(out, op)
		}
	}
	return out
}

// MemorySurface is a fixed-size Surface that keeps the last released
// frame. It is used by headless runs and tests.
type MemorySurface struct {
	mu       sync.Mutex
	width    int
	height   int
	acquired bool
	last     *DisplayList
	frames   int
}

func NewMemorySurface(width, height int) *MemorySurface {
	return &MemorySurface{width: width, height: height}
}

func (m *MemorySurface) Size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// Resize changes the size reported to the next tick.
func (m *MemorySurface) Resize(width, height int) {
	m.mu.Lock()
	m.width, m.height = width, height
	m.mu.Unlock()
}

func (m *MemorySurface) Acquire() (Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquired {
		return nil, ErrSurfaceBusy
	}
	m.acquired = true
	return &DisplayList{}, nil
}

func (m *MemorySurface) Release(c Canvas) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.acquired {
		return ErrNotAcquired
	}
	m.acquired = false
	if dl, ok := c.(*DisplayList); ok {
		m.last = dl
	}
	m.frames++
	return nil
}

// Frames is the number of released canvases.
func (m *MemorySurface) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Last returns the most recently released frame, or nil.
func (m *MemorySurface) Last() *DisplayList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
