package tui

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/retrosnake/render"
)

const (
	emptyCell = "  "
	fillCell  = "██"
	headCell  = "◉◉"
)

// Surface maps the pixel surface onto terminal cells. One board cell is
// 2*cell pixels square and is printed as two characters.
type Surface struct {
	cell int

	mu       sync.Mutex
	cols     int
	rows     int
	acquired bool
	last     []string
	program  *tea.Program
}

// NewSurface returns a surface with no size until Resize is called.
func NewSurface(cell int) *Surface {
	return &Surface{cell: cell}
}

// SetProgram makes Release deliver frames to p.
func (s *Surface) SetProgram(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

// Resize sets the board size in terminal cells.
func (s *Surface) Resize(cols, rows int) {
	s.mu.Lock()
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	s.mu.Unlock()
}

// Grid returns the board size in terminal cells.
func (s *Surface) Grid() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := 2 * s.cell
	return s.cols * step, s.rows * step
}

func (s *Surface) Acquire() (render.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return nil, render.ErrSurfaceBusy
	}
	s.acquired = true
	return newGrid(s.cols, s.rows, s.cell), nil
}

func (s *Surface) Release(c render.Canvas) error {
	g, ok := c.(*grid)
	if !ok {
		return fmt.Errorf("tui: foreign canvas %T", c)
	}
	lines := g.lines()

	s.mu.Lock()
	if !s.acquired {
		s.mu.Unlock()
		return render.ErrNotAcquired
	}
	s.acquired = false
	s.last = lines
	p := s.program
	s.mu.Unlock()

	if p != nil {
		p.Send(frameMsg{lines: lines})
	}
	return nil
}

// Last returns the most recently released frame.
func (s *Surface) Last() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

type gridCell struct {
	glyph string
	color color.RGBA
}

// grid is the canvas handed out by Surface.
type grid struct {
	cols, rows int
	step       int
	cells      []gridCell
}

func newGrid(cols, rows, cell int) *grid {
	g := &grid{cols: cols, rows: rows, step: 2 * cell, cells: make([]gridCell, cols*rows)}
	g.Clear()
	return g
}

func (g *grid) at(x, y int) *gridCell {
	if x < 0 || y < 0 {
		return nil
	}
	cx, cy := x/g.step, y/g.step
	if cx >= g.cols || cy >= g.rows {
		return nil
	}
	return &g.cells[cy*g.cols+cx]
}

func (g *grid) Clear() {
	for i := range g.cells {
		g.cells[i] = gridCell{glyph: emptyCell}
	}
}

func (g *grid) FillCircle(x, y, _ int, c color.RGBA) {
	if cell := g.at(x, y); cell != nil && cell.glyph != headCell {
		*cell = gridCell{glyph: fillCell, color: c}
	}
}

// DrawBitmap receives the top-left corner of the head bitmap, which is
// one cell up and left of the head centre.
func (g *grid) DrawBitmap(x, y int) {
	half := g.step / 2
	if cell := g.at(x+half, y+half); cell != nil {
		*cell = gridCell{glyph: headCell, color: render.SnakeColor}
	}
}

func (g *grid) lines() []string {
	out := make([]string, g.rows)
	var sb strings.Builder
	for y := 0; y < g.rows; y++ {
		sb.Reset()
		for x := 0; x < g.cols; x++ {
			c := g.cells[y*g.cols+x]
			if c.glyph == emptyCell {
				sb.WriteString(c.glyph)
				continue
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(hexColor(c.color)).Render(c.glyph))
		}
		out[y] = sb.String()
	}
	return out
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}
