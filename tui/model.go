// Package tui is the terminal front end: a bubbletea program that is both
// the drawing surface and the input source for a game session.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/retrosnake/engine"
	"github.com/brensch/retrosnake/game"
)

// Controller is the part of engine.Session the UI drives.
type Controller interface {
	Start(ctx context.Context) error
	SetDirection(game.Direction)
	Restart()
}

// Rows used by the status line, the help line and the board border.
const chromeRows = 4

type frameMsg struct{ lines []string }

type eventMsg struct{ ev engine.Event }

type startErrMsg struct{ err error }

var (
	statusStyle = lipgloss.NewStyle().Bold(true)
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2).
			Bold(true)
	helpStyle = lipgloss.NewStyle().Faint(true)
)

var keyDirections = map[string]game.Direction{
	"up": game.Up, "w": game.Up, "k": game.Up,
	"down": game.Down, "s": game.Down, "j": game.Down,
	"left": game.Left, "a": game.Left, "h": game.Left,
	"right": game.Right, "d": game.Right, "l": game.Right,
}

// Model is the bubbletea model.
type Model struct {
	ctx     context.Context
	surface *Surface
	session Controller

	started bool
	over    bool
	score   int
	frame   []string
	err     error
}

func NewModel(ctx context.Context, surface *Surface, session Controller) Model {
	return Model{ctx: ctx, surface: surface, session: session}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r", "enter":
			if m.over {
				m.session.Restart()
			}
			return m, nil
		}
		if d, ok := keyDirections[key]; ok && m.started {
			m.session.SetDirection(d)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.surface.Resize((msg.Width-2)/2, msg.Height-chromeRows)
		if m.started {
			return m, nil
		}
		// The first size message plays the role of "surface created".
		m.started = true
		session, ctx := m.session, m.ctx
		return m, func() tea.Msg {
			if err := session.Start(ctx); err != nil {
				return startErrMsg{err: err}
			}
			return nil
		}

	case startErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case frameMsg:
		m.frame = msg.lines
		return m, nil

	case eventMsg:
		switch msg.ev.Kind {
		case engine.EventStarted:
			m.over = false
			m.score = 0
			m.frame = nil
		case engine.EventFoodEaten:
			m.score = msg.ev.Score
		case engine.EventGameOver:
			m.over = true
			m.score = msg.ev.Score
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("cannot start game: %v\n", m.err)
	}
	if !m.started {
		return "waiting for terminal size...\n"
	}

	var b strings.Builder
	b.WriteString(statusStyle.Render(fmt.Sprintf("Score: %d", m.score)))
	b.WriteByte('\n')

	if m.over {
		dialog := dialogStyle.Render(fmt.Sprintf("Game Over\n\nYour score = %d\n\n[r] Start Again   [q] Quit", m.score))
		b.WriteString(dialog)
		b.WriteByte('\n')
		return b.String()
	}

	b.WriteString(boardStyle.Render(strings.Join(m.board(), "\n")))
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("arrows/wasd: steer   q: quit"))
	return b.String()
}

// board returns the last frame, or a blank board before the first tick.
func (m Model) board() []string {
	if m.frame != nil {
		return m.frame
	}
	cols, rows := m.surface.Grid()
	blank := strings.Repeat(emptyCell, cols)
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = blank
	}
	return lines
}

// Err is set when the session failed to start.
func (m Model) Err() error {
	return m.err
}

// Bridge forwards loop events to a running program. It implements
// engine.Observer.
type Bridge struct {
	surface *Surface
}

func NewBridge(s *Surface) *Bridge {
	return &Bridge{surface: s}
}

func (b *Bridge) Observe(e engine.Event) {
	switch e.Kind {
	case engine.EventStarted, engine.EventFoodEaten, engine.EventGameOver:
	default:
		return
	}
	b.surface.mu.Lock()
	p := b.surface.program
	b.surface.mu.Unlock()
	if p != nil {
		p.Send(eventMsg{ev: e})
	}
}
