// Package engine runs the retrosnake game loop.
//
// A Session owns one game state and a single goroutine that serializes
// ticks, direction changes and restart requests. That goroutine is the
// only writer of the state; the mutex exists so Snapshot can copy it from
// elsewhere.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/retrosnake/game"
	"github.com/brensch/retrosnake/render"
	"github.com/brensch/retrosnake/rules"
)

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrNotStarted     = errors.New("session not started")
)

// Ticker is the periodic source that drives the loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type requestKind uint8

const (
	reqDirection requestKind = iota
	reqRestart
)

type request struct {
	kind requestKind
	dir  game.Direction
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithObserver registers observers, called in registration order.
func WithObserver(obs ...Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, obs...) }
}

// WithRand overrides the food RNG. Nil selects deterministic placement.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng; s.rngSet = true }
}

// WithTicker overrides how the periodic tick source is created.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(s *Session) { s.newTicker = newTicker }
}

// Session is one running game bound to a surface.
type Session struct {
	cfg       game.Config
	surface   render.Surface
	log       *slog.Logger
	observers []Observer
	newTicker func(time.Duration) Ticker
	rng       *rand.Rand
	rngSet    bool

	inputs chan request
	done   chan struct{}
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	state   *game.GameState
	bounds  game.Bounds
	gameID  string
}

// New validates cfg and builds a session drawing to surface.
func New(cfg game.Config, surface render.Surface, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if surface == nil {
		return nil, fmt.Errorf("%w: nil surface", game.ErrInvalidConfig)
	}
	s := &Session{
		cfg:       cfg,
		surface:   surface,
		log:       slog.Default(),
		newTicker: NewTimeTicker,
		inputs:    make(chan request, 16),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.rngSet {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
	s.log = s.log.With("component", "engine")
	return s, nil
}

// Start initializes the game against the current surface size and starts
// the loop. It fails fast on degenerate geometry.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if err := s.resetLocked(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("start session: %w", err)
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	started := s.eventLocked(EventStarted)
	s.mu.Unlock()

	s.log.Info("session started",
		"game_id", started.GameID,
		"width", s.bounds.Width,
		"height", s.bounds.Height,
		"period", s.cfg.TickPeriod())
	s.emit(started)

	go s.run(ctx)
	return nil
}

// SetDirection queues a direction request. Reversals are dropped by the loop.
func (s *Session) SetDirection(d game.Direction) {
	s.send(request{kind: reqDirection, dir: d})
}

// Restart queues a reinitialization. It only takes effect after game over.
func (s *Session) Restart() {
	s.send(request{kind: reqRestart})
}

func (s *Session) send(r request) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	select {
	case s.inputs <- r:
	case <-s.done:
	}
}

// Stop cancels the loop and waits for it to exit. No tick or draw happens
// after Stop returns. Safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	started, cancel := s.started, s.cancel
	s.mu.Unlock()
	if !started {
		return
	}
	cancel()
	<-s.done
}

// Done is closed when the loop exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return game.Snapshot{}
	}
	return s.state.Snapshot(s.bounds)
}

// GameID identifies the current game; it changes on every restart.
func (s *Session) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	period := s.cfg.TickPeriod()
	ticker := s.newTicker(period)
	tickC := ticker.C()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("session stopped", "reason", ctx.Err())
			return

		case req := <-s.inputs:
			switch req.kind {
			case reqDirection:
				s.handleDirection(req.dir)
			case reqRestart:
				if !s.handleRestart() {
					continue
				}
				if ticker == nil {
					ticker = s.newTicker(period)
					tickC = ticker.C()
				}
			}

		case <-tickC:
			terminal, err := s.tick()
			if err != nil {
				s.log.Error("tick failed", "error", err)
				return
			}
			if terminal {
				ticker.Stop()
				ticker, tickC = nil, nil
			}
		}
	}
}

func (s *Session) handleDirection(d game.Direction) {
	s.mu.Lock()
	accepted := rules.SetDirection(s.state, d)
	var ev Event
	if accepted {
		ev = s.eventLocked(EventDirection)
	}
	s.mu.Unlock()
	if accepted {
		s.emit(ev)
	}
}

func (s *Session) handleRestart() bool {
	s.mu.Lock()
	if s.state.Phase != game.Terminal {
		s.mu.Unlock()
		s.log.Debug("restart ignored while running")
		return false
	}
	if err := s.resetLocked(); err != nil {
		s.mu.Unlock()
		s.log.Warn("restart failed", "error", err)
		return false
	}
	ev := s.eventLocked(EventStarted)
	s.mu.Unlock()

	s.log.Info("session restarted", "game_id", ev.GameID)
	s.emit(ev)
	return true
}

// tick runs one step and reports whether the game is now over.
func (s *Session) tick() (bool, error) {
	s.mu.Lock()
	w, h := s.surface.Size()
	s.bounds = game.Bounds{Width: w, Height: h}
	out, err := rules.Tick(s.state, s.bounds, s.rng)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	var events []Event
	if out.Ate {
		events = append(events, s.eventLocked(EventFoodEaten))
	}
	final := s.eventLocked(EventGameOver)
	if !out.Terminal {
		final.Kind = EventFrame
	}
	s.mu.Unlock()

	for _, ev := range events {
		s.emit(ev)
	}

	if out.Terminal {
		s.log.Info("game over", "game_id", final.GameID, "score", final.Score, "tick", final.Tick)
		s.emit(final)
		return true, nil
	}

	if err := render.Draw(s.surface, final.Snapshot, s.cfg.CellSize); err != nil {
		s.log.Warn("draw failed", "error", err, "tick", final.Tick)
	}
	s.emit(final)
	return false, nil
}

func (s *Session) resetLocked() error {
	w, h := s.surface.Size()
	bounds := game.Bounds{Width: w, Height: h}
	state, err := rules.Reset(s.cfg, bounds, s.rng)
	if err != nil {
		return err
	}
	s.state = state
	s.bounds = bounds
	s.gameID = uuid.NewString()
	return nil
}

func (s *Session) eventLocked(kind EventKind) Event {
	return Event{
		Kind:      kind,
		GameID:    s.gameID,
		Tick:      s.state.Tick,
		Score:     s.state.Score,
		Direction: s.state.Direction,
		Snapshot:  s.state.Snapshot(s.bounds),
	}
}

func (s *Session) emit(ev Event) {
	for _, o := range s.observers {
		o.Observe(ev)
	}
}
