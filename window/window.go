// Package window is the desktop front end. The game loop draws into a
// render.MemorySurface; the main thread replays the last released display
// list every frame and polls the keyboard.
package window

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/brensch/retrosnake/engine"
	"github.com/brensch/retrosnake/game"
	"github.com/brensch/retrosnake/render"
)

// Controller is the part of engine.Session the window drives.
type Controller interface {
	Start(ctx context.Context) error
	SetDirection(game.Direction)
	Restart()
}

type Config struct {
	Width  int
	Height int
	Title  string
	Cell   int
	FPS    int
}

var keyDirections = []struct {
	key int32
	dir game.Direction
}{
	{rl.KeyUp, game.Up}, {rl.KeyW, game.Up},
	{rl.KeyDown, game.Down}, {rl.KeyS, game.Down},
	{rl.KeyLeft, game.Left}, {rl.KeyA, game.Left},
	{rl.KeyRight, game.Right}, {rl.KeyD, game.Right},
}

// Window tracks score and phase from loop events for the overlay text.
type Window struct {
	cfg     Config
	surface *render.MemorySurface

	mu    sync.Mutex
	score int
	over  bool
}

func New(cfg Config, surface *render.MemorySurface) *Window {
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.Title == "" {
		cfg.Title = "retrosnake"
	}
	return &Window{cfg: cfg, surface: surface}
}

func (w *Window) Observe(e engine.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch e.Kind {
	case engine.EventStarted:
		w.score, w.over = 0, false
	case engine.EventFoodEaten:
		w.score = e.Score
	case engine.EventGameOver:
		w.score, w.over = e.Score, true
	}
}

func (w *Window) status() (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.score, w.over
}

// Run opens the window, starts ctl once the surface has a size, and
// blocks until the window is closed, q is pressed, or ctx is cancelled.
// It must be called from the main goroutine.
func (w *Window) Run(ctx context.Context, ctl Controller) error {
	rl.InitWindow(int32(w.cfg.Width), int32(w.cfg.Height), w.cfg.Title)
	defer rl.CloseWindow()
	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(int32(w.cfg.FPS))

	w.surface.Resize(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()))
	if err := ctl.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	head := headTexture(w.cfg.Cell)
	defer rl.UnloadTexture(head)

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil || rl.IsKeyPressed(rl.KeyQ) {
			break
		}
		if rl.IsWindowResized() {
			w.surface.Resize(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()))
		}

		score, over := w.status()
		for _, k := range keyDirections {
			if rl.IsKeyPressed(k.key) {
				ctl.SetDirection(k.dir)
			}
		}
		if over && (rl.IsKeyPressed(rl.KeyR) || rl.IsKeyPressed(rl.KeyEnter)) {
			ctl.Restart()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		if over {
			drawGameOver(score)
		} else {
			if dl := w.surface.Last(); dl != nil {
				replay(dl, head)
			}
			rl.DrawText(fmt.Sprintf("Score: %d", score), 10, 10, 20, rl.White)
		}
		rl.EndDrawing()
	}
	return nil
}

func replay(dl *render.DisplayList, head rl.Texture2D) {
	for _, op := range dl.Ops {
		switch op.Kind {
		case render.OpClear:
			rl.ClearBackground(rl.Black)
		case render.OpCircle:
			rl.DrawCircle(int32(op.X), int32(op.Y), float32(op.Radius), rl.Color(op.Color))
		case render.OpBitmap:
			rl.DrawTexture(head, int32(op.X), int32(op.Y), rl.White)
		}
	}
}

func drawGameOver(score int) {
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	lines := []string{
		"Game Over",
		fmt.Sprintf("Your score = %d", score),
		"[R] Start Again   [Q] Quit",
	}
	const fontSize = 30
	y := sh/2 - int32(len(lines))*fontSize
	for _, l := range lines {
		tw := rl.MeasureText(l, fontSize)
		rl.DrawText(l, (sw-tw)/2, y, fontSize, rl.Color(render.SnakeColor))
		y += fontSize * 2
	}
}

// headTexture generates the head bitmap, 2*cell square.
func headTexture(cell int) rl.Texture2D {
	size := 2 * cell
	img := rl.GenImageChecked(size, size, max(cell/2, 1), max(cell/2, 1),
		rl.Color(render.SnakeColor), color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF})
	defer rl.UnloadImage(img)
	return rl.LoadTextureFromImage(img)
}
