package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/retrosnake/audio"
	"github.com/brensch/retrosnake/engine"
	"github.com/brensch/retrosnake/game"
	"github.com/brensch/retrosnake/logging"
	"github.com/brensch/retrosnake/record"
	"github.com/brensch/retrosnake/render"
	"github.com/brensch/retrosnake/spectate"
	"github.com/brensch/retrosnake/tui"
	"github.com/brensch/retrosnake/window"
)

type options struct {
	ui           string
	cfg          game.Config
	sound        bool
	volume       float64
	spectateAddr string
	recordDir    string
	logFile      string
	logFormat    string
	logLevel     string
	width        int
	height       int
}

func main() {
	def := game.DefaultConfig()
	var o options
	flag.StringVar(&o.ui, "ui", getEnvOrDefault("SNAKE_UI", "term"), "Front end: term or window")
	flag.IntVar(&o.cfg.CellSize, "cell", getEnvIntOrDefault("SNAKE_CELL", def.CellSize), "Cell size in pixels")
	flag.IntVar(&o.cfg.TailLength, "tail", getEnvIntOrDefault("SNAKE_TAIL", def.TailLength), "Initial snake length")
	flag.IntVar(&o.cfg.Speed, "speed", getEnvIntOrDefault("SNAKE_SPEED", def.Speed), "Speed 1..999; tick period is 1000-speed ms")
	flag.Int64Var(&o.cfg.Seed, "seed", int64(getEnvIntOrDefault("SNAKE_SEED", 0)), "Food RNG seed (0 = clock)")
	flag.BoolVar(&o.sound, "sound", getEnvBoolOrDefault("SNAKE_SOUND", true), "Play sound effects")
	flag.Float64Var(&o.volume, "volume", 0.5, "Sound effect volume 0..1")
	flag.StringVar(&o.spectateAddr, "spectate-addr", getEnvOrDefault("SPECTATE_ADDR", ""), "Serve the spectator feed on this address (e.g. :8090)")
	flag.StringVar(&o.recordDir, "record-dir", getEnvOrDefault("RECORD_DIR", ""), "Write a parquet replay per game to this directory")
	flag.StringVar(&o.logFile, "log-file", getEnvOrDefault("LOG_FILE", "retrosnake.log"), "Log file ('-' for stderr)")
	flag.StringVar(&o.logFormat, "log-format", getEnvOrDefault("LOG_FORMAT", string(logging.FormatLine)), "Log format: pretty, json or line")
	flag.StringVar(&o.logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "info"), "Log level")
	flag.IntVar(&o.width, "width", getEnvIntOrDefault("SNAKE_WIDTH", 1120), "Window width (window ui)")
	flag.IntVar(&o.height, "height", getEnvIntOrDefault("SNAKE_HEIGHT", 784), "Window height (window ui)")
	flag.Parse()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "retrosnake: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if err := o.cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(o.logFile, o.logFormat, o.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting retrosnake",
		"ui", o.ui,
		"cell", o.cfg.CellSize,
		"tail", o.cfg.TailLength,
		"speed", o.cfg.Speed,
		"period", o.cfg.TickPeriod(),
		"sound", o.sound,
		"spectate_addr", o.spectateAddr,
		"record_dir", o.recordDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var observers []engine.Observer
	if o.sound {
		dev, err := audio.OpenOto(o.volume, logger)
		if err != nil {
			logger.Warn("sound disabled", "error", err)
		} else {
			observers = append(observers, audio.NewPlayer(dev))
		}
	}

	if o.recordDir != "" {
		rec := record.NewRecorder(o.recordDir, o.cfg.CellSize, logger)
		defer rec.Close()
		observers = append(observers, rec)
	}

	if o.spectateAddr != "" {
		hub := spectate.NewHub(o.cfg.CellSize, logger)
		srv := &http.Server{Addr: o.spectateAddr, Handler: hub}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator server", "error", err)
			}
		}()
		defer func() {
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		observers = append(observers, hub)
	}

	switch o.ui {
	case "term":
		return runTerminal(ctx, o, logger, observers)
	case "window":
		return runWindow(ctx, o, logger, observers)
	}
	return fmt.Errorf("unknown ui %q", o.ui)
}

func runTerminal(ctx context.Context, o options, logger *slog.Logger, observers []engine.Observer) error {
	surface := tui.NewSurface(o.cfg.CellSize)
	observers = append(observers, tui.NewBridge(surface))

	session, err := engine.New(o.cfg, surface, engine.WithLogger(logger), engine.WithObserver(observers...))
	if err != nil {
		return err
	}
	defer session.Stop()

	p := tea.NewProgram(tui.NewModel(ctx, surface, session), tea.WithAltScreen(), tea.WithContext(ctx))
	surface.SetProgram(p)

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func runWindow(ctx context.Context, o options, logger *slog.Logger, observers []engine.Observer) error {
	surface := render.NewMemorySurface(o.width, o.height)
	win := window.New(window.Config{Width: o.width, Height: o.height, Cell: o.cfg.CellSize}, surface)
	observers = append(observers, win)

	session, err := engine.New(o.cfg, surface, engine.WithLogger(logger), engine.WithObserver(observers...))
	if err != nil {
		return err
	}
	defer session.Stop()

	return win.Run(ctx, session)
}

func openLogger(path, format, level string) (*slog.Logger, func(), error) {
	f, err := logging.ParseFormat(format)
	if err != nil {
		return nil, nil, err
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if path != "-" && path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = file
		closeFn = func() { _ = file.Close() }
	}
	return logging.New(w, f, lvl), closeFn, nil
}
