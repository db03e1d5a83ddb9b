// Command snakewatch prints a retrosnake game as ASCII boards, either live
// from a spectator feed or from a parquet replay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brensch/retrosnake/record"
	"github.com/brensch/retrosnake/spectate"
)

func main() {
	url := flag.String("url", getEnvOrDefault("SPECTATE_URL", "ws://localhost:8090/"), "Spectator feed URL")
	replay := flag.String("replay", "", "Print a parquet replay instead of watching live")
	delay := flag.Duration("delay", getEnvDurationOrDefault("REPLAY_DELAY", 200*time.Millisecond), "Pause between replayed ticks")
	connectTimeout := flag.Duration("connect-timeout", getEnvDurationOrDefault("CONNECT_TIMEOUT", 10*time.Second), "Websocket handshake timeout")
	readTimeout := flag.Duration("read-timeout", getEnvDurationOrDefault("READ_TIMEOUT", 0), "Fail if no message arrives within this duration (0 = wait forever)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *replay != "" {
		if err := printReplay(ctx, *replay, *delay); err != nil {
			log.Fatalf("Replay failed: %v", err)
		}
		return
	}

	log.Printf("Watching %s", *url)
	cfg := spectate.WatchConfig{HandshakeTimeout: *connectTimeout, ReadTimeout: *readTimeout}
	err := spectate.Watch(ctx, *url, cfg, func(m spectate.Message) error {
		fmt.Print(spectate.FormatBoard(m.Frame))
		if m.Type == spectate.TypeGameOver {
			fmt.Printf("Game Over. Final score = %d\n", m.Frame.Score)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("Watch failed: %v", err)
	}
}

func printReplay(ctx context.Context, path string, delay time.Duration) error {
	rows, err := record.ReadGame(path)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d ticks from %s", len(rows), path)

	for i, row := range rows {
		fmt.Print(spectate.FormatBoard(frameFromRow(row)))
		if i == len(rows)-1 || delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
	return nil
}

func frameFromRow(r record.TickRow) spectate.Frame {
	f := spectate.Frame{
		GameID:    r.GameID,
		Tick:      int(r.Tick),
		Score:     int(r.Score),
		Phase:     r.Phase,
		Direction: r.Direction,
		Cell:      int(r.Cell),
		Width:     int(r.Width),
		Height:    int(r.Height),
		Food:      spectate.Coord{X: int(r.FoodX), Y: int(r.FoodY)},
		Snake:     make([]spectate.Coord, len(r.BodyX)),
	}
	for i := range r.BodyX {
		f.Snake[i] = spectate.Coord{X: int(r.BodyX[i]), Y: int(r.BodyY[i])}
	}
	return f
}

// Environment variable helpers
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
