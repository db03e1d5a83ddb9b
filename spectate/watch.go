package spectate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

type WatchConfig struct {
	HandshakeTimeout time.Duration
	// ReadTimeout bounds the wait for each message; zero means no deadline.
	ReadTimeout time.Duration
	Log         *slog.Logger
}

// Watch connects to a feed and calls fn for every message until the feed
// closes normally, ctx is cancelled, or fn returns an error.
func Watch(ctx context.Context, url string, cfg WatchConfig, fn func(Message) error) error {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		if cfg.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read error: %w", err)
		}

		msg, err := decode(raw)
		if err != nil {
			log.Warn("failed to parse message", "error", err)
			continue
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}
