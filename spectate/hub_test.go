package spectate

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brensch/retrosnake/engine"
	"github.com/brensch/retrosnake/game"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func frameEvent(kind engine.EventKind, tick int) engine.Event {
	st := game.NewState(game.DefaultConfig())
	st.Food = game.Point{X: 308, Y: 84}
	st.Tick = tick
	if kind == engine.EventGameOver {
		st.Phase = game.Terminal
	}
	return engine.Event{
		Kind:      kind,
		GameID:    "g1",
		Tick:      tick,
		Score:     st.Score,
		Direction: st.Direction,
		Snapshot:  st.Snapshot(game.Bounds{Width: 560, Height: 560}),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsToWatcher(t *testing.T) {
	hub := NewHub(28, discard())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	msgs := make(chan Message, 8)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(context.Background(), url, WatchConfig{HandshakeTimeout: time.Second, Log: discard()},
			func(m Message) error {
				msgs <- m
				return nil
			})
	}()
	waitFor(t, func() bool { return hub.Count() == 1 })

	hub.Observe(frameEvent(engine.EventFrame, 1))
	hub.Observe(frameEvent(engine.EventDirection, 1))
	hub.Observe(frameEvent(engine.EventGameOver, 2))

	first := <-msgs
	if first.Type != TypeFrame {
		t.Fatalf("first type = %q, want frame", first.Type)
	}
	f := first.Frame
	if f.GameID != "g1" || f.Tick != 1 || f.Cell != 28 || f.Width != 560 {
		t.Errorf("unexpected frame header %+v", f)
	}
	if len(f.Snake) != 3 || f.Snake[0] != (Coord{X: 84, Y: 28}) {
		t.Errorf("snake = %v", f.Snake)
	}
	if f.Food != (Coord{X: 308, Y: 84}) || f.Direction != "right" || f.Phase != "running" {
		t.Errorf("unexpected frame body %+v", f)
	}

	second := <-msgs
	if second.Type != TypeGameOver || second.Frame.Phase != "terminal" {
		t.Fatalf("second = %+v, want game_over", second)
	}

	hub.Close()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after hub close")
	}
}

func TestHubSendsLastFrameOnConnect(t *testing.T) {
	hub := NewHub(28, discard())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()
	hub.Observe(frameEvent(engine.EventFrame, 7))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Message, 1)
	go Watch(ctx, url, WatchConfig{Log: discard()}, func(m Message) error {
		got <- m
		cancel()
		return nil
	})

	select {
	case m := <-got:
		if m.Frame.Tick != 7 {
			t.Fatalf("tick = %d, want 7", m.Frame.Tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(28, discard())
	c := &client{id: "slow", send: make(chan []byte, 1)}
	hub.clients[c.id] = c

	hub.Observe(frameEvent(engine.EventFrame, 1))
	if hub.Count() != 1 {
		t.Fatal("client dropped with room in its buffer")
	}
	hub.Observe(frameEvent(engine.EventFrame, 2))
	if hub.Count() != 0 {
		t.Fatal("slow client not dropped")
	}
	<-c.send
	if _, ok := <-c.send; ok {
		t.Fatal("send channel not closed")
	}
}

func TestWatchCallbackErrorStops(t *testing.T) {
	hub := NewHub(28, discard())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()
	hub.Observe(frameEvent(engine.EventStarted, 0))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	stopErr := io.ErrUnexpectedEOF
	err := Watch(context.Background(), url, WatchConfig{ReadTimeout: 2 * time.Second, Log: discard()},
		func(Message) error { return stopErr })
	if err != stopErr {
		t.Fatalf("err = %v, want %v", err, stopErr)
	}
}

func TestWatchDialError(t *testing.T) {
	err := Watch(context.Background(), "ws://127.0.0.1:1/feed", WatchConfig{HandshakeTimeout: time.Second}, func(Message) error { return nil })
	if err == nil {
		t.Fatal("expected dial error")
	}
}
