package spectate

import (
	"strings"
	"testing"
)

func TestFormatBoard(t *testing.T) {
	f := Frame{
		GameID: "g", Tick: 3, Score: 1, Phase: "running",
		Cell: 28, Width: 280, Height: 168,
		Snake: []Coord{{X: 140, Y: 28}, {X: 84, Y: 28}, {X: -28, Y: -28}},
		Food:  Coord{X: 196, Y: 140},
	}
	got := FormatBoard(f)
	want := strings.Join([]string{
		"=== g tick 3 score 1 (running) ===",
		". o O . .",
		". . . . .",
		". . . F .",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("board mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatBoardNoGeometry(t *testing.T) {
	got := FormatBoard(Frame{GameID: "g"})
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("expected header only, got %q", got)
	}
}
