// Package record archives finished games as parquet files, one row per tick.
package record

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/retrosnake/engine"
)

const schemaVersion = "replay_v1"

// TickRow is the state after one committed tick. Tick 0 is the initial
// state; the final row of a finished game has Phase "terminal".
type TickRow struct {
	GameID    string  `parquet:"game_id,dict" json:"game_id"`
	Tick      int32   `parquet:"tick" json:"tick"`
	Score     int32   `parquet:"score" json:"score"`
	Phase     string  `parquet:"phase,dict" json:"phase"`
	Direction string  `parquet:"direction,dict" json:"direction"`
	Ate       bool    `parquet:"ate" json:"ate"`
	Cell      int32   `parquet:"cell" json:"cell"`
	Width     int32   `parquet:"width" json:"width"`
	Height    int32   `parquet:"height" json:"height"`
	FoodX     int32   `parquet:"food_x" json:"food_x"`
	FoodY     int32   `parquet:"food_y" json:"food_y"`
	BodyX     []int32 `parquet:"body_x" json:"body_x"`
	BodyY     []int32 `parquet:"body_y" json:"body_y"`
	UnixNano  int64   `parquet:"unix_nano" json:"unix_nano"`
}

// Recorder is an engine.Observer that buffers rows for the current game
// and writes them out when the game ends.
type Recorder struct {
	dir  string
	cell int
	log  *slog.Logger
	now  func() time.Time

	mu     sync.Mutex
	gameID string
	rows   []TickRow
	ate    bool
	files  []string
}

func NewRecorder(dir string, cell int, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{dir: dir, cell: cell, log: log.With("component", "record"), now: time.Now}
}

func (r *Recorder) Observe(e engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Kind {
	case engine.EventStarted:
		r.flushLocked()
		r.gameID = e.GameID
		r.rows = append(r.rows[:0], r.rowLocked(e))
	case engine.EventFoodEaten:
		r.ate = true
	case engine.EventFrame:
		r.rows = append(r.rows, r.rowLocked(e))
	case engine.EventGameOver:
		r.rows = append(r.rows, r.rowLocked(e))
		r.flushLocked()
	}
}

func (r *Recorder) rowLocked(e engine.Event) TickRow {
	snap := e.Snapshot
	row := TickRow{
		GameID:    e.GameID,
		Tick:      int32(e.Tick),
		Score:     int32(e.Score),
		Phase:     snap.Phase.String(),
		Direction: e.Direction.String(),
		Ate:       r.ate,
		Cell:      int32(r.cell),
		Width:     int32(snap.Bounds.Width),
		Height:    int32(snap.Bounds.Height),
		FoodX:     int32(snap.Food.X),
		FoodY:     int32(snap.Food.Y),
		BodyX:     make([]int32, len(snap.Snake)),
		BodyY:     make([]int32, len(snap.Snake)),
		UnixNano:  r.now().UnixNano(),
	}
	for i, p := range snap.Snake {
		row.BodyX[i] = int32(p.X)
		row.BodyY[i] = int32(p.Y)
	}
	r.ate = false
	return row
}

func (r *Recorder) flushLocked() {
	if len(r.rows) == 0 {
		return
	}
	path, err := WriteGame(r.dir, r.gameID, r.rows, r.now())
	if err != nil {
		r.log.Error("write replay", "game_id", r.gameID, "error", err)
	} else {
		r.log.Info("replay written", "game_id", r.gameID, "rows", len(r.rows), "path", path)
		r.files = append(r.files, path)
	}
	r.rows = r.rows[:0]
	r.ate = false
}

// Close writes out a game still in progress. Call it after the session
// has stopped.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
}

// Files lists the archives written so far.
func (r *Recorder) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.files...)
}

// WriteGame writes rows to game_<id>_<unixnano>.parquet under dir.
func WriteGame(outDir, gameID string, rows []TickRow, at time.Time) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("game_%s_%d.parquet", gameID, at.UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := finalPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadGame loads every row of an archive.
func ReadGame(path string) ([]TickRow, error) {
	rows, err := parquet.ReadFile[TickRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}
