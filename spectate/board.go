package spectate

import (
	"fmt"
	"strings"
)

// FormatBoard renders a frame as ASCII: O head, o body, F food. Points
// outside the board (the placeholder segment after eating) are skipped.
func FormatBoard(f Frame) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s tick %d score %d (%s) ===\n", f.GameID, f.Tick, f.Score, f.Phase))
	if f.Cell <= 0 {
		return sb.String()
	}
	step := 2 * f.Cell
	cols, rows := f.Width/step, f.Height/step
	if cols <= 0 || rows <= 0 {
		return sb.String()
	}

	grid := make([][]byte, rows)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", cols))
	}
	place := func(c Coord, ch byte) {
		if c.X < 0 || c.Y < 0 {
			return
		}
		x, y := c.X/step, c.Y/step
		if x < cols && y < rows {
			grid[y][x] = ch
		}
	}

	place(f.Food, 'F')
	for i := len(f.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			place(f.Snake[i], 'O')
		} else {
			place(f.Snake[i], 'o')
		}
	}

	for _, row := range grid {
		for x, ch := range row {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(ch)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
