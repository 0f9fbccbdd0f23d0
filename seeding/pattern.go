package seeding

import "github.com/sheikhrachel/go-gol-universe/rules"

// Pattern seeds the grid from literal rows. Cells outside the pattern, and any
// character other than the alive glyph, are dead.
type Pattern struct {
	rows  [][]rune
	alive rune
}

// NewPattern returns a seeder placing rows at the top-left corner of the grid
func NewPattern(rows []string, alive rune) *Pattern {
	p := &Pattern{rows: make([][]rune, len(rows)), alive: alive}
	for i, row := range rows {
		p.rows[i] = []rune(row)
	}
	return p
}

// State ignores the alive probability and reads the pattern
func (p *Pattern) State(row, col int, _ float64) rules.State {
	if row < 0 || row >= len(p.rows) || col < 0 || col >= len(p.rows[row]) {
		return rules.Dead
	}
	if p.rows[row][col] == p.alive {
		return rules.Alive
	}
	return rules.Dead
}

// Glider returns the glider in '*' / '.' notation, travelling south-east
func Glider() []string {
	return []string{
		".*.",
		"..*",
		"***",
	}
}

// Blinker returns a horizontal period-2 blinker
func Blinker() []string {
	return []string{"***"}
}

// Offset shifts a pattern down by dy rows and right by dx columns. Negative offsets are treated as zero.
func Offset(rows []string, dy, dx int) []string {
	dy, dx = max(dy, 0), max(dx, 0)
	out := make([]string, 0, dy+len(rows))
	for range dy {
		out = append(out, "")
	}
	pad := make([]rune, dx)
	for i := range pad {
		pad[i] = '.'
	}
	for _, row := range rows {
		out = append(out, string(pad)+row)
	}
	return out
}
