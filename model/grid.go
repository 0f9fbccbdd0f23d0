package model

import (
	"crypto/md5"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol-universe/rules"
	"github.com/sheikhrachel/go-gol-universe/utils"
)

const (
	DefaultAliveGlyph = '*'
	DefaultDeadGlyph  = '.'

	// historySize is how many recent generation hashes are kept for cycle detection
	historySize = 5
)

// mooreOffsets lists the neighborhood in row-major order starting at north-west
var mooreOffsets = [rules.MaxNeighbors][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// GridConfig holds the construction parameters of a Grid
type GridConfig struct {
	Height           int
	Width            int
	AliveProbability float64
	AliveGlyph       rune
	DeadGlyph        rune
}

/*
Grid is the universe: a Height x Width visible region surrounded by a one-cell border
of permanently dead cells.

All cells live in a single arena in row-major order over the bordered dimensions. Border
cells are never wired with neighbors and never stepped, so edge cells need no special case.
*/
type Grid struct {
	height           int
	width            int
	rule             *rules.Rule
	aliveProbability float64
	aliveGlyph       rune
	deadGlyph        rune

	cells      Arena
	generation int
	history    []string // recent generation hashes for cycle detection
}

// NewGrid builds a grid, seeding every visible cell from seeder and wiring its Moore neighborhood
func NewGrid(cfg GridConfig, rule *rules.Rule, seeder Seeder, sink DiagnosticSink) (*Grid, error) {
	if err := validateGridConfig(cfg); err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, errors.Wrap(utils.ErrInvalidArgument, "[NewGrid] rule is nil")
	}
	if seeder == nil {
		return nil, errors.Wrap(utils.ErrInvalidArgument, "[NewGrid] seeder is nil")
	}
	if cfg.AliveGlyph == 0 {
		cfg.AliveGlyph = DefaultAliveGlyph
	}
	if cfg.DeadGlyph == 0 {
		cfg.DeadGlyph = DefaultDeadGlyph
	}

	g := &Grid{
		height:           cfg.Height,
		width:            cfg.Width,
		rule:             rule,
		aliveProbability: cfg.AliveProbability,
		aliveGlyph:       cfg.AliveGlyph,
		deadGlyph:        cfg.DeadGlyph,
	}
	sink = sinkOrDefault(sink)

	if err := g.allocate(sink); err != nil {
		return nil, err
	}
	if err := g.seed(seeder, sink); err != nil {
		return nil, err
	}
	g.wireNeighbors()
	return g, nil
}

func validateGridConfig(cfg GridConfig) error {
	if cfg.Height <= 0 {
		return errors.Wrapf(utils.ErrInvalidArgument, "[NewGrid] height must be positive, got %d", cfg.Height)
	}
	if cfg.Width <= 0 {
		return errors.Wrapf(utils.ErrInvalidArgument, "[NewGrid] width must be positive, got %d", cfg.Width)
	}
	// written so that NaN is rejected too
	if !(cfg.AliveProbability >= 0 && cfg.AliveProbability <= 1) {
		return errors.Wrapf(utils.ErrInvalidArgument, "[NewGrid] alive probability must be in [0, 1], got %v", cfg.AliveProbability)
	}
	return nil
}

// allocate fills the bordered arena with dead cells
func (g *Grid) allocate(sink DiagnosticSink) error {
	g.cells = make(Arena, g.Rows()*g.Cols())
	for idx := range g.cells {
		if err := g.place(idx, rules.Dead, sink); err != nil {
			return err
		}
	}
	return nil
}

// seed replaces every visible cell with a fresh cell in its initial state
func (g *Grid) seed(seeder Seeder, sink DiagnosticSink) error {
	for row := 1; row <= g.height; row++ {
		for col := 1; col <= g.width; col++ {
			state := seeder.State(row-1, col-1, g.aliveProbability)
			if err := g.place(g.index(row, col), state, sink); err != nil {
				return errors.Wrapf(err, "[NewGrid] seeding cell (%d, %d)", row-1, col-1)
			}
		}
	}
	return nil
}

func (g *Grid) place(idx int, state rules.State, sink DiagnosticSink) error {
	c, err := NewCell(state, g.rule, sink)
	if err != nil {
		return err
	}
	c.index = idx
	g.cells[idx] = c
	return nil
}

// wireNeighbors attaches the eight Moore neighbors, border cells included, to every visible cell
func (g *Grid) wireNeighbors() {
	for row := 1; row <= g.height; row++ {
		for col := 1; col <= g.width; col++ {
			c := &g.cells[g.index(row, col)]
			for _, off := range mooreOffsets {
				c.AttachNeighbor(g.index(row+off[0], col+off[1]))
			}
		}
	}
}

// index converts bordered coordinates to an arena index
func (g *Grid) index(row, col int) int {
	return row*g.Cols() + col
}

// Height returns the number of visible rows
func (g *Grid) Height() int {
	return g.height
}

// Width returns the number of visible columns
func (g *Grid) Width() int {
	return g.width
}

// Rows returns the number of rows including the border
func (g *Grid) Rows() int {
	return g.height + 2
}

// Cols returns the number of columns including the border
func (g *Grid) Cols() int {
	return g.width + 2
}

// Rule returns the shared rule of the grid
func (g *Grid) Rule() *rules.Rule {
	return g.rule
}

// AliveProbability returns the probability used to seed the grid
func (g *Grid) AliveProbability() float64 {
	return g.aliveProbability
}

// Glyphs returns the alive and dead display characters
func (g *Grid) Glyphs() (alive, dead rune) {
	return g.aliveGlyph, g.deadGlyph
}

// Generation returns the number of completed steps
func (g *Grid) Generation() int {
	return g.generation
}

// CellAt returns a copy of the cell at bordered coordinates (row, col)
func (g *Grid) CellAt(row, col int) (Cell, bool) {
	if row < 0 || row >= g.Rows() || col < 0 || col >= g.Cols() {
		return Cell{}, false
	}
	return g.cells[g.index(row, col)], true
}

// StateAt implements StateReader over the grid's arena
func (g *Grid) StateAt(idx int) rules.State {
	return g.cells.StateAt(idx)
}

// Render returns one string per visible row, top to bottom
func (g *Grid) Render() []string {
	lines := make([]string, 0, g.height)
	line := make([]rune, g.width)
	for row := 1; row <= g.height; row++ {
		for col := 1; col <= g.width; col++ {
			if g.cells[g.index(row, col)].state == rules.Alive {
				line[col-1] = g.aliveGlyph
			} else {
				line[col-1] = g.deadGlyph
			}
		}
		lines = append(lines, string(line))
	}
	return lines
}

// Step advances the grid by one generation: every visible cell computes, then every visible cell commits
func (g *Grid) Step() error {
	if err := g.computeRows(1, g.height+1); err != nil {
		return errors.Wrapf(err, "[Step] generation %d", g.generation)
	}
	if err := g.commitRows(1, g.height+1); err != nil {
		return errors.Wrapf(err, "[Step] generation %d", g.generation)
	}
	g.generation++
	return nil
}

/*
StepParallel advances the grid by one generation with each phase split into row bands.

The compute phase only reads current states, and the commit phase only writes each cell's
own state, so bands within a phase are independent. The commit phase starts only after every
band has finished computing. workers <= 0 uses runtime.NumCPU().
*/
func (g *Grid) StepParallel(workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if err := g.inBands(workers, g.computeRows); err != nil {
		return errors.Wrapf(err, "[StepParallel] compute phase of generation %d", g.generation)
	}
	if err := g.inBands(workers, g.commitRows); err != nil {
		return errors.Wrapf(err, "[StepParallel] commit phase of generation %d", g.generation)
	}
	g.generation++
	return nil
}

// inBands runs fn over the visible rows split into at most workers contiguous bands
func (g *Grid) inBands(workers int, fn func(startRow, endRow int) error) error {
	var (
		eg            errgroup.Group
		rowsPerWorker = (g.height + workers - 1) / workers // Ceiling division
	)

	for i := range workers {
		var (
			startRow = 1 + i*rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, g.height+1)
		)
		if startRow > g.height {
			break
		}

		eg.Go(func() error {
			return fn(startRow, endRow)
		})
	}

	return eg.Wait()
}

// computeRows runs the compute phase over bordered rows [startRow, endRow)
func (g *Grid) computeRows(startRow, endRow int) error {
	for row := startRow; row < endRow; row++ {
		for col := 1; col <= g.width; col++ {
			if err := g.cells[g.index(row, col)].ComputeNextState(g); err != nil {
				return err
			}
		}
	}
	return nil
}

// commitRows runs the commit phase over bordered rows [startRow, endRow)
func (g *Grid) commitRows(startRow, endRow int) error {
	for row := startRow; row < endRow; row++ {
		for col := 1; col <= g.width; col++ {
			if err := g.cells[g.index(row, col)].Commit(g); err != nil {
				return err
			}
		}
	}
	return nil
}

// CountLivingCells returns the number of live visible cells
func (g *Grid) CountLivingCells() (count int) {
	for row := 1; row <= g.height; row++ {
		for col := 1; col <= g.width; col++ {
			count += int(g.cells[g.index(row, col)].state)
		}
	}
	return
}

// Hash returns an MD5 hash of the visible cell states
func (g *Grid) Hash() string {
	h := md5.New()
	buf := make([]byte, g.width)
	for row := 1; row <= g.height; row++ {
		for col := 1; col <= g.width; col++ {
			buf[col-1] = byte(g.cells[g.index(row, col)].state)
		}
		h.Write(buf)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// UpdateHistory adds the current generation's hash to history and maintains its size
func (g *Grid) UpdateHistory() {
	g.history = append(g.history, g.Hash())

	if len(g.history) > historySize {
		g.history = g.history[1:]
	}
}

// IsStagnant reports whether the current generation repeats one of the last three recorded
// generations, i.e. the grid is static or cycling with period at most 3
func (g *Grid) IsStagnant() bool {
	if len(g.history) < 3 {
		return false
	}

	current := g.Hash()
	for _, past := range g.history[len(g.history)-3:] {
		if past == current {
			return true
		}
	}
	return false
}
