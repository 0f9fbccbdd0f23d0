package model

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-universe/rules"
	"github.com/sheikhrachel/go-gol-universe/utils"
)

// Phase tracks where a cell is in the compute/commit protocol
type Phase uint8

const (
	// PhaseClean means no next state is pending
	PhaseClean Phase = iota
	// PhaseComputed means a next state has been computed but not committed
	PhaseComputed
)

func (p Phase) String() string {
	if p == PhaseComputed {
		return "computed"
	}
	return "clean"
}

// StateReader resolves the current state of the cell stored at an arena index
type StateReader interface {
	StateAt(idx int) rules.State
}

// Arena is the flat backing store for cells. Cells refer to their neighbors by index into it.
type Arena []Cell

// StateAt returns the current state of the cell at idx
func (a Arena) StateAt(idx int) rules.State {
	return a[idx].state
}

/*
Cell is a single binary cell.

Its state only changes through the two-phase protocol: ComputeNextState reads the current
state of the cell and its neighbors and records a pending state (Clean -> Computed), Commit
makes the pending state current (Computed -> Clean). Within one generation every cell must
compute before any cell commits.
*/
type Cell struct {
	state     rules.State
	pending   rules.State
	phase     Phase
	neighbors []int
	rule      *rules.Rule
	sink      DiagnosticSink
	index     int
}

// NewCell creates a clean cell with the given initial state. A nil sink logs diagnostics via slog.
func NewCell(initial rules.State, rule *rules.Rule, sink DiagnosticSink) (Cell, error) {
	if !initial.Valid() {
		return Cell{}, errors.Wrapf(utils.ErrInvalidArgument, "[NewCell] initial state must be 0 or 1, got %d", initial)
	}
	if rule == nil {
		return Cell{}, errors.Wrap(utils.ErrInvalidArgument, "[NewCell] rule is nil")
	}
	return Cell{
		state:     initial,
		neighbors: make([]int, 0, rules.MaxNeighbors),
		rule:      rule,
		sink:      sinkOrDefault(sink),
		index:     -1,
	}, nil
}

// State returns the current state of the cell
func (c *Cell) State() rules.State {
	return c.state
}

// Phase returns the protocol phase of the cell
func (c *Cell) Phase() Phase {
	return c.phase
}

// Neighbors returns a copy of the arena indices of the cell's neighbors
func (c *Cell) Neighbors() []int {
	out := make([]int, len(c.neighbors))
	copy(out, c.neighbors)
	return out
}

// AttachNeighbor appends idx to the cell's neighbors, warning if the cell already has a full neighborhood
func (c *Cell) AttachNeighbor(idx int) {
	if len(c.neighbors) >= rules.MaxNeighbors {
		c.sink.Warn(Diagnostic{
			Kind:    TooManyNeighbors,
			Cell:    c.index,
			Message: fmt.Sprintf("cell already has %d neighbors, attaching %d anyway", len(c.neighbors), idx),
		})
	}
	c.neighbors = append(c.neighbors, idx)
}

func (c *Cell) liveNeighbors(arena StateReader) (count int) {
	for _, idx := range c.neighbors {
		count += int(arena.StateAt(idx))
	}
	return
}

// ComputeNextState records the cell's next state from the current states found in arena
func (c *Cell) ComputeNextState(arena StateReader) error {
	next, err := c.rule.NextState(c.state, c.liveNeighbors(arena))
	if err != nil {
		return errors.Wrapf(err, "[ComputeNextState] cell %d", c.index)
	}
	c.pending = next
	c.phase = PhaseComputed
	return nil
}

// Commit makes the pending state current. A cell committed without a prior compute
// reports StaleState and computes first.
func (c *Cell) Commit(arena StateReader) error {
	if c.phase != PhaseComputed {
		c.sink.Warn(Diagnostic{
			Kind:    StaleState,
			Cell:    c.index,
			Message: "next state was not computed before commit, computing now",
		})
		if err := c.ComputeNextState(arena); err != nil {
			return errors.Wrap(err, "[Commit] stale state fallback")
		}
	}
	c.state = c.pending
	c.pending = rules.Dead
	c.phase = PhaseClean
	return nil
}

func (c *Cell) String() string {
	return c.state.String()
}
