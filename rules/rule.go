package rules

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-universe/utils"
)

const (
	// MaxNeighbors is the size of a Moore neighborhood
	MaxNeighbors = 8

	ruleSeparator = "/"
)

// Rule maps a cell's current state and live neighbor count to its next state.
// A Rule is immutable once parsed and may be shared by any number of cells.
type Rule struct {
	survive [MaxNeighbors + 1]bool
	birth   [MaxNeighbors + 1]bool
}

/*
Parse builds a Rule from survive/birth notation, e.g. "23/3".

Both sides must be non-empty runs of the digits 0-8. Digits need not be sorted and
duplicates are ignored.
*/
func Parse(spec string) (*Rule, error) {
	parts := strings.Split(spec, ruleSeparator)
	if len(parts) != 2 {
		return nil, errors.Wrapf(utils.ErrInvalidRuleFormat, "[Parse] expected exactly one %q in %q", ruleSeparator, spec)
	}

	r := &Rule{}
	if err := parseCounts(parts[0], &r.survive); err != nil {
		return nil, errors.Wrapf(err, "[Parse] survive counts of %q", spec)
	}
	if err := parseCounts(parts[1], &r.birth); err != nil {
		return nil, errors.Wrapf(err, "[Parse] birth counts of %q", spec)
	}
	return r, nil
}

// MustParse is like Parse but panics on a malformed rule
func MustParse(spec string) *Rule {
	r, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return r
}

func parseCounts(digits string, into *[MaxNeighbors + 1]bool) error {
	if digits == "" {
		return errors.Wrap(utils.ErrInvalidRuleFormat, "empty neighbor count list")
	}
	for _, c := range digits {
		if c < '0' || c > '0'+MaxNeighbors {
			return errors.Wrapf(utils.ErrInvalidRuleFormat, "%q is not a neighbor count in 0-%d", c, MaxNeighbors)
		}
		into[c-'0'] = true
	}
	return nil
}

// NextState returns the state a cell moves to given its current state and live neighbor count
func (r *Rule) NextState(current State, liveNeighbors int) (State, error) {
	if !current.Valid() {
		return Dead, errors.Wrapf(utils.ErrInvalidArgument, "[NextState] current state must be 0 or 1, got %d", current)
	}
	if liveNeighbors < 0 {
		return Dead, errors.Wrapf(utils.ErrInvalidArgument, "[NextState] live neighbor count cannot be negative, got %d", liveNeighbors)
	}
	// counts above the neighborhood size can never be listed
	if liveNeighbors > MaxNeighbors {
		return Dead, nil
	}

	counts := &r.birth
	if current == Alive {
		counts = &r.survive
	}
	if counts[liveNeighbors] {
		return Alive, nil
	}
	return Dead, nil
}

// SurviveCounts returns the sorted neighbor counts at which a live cell stays alive
func (r *Rule) SurviveCounts() []int {
	return listCounts(&r.survive)
}

// BirthCounts returns the sorted neighbor counts at which a dead cell becomes alive
func (r *Rule) BirthCounts() []int {
	return listCounts(&r.birth)
}

func listCounts(set *[MaxNeighbors + 1]bool) []int {
	counts := make([]int, 0, len(set))
	for n, ok := range set {
		if ok {
			counts = append(counts, n)
		}
	}
	return counts
}

// String formats the rule in canonical survive/birth notation
func (r *Rule) String() string {
	var sb strings.Builder
	for _, n := range r.SurviveCounts() {
		sb.WriteByte(byte('0' + n))
	}
	sb.WriteString(ruleSeparator)
	for _, n := range r.BirthCounts() {
		sb.WriteByte(byte('0' + n))
	}
	return sb.String()
}
