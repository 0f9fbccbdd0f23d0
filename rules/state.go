package rules

import (
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-universe/utils"
)

// State is the binary state of a cell
type State uint8

const (
	Dead  State = 0
	Alive State = 1
)

// Valid reports whether s is Dead or Alive
func (s State) Valid() bool {
	return s == Dead || s == Alive
}

func (s State) String() string {
	if s == Alive {
		return "1"
	}
	return "0"
}

// ParseState parses "0" or "1" into a State
func ParseState(s string) (State, error) {
	switch s {
	case "0":
		return Dead, nil
	case "1":
		return Alive, nil
	}
	return Dead, errors.Wrapf(utils.ErrInvalidArgument, "[ParseState] state string must be \"0\" or \"1\", got %q", s)
}
