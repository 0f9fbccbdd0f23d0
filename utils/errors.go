package utils

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned for out-of-domain inputs: a non-binary cell state,
	// a negative neighbor count, a non-positive grid dimension or an out-of-range probability.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidRuleFormat is returned when a rule string is not of the form "<digits>/<digits>".
	ErrInvalidRuleFormat = errors.New("invalid rule format")
)
