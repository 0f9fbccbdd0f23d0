package model

import (
	"context"
	"log/slog"
)

// DiagnosticKind names a non-fatal misuse of the cell protocol
type DiagnosticKind string

const (
	// TooManyNeighbors is reported when a ninth neighbor is attached to a cell.
	// The neighbor is still attached.
	TooManyNeighbors DiagnosticKind = "too_many_neighbors"

	// StaleState is reported when a cell is committed without a prior compute.
	// The cell computes its next state on demand before committing.
	StaleState DiagnosticKind = "stale_state"
)

// Diagnostic describes a single warning raised by a cell
type Diagnostic struct {
	Kind    DiagnosticKind
	Cell    int // arena index, -1 for a cell that is not part of a grid
	Message string
}

// DiagnosticSink receives warnings from cells. Implementations must be safe for
// concurrent use since grid phases may run in parallel.
type DiagnosticSink interface {
	Warn(d Diagnostic)
}

// LogSink writes diagnostics to a structured logger at WARN level
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink returns a LogSink writing to logger, or to slog.Default() when logger is nil
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

// Warn logs the diagnostic
func (s *LogSink) Warn(d Diagnostic) {
	s.Logger.LogAttrs(context.Background(), slog.LevelWarn, d.Message,
		slog.String("kind", string(d.Kind)),
		slog.Int("cell", d.Cell),
	)
}

func sinkOrDefault(sink DiagnosticSink) DiagnosticSink {
	if sink == nil {
		return NewLogSink(nil)
	}
	return sink
}
