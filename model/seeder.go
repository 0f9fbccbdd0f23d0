package model

import "github.com/sheikhrachel/go-gol-universe/rules"

// Seeder supplies the initial state of each visible cell. Row and column are zero-based
// interior coordinates; aliveProbability is the grid's configured probability.
type Seeder interface {
	State(row, col int, aliveProbability float64) rules.State
}
