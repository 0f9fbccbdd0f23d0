package seeding

import (
	"math/rand/v2"
	"time"

	"github.com/sheikhrachel/go-gol-universe/rules"
)

// Bernoulli seeds each cell independently, alive with the grid's alive probability
type Bernoulli struct {
	r *rand.Rand
}

// NewBernoulli returns a deterministic seeder for the given seed
func NewBernoulli(seed uint64) *Bernoulli {
	return &Bernoulli{r: rand.New(rand.NewPCG(seed, 0))}
}

// NewBernoulliFromTime returns a seeder seeded from the wall clock
func NewBernoulliFromTime() *Bernoulli {
	return NewBernoulli(uint64(time.Now().UnixNano()))
}

// State draws one Bernoulli trial with success probability p
func (b *Bernoulli) State(_, _ int, p float64) rules.State {
	if b.r.Float64() < p {
		return rules.Alive
	}
	return rules.Dead
}
