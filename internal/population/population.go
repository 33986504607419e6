// Package population searches for an (input, formula) pair whose hash equals
// a target, evolving a population of candidates by random mutation.
package population

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/dlogsolve/internal/hashfn"
)

// Candidate pairs an input value with the formula applied to it.
type Candidate struct {
	Value   uint32         `json:"value"`
	Formula hashfn.Formula `json:"formula"`
}

func (c Candidate) String() string {
	return fmt.Sprintf("(%d, %d)", c.Value, int(c.Formula))
}

// Hash evaluates the candidate's formula on its value.
func (c Candidate) Hash(rng *rand.Rand) (int64, error) {
	return hashfn.Evaluate(rng, c.Value, c.Formula)
}

// Population is one generation of candidates.
type Population []Candidate

// NewPopulation draws cfg.PopulationSize candidates with values uniform in
// [cfg.InitMin, cfg.InitMax] and formulas uniform over cfg.Formulas.
func NewPopulation(rng *rand.Rand, cfg Config) Population {
	span := int64(cfg.InitMax-cfg.InitMin) + 1

	pop := make(Population, cfg.PopulationSize)
	for i := range pop {
		pop[i] = Candidate{
			Value:   cfg.InitMin + uint32(rng.Int63n(span)),
			Formula: cfg.Formulas[rng.Intn(len(cfg.Formulas))],
		}
	}
	return pop
}

// Mutate returns a new population where every value is shifted by a uniform
// offset in [-radius, radius], wrapping modulo 2^32. Formulas are unchanged.
func (p Population) Mutate(rng *rand.Rand, radius uint32) Population {
	width := 2*int64(radius) + 1

	next := make(Population, len(p))
	for i, c := range p {
		delta := rng.Int63n(width) - int64(radius)
		next[i] = Candidate{
			Value:   uint32(int64(c.Value) + delta),
			Formula: c.Formula,
		}
	}
	return next
}
