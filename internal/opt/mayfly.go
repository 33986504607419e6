package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MinSwarm is the smallest swarm mayfly v0.1.0 accepts.
const MinSwarm = 20

// Mayfly adapts the mayfly optimizer to Optimizer.
type Mayfly struct {
	iterations int
	swarm      int
	seed       int64
}

var _ Optimizer = (*Mayfly)(nil)

// NewMayfly returns a mayfly optimizer. swarm is raised to MinSwarm.
func NewMayfly(iterations, swarm int, seed int64) *Mayfly {
	if swarm < MinSwarm {
		swarm = MinSwarm
	}
	return &Mayfly{iterations: iterations, swarm: swarm, seed: seed}
}

func (m *Mayfly) Minimize(f Objective, b Bounds) (Best, error) {
	if b.Dim <= 0 || b.Lower >= b.Upper {
		return Best{}, fmt.Errorf("%w: invalid bounds [%g, %g] dim %d", ErrOptimizerFailed, b.Lower, b.Upper, b.Dim)
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = mayfly.ObjectiveFunction(f)
	config.ProblemSize = b.Dim
	config.MaxIterations = m.iterations
	config.NPop = m.swarm
	config.LowerBound = b.Lower
	config.UpperBound = b.Upper
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return Best{}, fmt.Errorf("%w: %w", ErrOptimizerFailed, err)
	}

	return Best{Position: result.GlobalBest.Position, Cost: result.GlobalBest.Cost}, nil
}
