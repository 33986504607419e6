package opt

import "errors"

// ErrOptimizerFailed wraps errors returned by an underlying optimizer.
var ErrOptimizerFailed = errors.New("optimizer failed")

// Objective is a cost function to minimize.
type Objective func(x []float64) float64

// Bounds is a box shared by every dimension.
type Bounds struct {
	Lower float64
	Upper float64
	Dim   int
}

// Best is the lowest-cost point an optimizer visited.
type Best struct {
	Position []float64
	Cost     float64
}

// Optimizer minimizes an objective over a box.
type Optimizer interface {
	Minimize(f Objective, b Bounds) (Best, error)
}
