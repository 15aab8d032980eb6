// Package solver provides the root-finding strategies used to close the
// period equation system. Every strategy accepts a residual function over a
// fixed-length vector, a warm-start guess and a tolerance/iteration budget,
// and reports whether the residual norm fell below the tolerance.
package solver

import (
	"fmt"
	"math"

	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"gonum.org/v1/gonum/floats"
)

// Residual writes F(x) into dst. len(dst) == len(x) for every strategy here.
type Residual func(dst, x []float64)

// Options bounds a single solve.
type Options struct {
	// Tolerance is the Euclidean residual norm below which the solve converges.
	Tolerance float64
	// MaxIterations is the maximum number of solver steps.
	MaxIterations int
}

// DefaultOptions returns the tolerance and iteration budget used by the
// simulation unless configured otherwise.
func DefaultOptions() Options {
	return Options{
		Tolerance:     constants.DefaultTolerance,
		MaxIterations: constants.DefaultMaxIterations,
	}
}

func (o Options) normalize() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = constants.DefaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = constants.DefaultMaxIterations
	}
	return o
}

// Result is the outcome of a solve.
type Result struct {
	// X is the last iterate. When Converged is false it is still populated
	// for diagnostics but callers should not use it as a solution.
	X []float64
	// Converged reports whether ResidualNorm < Tolerance was reached.
	Converged bool
	// Iterations is the number of steps taken.
	Iterations int
	// ResidualNorm is ||F(X)||_2.
	ResidualNorm float64
	// Err explains a failed solve and wraps one of the package sentinels.
	Err error
}

// Solver is a root-finding strategy.
type Solver interface {
	// Name identifies the strategy in logs and reports.
	Name() string
	// Solve searches for x with F(x) ≈ 0 starting from guess. guess is not modified.
	Solve(f Residual, guess []float64, opts Options) Result
}

// New returns the strategy registered under method.
func New(method string) (Solver, error) {
	switch method {
	case constants.SolverNewton, "":
		return NewNewton(), nil
	case constants.SolverLinear:
		return NewLinear(), nil
	default:
		return nil, fmt.Errorf("unknown solver method %q, expected %s or %s",
			method, constants.SolverNewton, constants.SolverLinear)
	}
}

// evaluate fills dst with f(x) and returns its Euclidean norm. A non-finite
// norm is reported as ok == false.
func evaluate(f Residual, dst, x []float64) (norm float64, ok bool) {
	f(dst, x)
	norm = floats.Norm(dst, 2)
	if math.IsNaN(norm) || math.IsInf(norm, 0) {
		return norm, false
	}
	return norm, true
}
