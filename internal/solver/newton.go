package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// maxBacktracks is how many times a Newton step may be halved.
	maxBacktracks = 20
	// jacobianStep is the central-difference step of the numerical Jacobian.
	jacobianStep = 1e-6
)

// Newton is a damped Newton-Raphson solver with a central-difference Jacobian.
type Newton struct {
	settings fd.JacobianSettings
}

// NewNewton returns a Newton solver using central differences.
func NewNewton() *Newton {
	return &Newton{
		settings: fd.JacobianSettings{
			Formula: fd.Central,
			Step:    jacobianStep,
		},
	}
}

// Name implements Solver.
func (n *Newton) Name() string { return "newton" }

// Solve implements Solver.
func (n *Newton) Solve(f Residual, guess []float64, opts Options) Result {
	opts = opts.normalize()
	dim := len(guess)
	if dim == 0 {
		return Result{Err: ErrDimension}
	}

	x := make([]float64, dim)
	copy(x, guess)
	fx := make([]float64, dim)
	norm, ok := evaluate(f, fx, x)
	if !ok {
		return Result{X: x, ResidualNorm: norm, Err: ErrNonFinite}
	}

	jac := mat.NewDense(dim, dim, nil)
	var step mat.VecDense
	trial := make([]float64, dim)
	ftrial := make([]float64, dim)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if norm < opts.Tolerance {
			return Result{X: x, Converged: true, Iterations: iter, ResidualNorm: norm}
		}

		fd.Jacobian(jac, f, x, &n.settings)

		// Solve J·dx = -F(x).
		rhs := mat.NewVecDense(dim, nil)
		rhs.ScaleVec(-1, mat.NewVecDense(dim, fx))
		if err := step.SolveVec(jac, rhs); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
				return Result{X: x, Iterations: iter, ResidualNorm: norm,
					Err: fmt.Errorf("%w: %v", ErrSingular, err)}
			}
		}
		dx := step.RawVector().Data

		// Backtrack until the residual norm decreases.
		lambda := 1.0
		accepted := false
		for k := 0; k < maxBacktracks; k++ {
			floats.AddScaledTo(trial, x, lambda, dx)
			trialNorm, finite := evaluate(f, ftrial, trial)
			if finite && trialNorm < norm {
				copy(x, trial)
				copy(fx, ftrial)
				norm = trialNorm
				accepted = true
				break
			}
			lambda /= 2
		}
		if !accepted {
			return Result{X: x, Iterations: iter + 1, ResidualNorm: norm,
				Err: fmt.Errorf("%w at iteration %d (residual norm %g)", ErrStalled, iter+1, norm)}
		}
	}

	if norm < opts.Tolerance {
		return Result{X: x, Converged: true, Iterations: opts.MaxIterations, ResidualNorm: norm}
	}
	return Result{X: x, Iterations: opts.MaxIterations, ResidualNorm: norm,
		Err: fmt.Errorf("%w after %d iterations (residual norm %g)", ErrNotConverged, opts.MaxIterations, norm)}
}
