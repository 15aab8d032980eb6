package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear solves residuals that are affine in x, F(x) = A·x + b, directly.
// A is recovered column by column from unit perturbations of the guess, the
// system is solved with an LU factorization and the result is verified
// against the residual. Each further iteration is a step of iterative
// refinement with the same factorization.
type Linear struct{}

// NewLinear returns a direct affine solver.
func NewLinear() *Linear { return &Linear{} }

// Name implements Solver.
func (l *Linear) Name() string { return "linear" }

// Solve implements Solver.
func (l *Linear) Solve(f Residual, guess []float64, opts Options) Result {
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
	if norm < opts.Tolerance {
		return Result{X: x, Converged: true, ResidualNorm: norm}
	}

	a, err := affineMatrix(f, x, fx)
	if err != nil {
		return Result{X: x, ResidualNorm: norm, Err: err}
	}

	var lu mat.LU
	lu.Factorize(a)
	if lu.Det() == 0 {
		return Result{X: x, ResidualNorm: norm, Err: fmt.Errorf("%w: zero determinant", ErrSingular)}
	}

	var dx mat.VecDense
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		rhs := mat.NewVecDense(dim, nil)
		rhs.ScaleVec(-1, mat.NewVecDense(dim, fx))
		if err := lu.SolveVecTo(&dx, false, rhs); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
				return Result{X: x, Iterations: iter, ResidualNorm: norm,
					Err: fmt.Errorf("%w: %v", ErrSingular, err)}
			}
		}
		floats.Add(x, dx.RawVector().Data)

		norm, ok = evaluate(f, fx, x)
		if !ok {
			return Result{X: x, Iterations: iter, ResidualNorm: norm, Err: ErrNonFinite}
		}
		if norm < opts.Tolerance {
			return Result{X: x, Converged: true, Iterations: iter, ResidualNorm: norm}
		}
	}

	return Result{X: x, Iterations: opts.MaxIterations, ResidualNorm: norm,
		Err: fmt.Errorf("%w after %d iterations (residual norm %g); residual may not be affine",
			ErrNotConverged, opts.MaxIterations, norm)}
}

// affineMatrix recovers A from F(x+e_j) - F(x), exact when F is affine.
func affineMatrix(f Residual, x, fx []float64) (*mat.Dense, error) {
	dim := len(x)
	a := mat.NewDense(dim, dim, nil)
	shifted := make([]float64, dim)
	fs := make([]float64, dim)
	col := make([]float64, dim)
	for j := 0; j < dim; j++ {
		copy(shifted, x)
		shifted[j]++
		if _, ok := evaluate(f, fs, shifted); !ok {
			return nil, ErrNonFinite
		}
		floats.SubTo(col, fs, fx)
		a.SetCol(j, col)
	}
	return a, nil
}
