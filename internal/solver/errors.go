package solver

import "errors"

// Failure reasons reported through Result.Err.
var (
	// ErrNotConverged indicates the iteration budget ran out above tolerance.
	ErrNotConverged = errors.New("solver: did not converge")

	// ErrSingular indicates the Jacobian could not be factorized.
	ErrSingular = errors.New("solver: singular jacobian")

	// ErrNonFinite indicates the residual or the iterate became NaN or Inf.
	ErrNonFinite = errors.New("solver: non-finite residual")

	// ErrStalled indicates no step along the Newton direction reduced the residual.
	ErrStalled = errors.New("solver: line search stalled")

	// ErrDimension indicates an empty guess.
	ErrDimension = errors.New("solver: empty initial guess")
)
