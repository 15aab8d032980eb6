package model

import (
	"fmt"

	"github.com/R-Oraby/Macro-Models/internal/solver"
	"github.com/R-Oraby/Macro-Models/pkg/mathutil"
)

// Diagnostics records how a period solve went.
type Diagnostics struct {
	Solver       string
	Iterations   int
	ResidualNorm float64
	// Candidate is the solver's last iterate, kept even when it was rejected.
	Candidate [Unknowns]float64
	// Err is nil on convergence and wraps a solver sentinel otherwise.
	Err error
}

// Residuals returns F(x) = x - RHS(x) for the four period equations:
//
//	g = α·g₋₁ − β·(i − π − r*) + γ·q̃ + ε_IS
//	π = φ·π₋₁ + θ·g + ψ·q̃ + ε_PC
//	i = ρ·i₋₁ + (1−ρ)·(anchor − λ·ΔNDA) + ε_MP
//	e = trend + CPI₋₁ + π − CPIf + ε_UIP
//
// where q̃ = e + CPIf − CPI₋₁ − trend is the real exchange rate gap evaluated
// at last period's price level.
func Residuals(prev State, exo Exogenous, shock Shock, p Parameters) solver.Residual {
	return func(dst, x []float64) {
		g, pi, i, e := x[IdxGrowth], x[IdxInflation], x[IdxRate], x[IdxExchangeRate]
		gap := e + exo.ForeignCPI - prev.CPI - exo.Trend

		dst[IdxGrowth] = g - (p.Alpha*prev.OutputGrowth - p.Beta*(i-pi-p.NeutralRealRate) + p.Gamma*gap + shock.IS)
		dst[IdxInflation] = pi - (p.Phi*prev.Inflation + p.Theta*g + p.Psi*gap + shock.PC)
		dst[IdxRate] = i - (p.Rho*prev.InterestRate + (1-p.Rho)*(p.PolicyAnchor-p.Lambda*exo.NDAGrowth) + shock.MP)
		dst[IdxExchangeRate] = e - (exo.Trend + prev.CPI + pi - exo.ForeignCPI + shock.UIP)
	}
}

// SolvePeriod closes the period system warm-started at the previous
// period's unknowns. When the solver fails, or returns a non-finite
// candidate, the previous unknowns are carried forward and converged is
// false. The returned state always has its derived fields filled in.
func SolvePeriod(prev State, exo Exogenous, shock Shock, p Parameters, s solver.Solver, opts solver.Options) (State, bool, Diagnostics) {
	guess := prev.Vector()
	res := s.Solve(Residuals(prev, exo, shock, p), guess[:], opts)

	diag := Diagnostics{
		Solver:       s.Name(),
		Iterations:   res.Iterations,
		ResidualNorm: res.ResidualNorm,
		Err:          res.Err,
	}
	copy(diag.Candidate[:], res.X)

	converged := res.Converged && len(res.X) == Unknowns && mathutil.AllFinite(res.X...)
	if res.Converged && !converged {
		diag.Err = fmt.Errorf("%w: candidate %v", solver.ErrNonFinite, res.X)
	}

	x := guess
	if converged {
		x = diag.Candidate
	}

	state := Derive(prev.CPI, x, exo, p)
	state.Converged = converged
	return state, converged, diag
}
