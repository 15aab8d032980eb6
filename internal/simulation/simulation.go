// Package simulation drives the period loop of a run: it seeds the first
// solvable period from observed data, solves every later period in order
// and collects the simulated paths with their convergence log.
package simulation

import (
	"errors"
	"fmt"

	"github.com/R-Oraby/Macro-Models/internal/dataset"
	"github.com/R-Oraby/Macro-Models/internal/model"
	"github.com/R-Oraby/Macro-Models/internal/shocks"
	"github.com/R-Oraby/Macro-Models/internal/solver"
	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeedIndex is the zero-based index of the period seeded from observations.
const SeedIndex = 1

// Engine runs simulations with one solver strategy.
type Engine struct {
	logger *zap.Logger
	solver solver.Solver
	opts   solver.Options
}

// NewEngine creates an engine. A nil solver selects Newton.
func NewEngine(logger *zap.Logger, s solver.Solver, opts solver.Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s == nil {
		s = solver.NewNewton()
	}
	return &Engine{logger: logger, solver: s, opts: opts}
}

// Run simulates every period of data. Index 1 is seeded from the
// observations; indices 2..T-1 are solved one after the other, each from
// the state before it. Periods whose solve fails carry the previous
// unknowns forward and are recorded in the convergence log.
func (e *Engine) Run(data *dataset.Series, p model.Parameters, sh shocks.Set) (*Result, error) {
	if data == nil {
		return nil, errors.New("simulation: no dataset")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	n := data.Len()
	if n < constants.MinObservations {
		return nil, fmt.Errorf("simulation: need at least %d periods, got %d", constants.MinObservations, n)
	}
	if err := sh.Validate(n); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	result := &Result{
		RunID:       uuid.NewString(),
		Solver:      e.solver.Name(),
		Parameters:  p,
		Years:       data.Years(),
		States:      make([]model.State, n),
		Actual:      make([]Observed, n),
		Trend:       model.NewTrend(data.RealExchangeRate(SeedIndex), p.TrendAppreciation, n),
		Shocks:      sh,
		Convergence: make([]bool, n-SeedIndex-1),
		Diagnostics: make([]model.Diagnostics, n-SeedIndex-1),
	}
	for i := SeedIndex; i < n; i++ {
		result.Actual[i] = observe(data, i)
	}

	result.States[SeedIndex] = seed(data, result.Trend, p)
	e.logger.Debug("seeded initial period",
		zap.String("op", "simulation.Run"),
		zap.String("runID", result.RunID),
		zap.Int("year", data.Year(SeedIndex)),
	)

	for i := SeedIndex + 1; i < n; i++ {
		state, converged, diag := model.SolvePeriod(
			result.States[i-1],
			exogenous(data, result.Trend, i),
			sh.At(i),
			p,
			e.solver,
			e.opts,
		)
		result.States[i] = state
		result.Convergence[i-SeedIndex-1] = converged
		result.Diagnostics[i-SeedIndex-1] = diag

		if !converged {
			e.logger.Warn(fmt.Sprintf("period %d did not converge, carrying previous values forward", data.Year(i)),
				zap.String("op", "simulation.Run"),
				zap.String("runID", result.RunID),
				zap.Int("year", data.Year(i)),
				zap.Int("iterations", diag.Iterations),
				zap.Float64("residualNorm", diag.ResidualNorm),
				zap.Float64s("candidate", diag.Candidate[:]),
				zap.Error(diag.Err),
			)
			continue
		}
		e.logger.Debug("solved period",
			zap.String("op", "simulation.Run"),
			zap.Int("year", data.Year(i)),
			zap.Int("iterations", diag.Iterations),
			zap.Float64("residualNorm", diag.ResidualNorm),
		)
	}

	summary := result.ConvergenceSummary()
	e.logger.Info("simulation complete",
		zap.String("op", "simulation.Run"),
		zap.String("runID", result.RunID),
		zap.String("solver", result.Solver),
		zap.Int("periods", summary.Periods),
		zap.Int("converged", summary.Converged),
		zap.Ints("failedYears", summary.FailedYears),
	)
	return result, nil
}

// seed builds the state at SeedIndex from observed data. The real exchange
// rate gap is zero by construction of the trend.
func seed(data *dataset.Series, trend model.Trend, p model.Parameters) model.State {
	i := SeedIndex
	s := model.State{
		OutputGrowth:     data.Growth(i),
		Inflation:        data.Inflation(i),
		InterestRate:     data.Rate(i),
		ExchangeRate:     data.LogExchangeRate(i),
		CPI:              data.LogCPI(i),
		RealExchangeRate: data.RealExchangeRate(i),
		Converged:        true,
	}
	s.RealRate = s.InterestRate - s.Inflation
	s.RealRateGap = s.RealRate - p.NeutralRealRate
	s.RealExchangeRateGap = s.RealExchangeRate - trend[i]
	s.RateDifferential = data.ForeignRate(i) - s.InterestRate
	s.InflationDifferential = s.Inflation - data.ForeignInflation(i)
	return s
}

func exogenous(data *dataset.Series, trend model.Trend, i int) model.Exogenous {
	return model.Exogenous{
		ForeignCPI:       data.LogForeignCPI(i),
		ForeignInflation: data.ForeignInflation(i),
		ForeignRate:      data.ForeignRate(i),
		NDAGrowth:        data.NDAGrowth(i),
		Trend:            trend[i],
	}
}
