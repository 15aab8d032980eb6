package simulation

import (
	"errors"
	"math"
	"testing"

	"github.com/R-Oraby/Macro-Models/internal/config"
	"github.com/R-Oraby/Macro-Models/internal/dataset"
	"github.com/R-Oraby/Macro-Models/internal/model"
	"github.com/R-Oraby/Macro-Models/internal/shocks"
	"github.com/R-Oraby/Macro-Models/internal/solver"
	"github.com/R-Oraby/Macro-Models/pkg/mathutil"
	"github.com/R-Oraby/Macro-Models/pkg/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/floats"
)

// failingSolver never converges and hands back its starting point.
type failingSolver struct{}

func (failingSolver) Name() string { return "failing" }

func (failingSolver) Solve(_ solver.Residual, guess []float64, _ solver.Options) solver.Result {
	return solver.Result{
		X:            append([]float64(nil), guess...),
		Iterations:   3,
		ResidualNorm: math.NaN(),
		Err:          solver.ErrNotConverged,
	}
}

func defaultConfig(t *testing.T) config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return *conf
}

func runEngine(t *testing.T, s solver.Solver, data *dataset.Series, sh shocks.Set) *Result {
	t.Helper()
	result, err := NewEngine(zap.NewNop(), s, solver.DefaultOptions()).Run(data, model.DefaultParameters(), sh)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

func TestSimulateDeterministic(t *testing.T) {
	data := testutil.Series(10)
	conf := defaultConfig(t)
	conf.Shocks.Seed = 11

	a, err := Simulate(zap.NewNop(), conf, data)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	b, err := Simulate(zap.NewNop(), conf, data)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if a.RunID == b.RunID {
		t.Errorf("expected distinct run ids")
	}
	for i := SeedIndex; i < data.Len(); i++ {
		if a.States[i] != b.States[i] {
			t.Errorf("state %d differs between identical runs:\n%+v\n%+v", i, a.States[i], b.States[i])
		}
	}
	if a.Seed != 11 {
		t.Errorf("Seed = %d, expected 11", a.Seed)
	}

	conf.Shocks.Seed = 12
	c, err := Simulate(zap.NewNop(), conf, data)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if c.States[data.Len()-1] == a.States[data.Len()-1] {
		t.Errorf("different seeds produced the same final state")
	}
}

func TestSeedFromObservations(t *testing.T) {
	data := testutil.Series(6)
	p := model.DefaultParameters()
	result := runEngine(t, nil, data, shocks.Zero(data.Len()))

	s := result.States[SeedIndex]
	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"output growth", s.OutputGrowth, data.Growth(1)},
		{"inflation", s.Inflation, data.Inflation(1)},
		{"interest rate", s.InterestRate, data.Rate(1)},
		{"exchange rate", s.ExchangeRate, data.LogExchangeRate(1)},
		{"CPI", s.CPI, data.LogCPI(1)},
		{"real exchange rate", s.RealExchangeRate, data.RealExchangeRate(1)},
		{"real rate", s.RealRate, data.Rate(1) - data.Inflation(1)},
		{"real rate gap", s.RealRateGap, data.Rate(1) - data.Inflation(1) - p.NeutralRealRate},
		{"real exchange rate gap", s.RealExchangeRateGap, 0},
		{"rate differential", s.RateDifferential, data.ForeignRate(1) - data.Rate(1)},
		{"inflation differential", s.InflationDifferential, data.Inflation(1) - data.ForeignInflation(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
	if !s.Converged {
		t.Errorf("seeded state should be marked converged")
	}
	if result.States[0] != (model.State{}) {
		t.Errorf("period 1 should be left empty, got %+v", result.States[0])
	}
	if len(result.Convergence) != data.Len()-2 {
		t.Errorf("len(Convergence) = %d, expected %d", len(result.Convergence), data.Len()-2)
	}
}

func TestRecursionLocality(t *testing.T) {
	obs := testutil.Observations(8)
	base, err := dataset.New(obs)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	sh := shocks.NewGenerator(3, 0.5).Draw(len(obs))
	want := runEngine(t, nil, base, sh)

	changed := append([]dataset.Observation(nil), obs...)
	changed[6].CPI *= 1.5
	changed[6].NDA *= 0.5
	changed[7].ForeignCPI *= 2
	altered, err := dataset.New(changed)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	sh2 := shocks.Set{
		IS:  append([]float64(nil), sh.IS...),
		PC:  append([]float64(nil), sh.PC...),
		MP:  append([]float64(nil), sh.MP...),
		UIP: append([]float64(nil), sh.UIP...),
	}
	sh2.IS[6] += 3
	sh2.UIP[7] -= 2
	got := runEngine(t, nil, altered, sh2)

	for i := SeedIndex; i < 6; i++ {
		if got.States[i] != want.States[i] {
			t.Errorf("state %d changed after editing later inputs", i)
		}
	}
	if got.States[6] == want.States[6] {
		t.Errorf("state 6 should reflect the edited inputs")
	}
}

func TestFallbackCarriesStateForward(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	data := testutil.Series(5)
	p := model.DefaultParameters()

	result, err := NewEngine(zap.New(core), failingSolver{}, solver.DefaultOptions()).Run(data, p, shocks.Zero(data.Len()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	seed := result.States[SeedIndex].Vector()
	for i := SeedIndex + 1; i < data.Len(); i++ {
		s := result.States[i]
		if s.Vector() != seed {
			t.Errorf("state %d unknowns = %v, expected %v", i, s.Vector(), seed)
		}
		if s.Converged {
			t.Errorf("state %d should not be marked converged", i)
		}
		if s.CPI != result.States[i-1].CPI+s.Inflation {
			t.Errorf("state %d CPI not accumulated from previous period", i)
		}
		if !errors.Is(result.Diagnostics[i-2].Err, solver.ErrNotConverged) {
			t.Errorf("diagnostics %d error = %v", i, result.Diagnostics[i-2].Err)
		}
	}

	summary := result.ConvergenceSummary()
	if summary.Converged != 0 || summary.Periods != 3 || summary.Share != 0 {
		t.Errorf("summary = %+v", summary)
	}
	expectedYears := []int{2002, 2003, 2004}
	if len(summary.FailedYears) != len(expectedYears) {
		t.Fatalf("FailedYears = %v, expected %v", summary.FailedYears, expectedYears)
	}
	for i, y := range expectedYears {
		if summary.FailedYears[i] != y {
			t.Errorf("FailedYears[%d] = %d, expected %d", i, summary.FailedYears[i], y)
		}
	}

	if logs.Len() != 3 {
		t.Errorf("expected one warning per failed period, got %d", logs.Len())
	}
	for _, entry := range logs.All() {
		if entry.ContextMap()["op"] != "simulation.Run" {
			t.Errorf("warning missing op field: %v", entry.ContextMap())
		}
	}

	for _, row := range result.Rows()[1:] {
		if row.ResidualNorm != nil {
			t.Errorf("non-finite residual norm should be omitted, got %v", *row.ResidualNorm)
		}
		if row.Reason == "" {
			t.Errorf("failed row for %d has no reason", row.Year)
		}
	}
}

func TestDerivedFieldConsistency(t *testing.T) {
	data := testutil.Series(9)
	p := model.DefaultParameters()
	result := runEngine(t, solver.NewLinear(), data, shocks.NewGenerator(5, 0.5).Draw(data.Len()))

	for i := SeedIndex + 1; i < data.Len(); i++ {
		s := result.States[i]
		prev := result.States[i-1]
		checks := []struct {
			name     string
			got      float64
			expected float64
		}{
			{"CPI", s.CPI, prev.CPI + s.Inflation},
			{"real exchange rate", s.RealExchangeRate, s.ExchangeRate + data.LogForeignCPI(i) - s.CPI},
			{"real rate", s.RealRate, s.InterestRate - s.Inflation},
			{"real rate gap", s.RealRateGap, s.RealRate - p.NeutralRealRate},
			{"real exchange rate gap", s.RealExchangeRateGap, s.RealExchangeRate - result.Trend[i]},
			{"rate differential", s.RateDifferential, data.ForeignRate(i) - s.InterestRate},
			{"inflation differential", s.InflationDifferential, s.Inflation - data.ForeignInflation(i)},
		}
		for _, c := range checks {
			if c.got != c.expected {
				t.Errorf("period %d %s = %v, expected %v", i, c.name, c.got, c.expected)
			}
		}
	}
}

func TestTrendLinearity(t *testing.T) {
	data := testutil.Series(7)
	result := runEngine(t, nil, data, shocks.Zero(data.Len()))
	rate := model.DefaultParameters().TrendAppreciation

	if result.Trend[SeedIndex] != data.RealExchangeRate(SeedIndex) {
		t.Errorf("trend at period 2 = %v, expected observed %v", result.Trend[SeedIndex], data.RealExchangeRate(SeedIndex))
	}
	for i := 1; i < len(result.Trend); i++ {
		if d := result.Trend[i] - result.Trend[i-1]; !mathutil.WithinTolerance(d, -rate, 1e-9) {
			t.Errorf("trend step %d = %v, expected %v", i, d, -rate)
		}
	}
}

func TestFivePeriodScenario(t *testing.T) {
	data := testutil.Series(5)
	p := model.DefaultParameters()

	for _, s := range []solver.Solver{solver.NewNewton(), solver.NewLinear()} {
		t.Run(s.Name(), func(t *testing.T) {
			result := runEngine(t, s, data, shocks.Zero(data.Len()))
			for j, ok := range result.Convergence {
				if !ok {
					t.Errorf("period %d did not converge: %v", j+3, result.Diagnostics[j].Err)
				}
			}
			for i := SeedIndex + 1; i < data.Len(); i++ {
				residual := make([]float64, model.Unknowns)
				x := result.States[i].Vector()
				model.Residuals(result.States[i-1], exogenous(data, result.Trend, i), model.Shock{}, p)(residual, x[:])
				if norm := floats.Norm(residual, 2); norm >= 1e-6 {
					t.Errorf("period %d residual norm = %v", i, norm)
				}
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	data := testutil.Series(4)
	bad := model.DefaultParameters()
	bad.Beta = math.Inf(1)

	tests := []struct {
		name string
		data *dataset.Series
		p    model.Parameters
		sh   shocks.Set
	}{
		{"nil dataset", nil, model.DefaultParameters(), shocks.Zero(4)},
		{"invalid parameters", data, bad, shocks.Zero(4)},
		{"short shock series", data, model.DefaultParameters(), shocks.Zero(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(nil, nil, solver.DefaultOptions()).Run(tt.data, tt.p, tt.sh); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestRows(t *testing.T) {
	data := testutil.Series(6)
	result := runEngine(t, nil, data, shocks.NewGenerator(1, 0.5).Draw(data.Len()))

	rows := result.Rows()
	if len(rows) != data.Len()-1 {
		t.Fatalf("len(Rows()) = %d, expected %d", len(rows), data.Len()-1)
	}
	if !rows[0].Seeded || rows[0].Period != 2 || rows[0].Year != testutil.FirstYear+1 {
		t.Errorf("first row = %+v, expected seeded period 2", rows[0])
	}
	for _, row := range rows[1:] {
		if row.Seeded {
			t.Errorf("row %d should not be seeded", row.Period)
		}
		if row.ResidualNorm == nil || *row.ResidualNorm >= 1e-6 {
			t.Errorf("row %d residual norm = %v", row.Period, row.ResidualNorm)
		}
		if row.Shock != result.Shocks.At(row.Period-1) {
			t.Errorf("row %d shock mismatch", row.Period)
		}
	}
}

func TestSimulateOptions(t *testing.T) {
	data := testutil.Series(5)

	conf := defaultConfig(t)
	conf.Shocks.Disabled = true
	result, err := Simulate(nil, conf, data)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if !result.ShocksDisabled {
		t.Errorf("ShocksDisabled should be set")
	}
	for i := 0; i < data.Len(); i++ {
		if result.Shocks.At(i) != (model.Shock{}) {
			t.Errorf("shock %d = %+v, expected zero", i, result.Shocks.At(i))
		}
	}

	conf = defaultConfig(t)
	conf.Solver.Method = "bisection"
	if _, err := Simulate(nil, conf, data); err == nil {
		t.Errorf("expected error for unknown solver")
	}

	conf = defaultConfig(t)
	conf.Model.Alpha = math.NaN()
	if _, err := Simulate(nil, conf, data); err == nil {
		t.Errorf("expected error for invalid calibration")
	}

	if _, err := Simulate(nil, defaultConfig(t), nil); err == nil {
		t.Errorf("expected error for missing dataset")
	}
}
