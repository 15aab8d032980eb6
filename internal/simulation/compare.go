package simulation

import (
	"math"

	"github.com/R-Oraby/Macro-Models/pkg/mathutil"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Names of the compared variables, in report order.
const (
	VarOutputGrowth = "outputGrowth"
	VarInflation    = "inflation"
	VarInterestRate = "interestRate"
	VarExchangeRate = "exchangeRate"
)

// Fit measures how closely a simulated path tracks its observed
// counterpart over the solved periods.
type Fit struct {
	Variable     string   `json:"variable" yaml:"variable"`
	Observations int      `json:"observations" yaml:"observations"`
	RMSE         float64  `json:"rmse" yaml:"rmse"`
	MAE          float64  `json:"mae" yaml:"mae"`
	Bias         float64  `json:"bias" yaml:"bias"` // mean of simulated minus observed
	Correlation  *float64 `json:"correlation,omitempty" yaml:"correlation,omitempty"`
}

// Compare returns one Fit per simulated unknown. Correlation is nil when
// it is undefined, as with a single period or a constant path.
func (r *Result) Compare() []Fit {
	start := SeedIndex + 1
	if r.Periods() <= start {
		return nil
	}

	n := r.Periods() - start
	pairs := []struct {
		name     string
		sim, act func(int) float64
	}{
		{VarOutputGrowth, func(i int) float64 { return r.States[i].OutputGrowth }, func(i int) float64 { return r.Actual[i].OutputGrowth }},
		{VarInflation, func(i int) float64 { return r.States[i].Inflation }, func(i int) float64 { return r.Actual[i].Inflation }},
		{VarInterestRate, func(i int) float64 { return r.States[i].InterestRate }, func(i int) float64 { return r.Actual[i].InterestRate }},
		{VarExchangeRate, func(i int) float64 { return r.States[i].ExchangeRate }, func(i int) float64 { return r.Actual[i].ExchangeRate }},
	}

	fits := make([]Fit, 0, len(pairs))
	for _, p := range pairs {
		sim := make([]float64, n)
		act := make([]float64, n)
		for j := range sim {
			sim[j] = p.sim(start + j)
			act[j] = p.act(start + j)
		}
		fits = append(fits, fit(p.name, sim, act))
	}
	return fits
}

func fit(name string, sim, act []float64) Fit {
	n := float64(len(sim))
	diff := make([]float64, len(sim))
	floats.SubTo(diff, sim, act)

	f := Fit{
		Variable:     name,
		Observations: len(sim),
		RMSE:         floats.Norm(diff, 2) / math.Sqrt(n),
		MAE:          floats.Norm(diff, 1) / n,
		Bias:         floats.Sum(diff) / n,
	}
	if len(sim) > 1 {
		if c := stat.Correlation(sim, act, nil); mathutil.IsFinite(c) {
			f.Correlation = &c
		}
	}
	return f
}
