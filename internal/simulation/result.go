package simulation

import (
	"github.com/R-Oraby/Macro-Models/internal/dataset"
	"github.com/R-Oraby/Macro-Models/internal/model"
	"github.com/R-Oraby/Macro-Models/internal/shocks"
	"github.com/R-Oraby/Macro-Models/pkg/mathutil"
)

// Result holds the outcome of one run. Per-period slices are indexed like
// the observed data; index 0 is never populated.
type Result struct {
	RunID          string           `json:"runId" yaml:"runId"`
	Solver         string           `json:"solver" yaml:"solver"`
	Seed           uint64           `json:"seed" yaml:"seed"`
	ShocksDisabled bool             `json:"shocksDisabled" yaml:"shocksDisabled"`
	Parameters     model.Parameters `json:"parameters" yaml:"parameters"`

	Years  []int         `json:"years" yaml:"years"`
	States []model.State `json:"-" yaml:"-"`
	Actual []Observed    `json:"-" yaml:"-"`
	Trend  model.Trend   `json:"trend" yaml:"trend"`
	Shocks shocks.Set    `json:"-" yaml:"-"`

	// Convergence and Diagnostics cover the solved periods: entry j belongs
	// to data index j+2.
	Convergence []bool              `json:"convergence" yaml:"convergence"`
	Diagnostics []model.Diagnostics `json:"-" yaml:"-"`
}

// Observed holds the observed counterparts of the simulated unknowns.
type Observed struct {
	OutputGrowth     float64 `json:"outputGrowth" yaml:"outputGrowth"`
	Inflation        float64 `json:"inflation" yaml:"inflation"`
	InterestRate     float64 `json:"interestRate" yaml:"interestRate"`
	ExchangeRate     float64 `json:"exchangeRate" yaml:"exchangeRate"`
	RealExchangeRate float64 `json:"realExchangeRate" yaml:"realExchangeRate"`
}

func observe(data *dataset.Series, i int) Observed {
	return Observed{
		OutputGrowth:     data.Growth(i),
		Inflation:        data.Inflation(i),
		InterestRate:     data.Rate(i),
		ExchangeRate:     data.LogExchangeRate(i),
		RealExchangeRate: data.RealExchangeRate(i),
	}
}

// Row is one reported period.
type Row struct {
	Year      int         `json:"year" yaml:"year"`
	Period    int         `json:"period" yaml:"period"` // 1-based
	Seeded    bool        `json:"seeded" yaml:"seeded"`
	Simulated model.State `json:"simulated" yaml:"simulated"`
	Actual    Observed    `json:"actual" yaml:"actual"`
	Trend     float64     `json:"trend" yaml:"trend"`
	Shock     model.Shock `json:"shock" yaml:"shock"`

	Iterations   int      `json:"iterations" yaml:"iterations"`
	ResidualNorm *float64 `json:"residualNorm,omitempty" yaml:"residualNorm,omitempty"`
	Reason       string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Periods returns the number of periods T.
func (r *Result) Periods() int { return len(r.Years) }

// Rows returns the seeded period followed by every solved period.
func (r *Result) Rows() []Row {
	if r.Periods() <= SeedIndex {
		return nil
	}
	rows := make([]Row, 0, r.Periods()-SeedIndex)
	for i := SeedIndex; i < r.Periods(); i++ {
		row := Row{
			Year:      r.Years[i],
			Period:    i + 1,
			Seeded:    i == SeedIndex,
			Simulated: r.States[i],
			Actual:    r.Actual[i],
			Trend:     r.Trend[i],
			Shock:     r.Shocks.At(i),
		}
		if i > SeedIndex {
			d := r.Diagnostics[i-SeedIndex-1]
			row.Iterations = d.Iterations
			if mathutil.IsFinite(d.ResidualNorm) {
				norm := d.ResidualNorm
				row.ResidualNorm = &norm
			}
			if d.Err != nil {
				row.Reason = d.Err.Error()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ConvergenceSummary counts how many solved periods converged.
type ConvergenceSummary struct {
	Periods     int     `json:"periods" yaml:"periods"`
	Converged   int     `json:"converged" yaml:"converged"`
	Share       float64 `json:"share" yaml:"share"`
	FailedYears []int   `json:"failedYears" yaml:"failedYears"`
}

// ConvergenceSummary reports convergence over the solved periods.
func (r *Result) ConvergenceSummary() ConvergenceSummary {
	s := ConvergenceSummary{Periods: len(r.Convergence), FailedYears: []int{}}
	for j, ok := range r.Convergence {
		if ok {
			s.Converged++
			continue
		}
		s.FailedYears = append(s.FailedYears, r.Years[j+SeedIndex+1])
	}
	if s.Periods > 0 {
		s.Share = float64(s.Converged) / float64(s.Periods)
	}
	return s
}
