package model

// Number of unknowns solved each period.
const Unknowns = 4

// Positions of the unknowns in the solver vector.
const (
	IdxGrowth = iota
	IdxInflation
	IdxRate
	IdxExchangeRate
)

// State is the simulated economy in one period. All level variables are in
// 100·log units and rates in percent.
type State struct {
	OutputGrowth float64 `json:"outputGrowth" yaml:"outputGrowth"`
	Inflation    float64 `json:"inflation" yaml:"inflation"`
	InterestRate float64 `json:"interestRate" yaml:"interestRate"`
	ExchangeRate float64 `json:"exchangeRate" yaml:"exchangeRate"`

	CPI                   float64 `json:"cpi" yaml:"cpi"`
	RealExchangeRate      float64 `json:"realExchangeRate" yaml:"realExchangeRate"`
	RealRate              float64 `json:"realRate" yaml:"realRate"`
	RealRateGap           float64 `json:"realRateGap" yaml:"realRateGap"`
	RealExchangeRateGap   float64 `json:"realExchangeRateGap" yaml:"realExchangeRateGap"`
	RateDifferential      float64 `json:"rateDifferential" yaml:"rateDifferential"`
	InflationDifferential float64 `json:"inflationDifferential" yaml:"inflationDifferential"`

	Converged bool `json:"converged" yaml:"converged"`
}

// Vector returns the solved unknowns (g, π, i, e).
func (s State) Vector() [Unknowns]float64 {
	return [Unknowns]float64{s.OutputGrowth, s.Inflation, s.InterestRate, s.ExchangeRate}
}

// Exogenous collects the period inputs the model takes as given.
type Exogenous struct {
	ForeignCPI       float64 // 100·log foreign CPI
	ForeignInflation float64 // change in ForeignCPI from the previous period
	ForeignRate      float64
	NDAGrowth        float64 // change in 100·log real NDA
	Trend            float64 // trend real exchange rate
}

// Shock holds the four structural shocks drawn for one period.
type Shock struct {
	IS  float64 `json:"is" yaml:"is"`
	PC  float64 `json:"pc" yaml:"pc"`
	MP  float64 `json:"mp" yaml:"mp"`
	UIP float64 `json:"uip" yaml:"uip"`
}

// Derive builds the full state for a period from its solved unknowns and the
// previous period's CPI level. Every derived field is plain arithmetic on its
// inputs.
func Derive(prevCPI float64, x [Unknowns]float64, exo Exogenous, p Parameters) State {
	s := State{
		OutputGrowth: x[IdxGrowth],
		Inflation:    x[IdxInflation],
		InterestRate: x[IdxRate],
		ExchangeRate: x[IdxExchangeRate],
	}
	s.CPI = prevCPI + s.Inflation
	s.RealExchangeRate = s.ExchangeRate + exo.ForeignCPI - s.CPI
	s.RealRate = s.InterestRate - s.Inflation
	s.RealRateGap = s.RealRate - p.NeutralRealRate
	s.RealExchangeRateGap = s.RealExchangeRate - exo.Trend
	s.RateDifferential = exo.ForeignRate - s.InterestRate
	s.InflationDifferential = s.Inflation - exo.ForeignInflation
	return s
}
