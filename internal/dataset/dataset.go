// Package dataset loads the yearly macro observations and computes the
// log, growth and difference series the simulation consumes.
//
// Levels are stored as 100·ln(x) so that first differences read as
// percentage changes. Series are zero-indexed: index 0 is period 1, and
// every differenced series holds NaN at index 0.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"github.com/R-Oraby/Macro-Models/pkg/mathutil"
)

// ErrInvalidData marks structural problems in the input; it is fatal for a run.
var ErrInvalidData = errors.New("dataset: invalid data")

// RowError locates a problem in the input table. Row is 1-based over the
// data rows (the header is not counted).
type RowError struct {
	Row    int
	Year   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("row %d (year %d) column %s: %v", e.Row, e.Year, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d column %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Observation is one raw row of the input table.
type Observation struct {
	Year        int
	RGDP        float64
	CPI         float64
	Rate        float64 // nominal policy rate, percent
	Exchange    float64 // domestic currency per USD
	ForeignRate float64 // percent
	ForeignCPI  float64
	NDA         float64
}

// Series is the immutable, transformed dataset.
type Series struct {
	years []int

	logGDP        []float64
	logCPI        []float64
	rate          []float64
	logExchange   []float64
	foreignRate   []float64
	logForeignCPI []float64
	logRealNDA    []float64

	growth           []float64
	inflation        []float64
	foreignInflation []float64
	ndaGrowth        []float64
	depreciation     []float64
}

// New validates the observations and derives every series.
func New(obs []Observation) (*Series, error) {
	if len(obs) < constants.MinObservations {
		return nil, fmt.Errorf("%w: need at least %d observations, got %d",
			ErrInvalidData, constants.MinObservations, len(obs))
	}

	n := len(obs)
	s := &Series{
		years:         make([]int, n),
		logGDP:        make([]float64, n),
		logCPI:        make([]float64, n),
		rate:          make([]float64, n),
		logExchange:   make([]float64, n),
		foreignRate:   make([]float64, n),
		logForeignCPI: make([]float64, n),
		logRealNDA:    make([]float64, n),
	}

	for i, o := range obs {
		if err := validateObservation(i, o); err != nil {
			return nil, err
		}
		if i > 0 && o.Year <= obs[i-1].Year {
			return nil, &RowError{Row: i + 1, Year: o.Year, Column: "Year",
				Err: fmt.Errorf("%w: years must be strictly increasing (%d after %d)", ErrInvalidData, o.Year, obs[i-1].Year)}
		}

		s.years[i] = o.Year
		s.logGDP[i] = mathutil.ScaledLog(o.RGDP)
		s.logCPI[i] = mathutil.ScaledLog(o.CPI)
		s.rate[i] = o.Rate
		s.logExchange[i] = mathutil.ScaledLog(o.Exchange)
		s.foreignRate[i] = o.ForeignRate
		s.logForeignCPI[i] = mathutil.ScaledLog(o.ForeignCPI)
		s.logRealNDA[i] = mathutil.ScaledLog(o.NDA) - s.logCPI[i]
	}

	s.growth = difference(s.logGDP)
	s.inflation = difference(s.logCPI)
	s.foreignInflation = difference(s.logForeignCPI)
	s.ndaGrowth = difference(s.logRealNDA)
	s.depreciation = difference(s.logExchange)
	return s, nil
}

func validateObservation(i int, o Observation) error {
	positive := []struct {
		column string
		value  float64
	}{
		{"RGDP", o.RGDP},
		{"CPI", o.CPI},
		{"e", o.Exchange},
		{"CPI_foreign", o.ForeignCPI},
		{"NDA", o.NDA},
	}
	for _, p := range positive {
		if !mathutil.IsFinite(p.value) || p.value <= 0 {
			return &RowError{Row: i + 1, Year: o.Year, Column: p.column,
				Err: fmt.Errorf("%w: value must be strictly positive, got %v", ErrInvalidData, p.value)}
		}
	}
	for _, r := range []struct {
		column string
		value  float64
	}{{"i", o.Rate}, {"i_foreign", o.ForeignRate}} {
		if !mathutil.IsFinite(r.value) {
			return &RowError{Row: i + 1, Year: o.Year, Column: r.column,
				Err: fmt.Errorf("%w: value must be finite, got %v", ErrInvalidData, r.value)}
		}
	}
	return nil
}

// difference returns d[i] = x[i] - x[i-1] with d[0] undefined (NaN).
func difference(x []float64) []float64 {
	d := make([]float64, len(x))
	if len(x) == 0 {
		return d
	}
	d[0] = math.NaN()
	for i := 1; i < len(x); i++ {
		d[i] = x[i] - x[i-1]
	}
	return d
}

// Len returns the number of periods T.
func (s *Series) Len() int { return len(s.years) }

// Defined reports whether differenced series have a value at index i.
func (s *Series) Defined(i int) bool { return i > 0 && i < s.Len() }

// Year returns the calendar year of index i.
func (s *Series) Year(i int) int { return s.years[i] }

// Years returns a copy of the calendar years.
func (s *Series) Years() []int { return append([]int(nil), s.years...) }

// LogGDP returns 100·ln real GDP at index i.
func (s *Series) LogGDP(i int) float64 { return s.logGDP[i] }

// LogCPI returns 100·ln CPI at index i.
func (s *Series) LogCPI(i int) float64 { return s.logCPI[i] }

// Rate returns the nominal policy rate at index i.
func (s *Series) Rate(i int) float64 { return s.rate[i] }

// LogExchangeRate returns 100·ln of the nominal exchange rate at index i.
func (s *Series) LogExchangeRate(i int) float64 { return s.logExchange[i] }

// ForeignRate returns the foreign nominal rate at index i.
func (s *Series) ForeignRate(i int) float64 { return s.foreignRate[i] }

// LogForeignCPI returns 100·ln foreign CPI at index i.
func (s *Series) LogForeignCPI(i int) float64 { return s.logForeignCPI[i] }

// LogRealNDA returns 100·(ln NDA − ln CPI) at index i.
func (s *Series) LogRealNDA(i int) float64 { return s.logRealNDA[i] }

// Growth returns real GDP growth at index i (NaN at 0).
func (s *Series) Growth(i int) float64 { return s.growth[i] }

// Inflation returns CPI inflation at index i (NaN at 0).
func (s *Series) Inflation(i int) float64 { return s.inflation[i] }

// ForeignInflation returns foreign CPI inflation at index i (NaN at 0).
func (s *Series) ForeignInflation(i int) float64 { return s.foreignInflation[i] }

// NDAGrowth returns the change in log real NDA at index i (NaN at 0).
func (s *Series) NDAGrowth(i int) float64 { return s.ndaGrowth[i] }

// Depreciation returns the change in the log nominal exchange rate at index i (NaN at 0).
func (s *Series) Depreciation(i int) float64 { return s.depreciation[i] }

// RealExchangeRate returns e + CPIf − CPI at index i.
func (s *Series) RealExchangeRate(i int) float64 {
	return s.logExchange[i] + s.logForeignCPI[i] - s.logCPI[i]
}

// RealRate returns the ex-post real rate i − π at index i (NaN at 0).
func (s *Series) RealRate(i int) float64 { return s.rate[i] - s.inflation[i] }
