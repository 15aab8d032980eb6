// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"strconv"
	"strings"

	"github.com/R-Oraby/Macro-Models/internal/dataset"
)

// FirstYear is the year of the first synthetic observation.
const FirstYear = 2000

// Observations returns n smooth synthetic yearly observations starting at
// FirstYear. The same n always yields the same values.
func Observations(n int) []dataset.Observation {
	obs := make([]dataset.Observation, n)
	for k := range obs {
		x := float64(k)
		obs[k] = dataset.Observation{
			Year:        FirstYear + k,
			RGDP:        100 * math.Pow(1.04, x) * (1 + 0.01*math.Sin(x)),
			CPI:         50 * math.Pow(1.06, x),
			Rate:        10 + math.Sin(x),
			Exchange:    3.5 * math.Pow(1.05, x),
			ForeignRate: 2 + 0.5*math.Cos(x),
			ForeignCPI:  80 * math.Pow(1.02, x),
			NDA:         200 * math.Pow(1.09, x),
		}
	}
	return obs
}

// Series builds a dataset from Observations(n). It panics on invalid data,
// which cannot happen for n >= 3.
func Series(n int) *dataset.Series {
	s, err := dataset.New(Observations(n))
	if err != nil {
		panic(err)
	}
	return s
}

// CSV renders observations as an input table with the canonical header.
func CSV(obs []dataset.Observation) string {
	var b strings.Builder
	b.WriteString(strings.Join(dataset.Columns, ","))
	b.WriteByte('\n')
	for _, o := range obs {
		fields := []string{
			strconv.Itoa(o.Year),
			formatFloat(o.RGDP),
			formatFloat(o.CPI),
			formatFloat(o.Rate),
			formatFloat(o.Exchange),
			formatFloat(o.ForeignRate),
			formatFloat(o.ForeignCPI),
			formatFloat(o.NDA),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
