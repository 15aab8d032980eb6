// Package shocks draws the structural shocks of a simulation run from a
// single seeded stream.
package shocks

import (
	"fmt"
	"math/rand/v2"

	"github.com/R-Oraby/Macro-Models/internal/model"
	"gonum.org/v1/gonum/stat/distuv"
)

// Set holds the four shock series of a run, each indexed like the observed
// data (index 0 is period 1).
type Set struct {
	IS  []float64 `json:"is" yaml:"is"`
	PC  []float64 `json:"pc" yaml:"pc"`
	MP  []float64 `json:"mp" yaml:"mp"`
	UIP []float64 `json:"uip" yaml:"uip"`
}

// Len returns the number of periods covered.
func (s Set) Len() int { return len(s.IS) }

// At returns the shocks of the zero-based period index i.
func (s Set) At(i int) model.Shock {
	return model.Shock{IS: s.IS[i], PC: s.PC[i], MP: s.MP[i], UIP: s.UIP[i]}
}

// Validate checks that all four series have the expected length.
func (s Set) Validate(periods int) error {
	for name, series := range map[string][]float64{"IS": s.IS, "PC": s.PC, "MP": s.MP, "UIP": s.UIP} {
		if len(series) != periods {
			return fmt.Errorf("shock series %s has %d values, expected %d", name, len(series), periods)
		}
	}
	return nil
}

// Zero returns a set of all-zero shocks.
func Zero(periods int) Set {
	return Set{
		IS:  make([]float64, periods),
		PC:  make([]float64, periods),
		MP:  make([]float64, periods),
		UIP: make([]float64, periods),
	}
}

// Generator is a seeded Gaussian source. It is owned by one run and is not
// safe for concurrent use.
type Generator struct {
	dist distuv.Normal
}

// NewGenerator returns a generator of N(0, stdDev²) draws seeded with seed.
func NewGenerator(seed uint64, stdDev float64) *Generator {
	return &Generator{
		dist: distuv.Normal{
			Mu:    0,
			Sigma: stdDev,
			Src:   rand.NewPCG(seed, seed),
		},
	}
}

// Draw consumes the stream in a fixed order: the whole IS series first,
// then Phillips, policy and UIP, each in period order. Reordering these
// draws changes every simulated path.
func (g *Generator) Draw(periods int) Set {
	return Set{
		IS:  g.series(periods),
		PC:  g.series(periods),
		MP:  g.series(periods),
		UIP: g.series(periods),
	}
}

func (g *Generator) series(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = g.dist.Rand()
	}
	return out
}
