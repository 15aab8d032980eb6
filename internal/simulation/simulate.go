package simulation

import (
	"fmt"

	"github.com/R-Oraby/Macro-Models/internal/config"
	"github.com/R-Oraby/Macro-Models/internal/dataset"
	"github.com/R-Oraby/Macro-Models/internal/shocks"
	"go.uber.org/zap"
)

// Simulate runs data under conf: it builds the calibration, the solver and
// a freshly seeded shock stream, then runs an Engine.
func Simulate(logger *zap.Logger, conf config.Configuration, data *dataset.Series) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if data == nil {
		return nil, fmt.Errorf("simulation: no dataset")
	}

	p, err := conf.Parameters()
	if err != nil {
		return nil, err
	}
	s, err := conf.NewSolver()
	if err != nil {
		return nil, err
	}

	var sh shocks.Set
	if conf.Shocks.Disabled {
		sh = shocks.Zero(data.Len())
	} else {
		sh = shocks.NewGenerator(conf.Shocks.Seed, p.ShockStdDev).Draw(data.Len())
	}

	logger.Debug(fmt.Sprintf("simulating %d periods (%d-%d)", data.Len(), data.Year(0), data.Year(data.Len()-1)),
		zap.String("op", "simulation.Simulate"),
		zap.String("solver", s.Name()),
		zap.Uint64("seed", conf.Shocks.Seed),
		zap.Bool("shocksDisabled", conf.Shocks.Disabled),
	)

	result, err := NewEngine(logger, s, conf.SolverOptions()).Run(data, p, sh)
	if err != nil {
		return nil, err
	}
	result.Seed = conf.Shocks.Seed
	result.ShocksDisabled = conf.Shocks.Disabled
	return result, nil
}
