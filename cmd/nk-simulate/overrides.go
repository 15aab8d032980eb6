package main

import (
	"fmt"
	"strconv"

	"github.com/R-Oraby/Macro-Models/internal/config"
	"github.com/R-Oraby/Macro-Models/pkg/validation"
)

// applyOverrides layers the command line flags over the loaded configuration.
// Empty values leave the configuration untouched.
func applyOverrides(conf *config.Configuration, dataPath, seed, solverMethod string, noShocks bool) error {
	if dataPath != "" {
		conf.Data.Path = dataPath
	}
	if seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", seed, err)
		}
		conf.Shocks.Seed = v
	}
	if solverMethod != "" {
		if err := validation.ValidateSolverMethod(solverMethod); err != nil {
			return err
		}
		conf.Solver.Method = solverMethod
	}
	if noShocks {
		conf.Shocks.Disabled = true
	}
	return nil
}
