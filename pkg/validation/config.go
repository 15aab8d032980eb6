package validation

import (
	"fmt"

	"github.com/R-Oraby/Macro-Models/pkg/constants"
)

// ValidateSolverMethod checks that method names a known solver strategy.
// The empty string selects the default.
func ValidateSolverMethod(method string) error {
	switch method {
	case "", constants.SolverNewton, constants.SolverLinear:
		return nil
	}
	return fmt.Errorf("expected solver method of %s or %s, got %s",
		constants.SolverNewton, constants.SolverLinear, method)
}

// ValidateSolverSettings returns warnings for solver settings that will be
// replaced by defaults or that make convergence unlikely.
func ValidateSolverSettings(method string, tolerance float64, maxIterations int) []string {
	var warnings []string

	if err := ValidateSolverMethod(method); err != nil {
		warnings = append(warnings, err.Error())
	}
	if tolerance <= 0 {
		warnings = append(warnings, fmt.Sprintf("Solver tolerance %g is not positive; using %g",
			tolerance, constants.DefaultTolerance))
	} else if tolerance > 1e-2 {
		warnings = append(warnings, fmt.Sprintf("Solver tolerance %g is loose; solutions may be inaccurate", tolerance))
	}
	if maxIterations <= 0 {
		warnings = append(warnings, fmt.Sprintf("Solver iteration budget %d is not positive; using %d",
			maxIterations, constants.DefaultMaxIterations))
	}
	return warnings
}

// ValidateShockSettings returns warnings about the shock stream.
func ValidateShockSettings(stdDev float64, disabled bool) []string {
	var warnings []string
	if stdDev < 0 {
		warnings = append(warnings, fmt.Sprintf("Shock standard deviation %g is negative", stdDev))
	}
	if disabled && stdDev > 0 {
		warnings = append(warnings, "Shocks are disabled; shock standard deviation is ignored")
	}
	return warnings
}
