// Package constants provides shared constants for the nk-macro application.
package constants

// Model calibration defaults
const (
	// DefaultAlpha is the IS-curve persistence of output growth
	DefaultAlpha = 0.6

	// DefaultBeta is the IS-curve sensitivity to the real interest rate gap
	DefaultBeta = 0.15

	// DefaultGamma is the IS-curve sensitivity to the real exchange rate gap
	DefaultGamma = 0.03

	// DefaultPhi is the Phillips-curve persistence of inflation
	DefaultPhi = 0.7

	// DefaultTheta is the Phillips-curve sensitivity to output growth
	DefaultTheta = 0.1

	// DefaultPsi is the Phillips-curve pass-through of the real exchange rate gap
	DefaultPsi = 0.3

	// DefaultRho is the interest rate smoothing coefficient of the policy rule
	DefaultRho = 0.8

	// DefaultLambda is the policy rule response to NDA growth
	DefaultLambda = 0.2
)

// Structural constants
const (
	// DefaultNeutralRealRate is the equilibrium real interest rate in percent
	DefaultNeutralRealRate = 3.5

	// DefaultRiskPremium is the calibrated country risk premium in percent.
	// It documents the calibration and does not enter the period equations.
	DefaultRiskPremium = 3.5

	// DefaultTrendAppreciation is the annual real appreciation of the trend
	// exchange rate in percentage points
	DefaultTrendAppreciation = 0.7

	// DefaultPolicyAnchor is the rate the policy rule converges to absent NDA growth
	DefaultPolicyAnchor = 10.0

	// LogScale multiplies natural logs so differences read as percentages
	LogScale = 100.0
)

// Shock defaults
const (
	// DefaultShockStdDev is the standard deviation of every shock series
	DefaultShockStdDev = 0.5

	// DefaultSeed is the seed of the shock stream
	DefaultSeed uint64 = 0
)

// Solver defaults
const (
	// DefaultTolerance is the residual norm below which a period solve converges
	DefaultTolerance = 1e-6

	// DefaultMaxIterations bounds the number of solver iterations per period
	DefaultMaxIterations = 100

	// SolverNewton selects the damped Newton solver with a numerical Jacobian
	SolverNewton = "newton"

	// SolverLinear selects the direct solve of the affine period system
	SolverLinear = "linear"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix of environment variables overriding configuration keys
	EnvPrefix = "NKM"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for datasets (1 MB)
	DefaultMaxUploadSizeBytes int64 = 1024 * 1024
)

// MinObservations is the smallest dataset that yields at least one solved period.
const MinObservations = 3
