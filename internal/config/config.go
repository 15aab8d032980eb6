// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/R-Oraby/Macro-Models/internal/model"
	"github.com/R-Oraby/Macro-Models/internal/solver"
	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"github.com/R-Oraby/Macro-Models/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for nk-macro.
type Configuration struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Model   ModelConfig   `yaml:"model" mapstructure:"model"`
	Shocks  ShockConfig   `yaml:"shocks" mapstructure:"shocks"`
	Solver  SolverConfig  `yaml:"solver" mapstructure:"solver"`
	Logging LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// DataConfig points at the observed dataset.
type DataConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ModelConfig holds the calibrated coefficients and structural constants.
type ModelConfig struct {
	Alpha  float64 `yaml:"alpha" mapstructure:"alpha"`
	Beta   float64 `yaml:"beta" mapstructure:"beta"`
	Gamma  float64 `yaml:"gamma" mapstructure:"gamma"`
	Phi    float64 `yaml:"phi" mapstructure:"phi"`
	Theta  float64 `yaml:"theta" mapstructure:"theta"`
	Psi    float64 `yaml:"psi" mapstructure:"psi"`
	Rho    float64 `yaml:"rho" mapstructure:"rho"`
	Lambda float64 `yaml:"lambda" mapstructure:"lambda"`

	NeutralRealRate   float64 `yaml:"neutralRealRate" mapstructure:"neutralRealRate"`
	RiskPremium       float64 `yaml:"riskPremium" mapstructure:"riskPremium"`
	TrendAppreciation float64 `yaml:"trendAppreciation" mapstructure:"trendAppreciation"`
	PolicyAnchor      float64 `yaml:"policyAnchor" mapstructure:"policyAnchor"`
}

// ShockConfig controls the shock stream.
type ShockConfig struct {
	StdDev   float64 `yaml:"stdDev" mapstructure:"stdDev" json:"stdDev"`
	Seed     uint64  `yaml:"seed" mapstructure:"seed" json:"seed"`
	Disabled bool    `yaml:"disabled,omitempty" mapstructure:"disabled" json:"disabled"` // all shocks zero
}

// SolverConfig selects and bounds the per-period solver.
type SolverConfig struct {
	Method        string  `yaml:"method" mapstructure:"method" json:"method"` // newton, linear
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance" json:"tolerance"`
	MaxIterations int     `yaml:"maxIterations" mapstructure:"maxIterations" json:"maxIterations"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, yaml
}

// setDefaults registers every key so that environment overrides apply even
// when the file omits the key.
func setDefaults(v *viper.Viper) {
	d := model.DefaultParameters()
	v.SetDefault("data.path", "")
	v.SetDefault("model.alpha", d.Alpha)
	v.SetDefault("model.beta", d.Beta)
	v.SetDefault("model.gamma", d.Gamma)
	v.SetDefault("model.phi", d.Phi)
	v.SetDefault("model.theta", d.Theta)
	v.SetDefault("model.psi", d.Psi)
	v.SetDefault("model.rho", d.Rho)
	v.SetDefault("model.lambda", d.Lambda)
	v.SetDefault("model.neutralRealRate", d.NeutralRealRate)
	v.SetDefault("model.riskPremium", d.RiskPremium)
	v.SetDefault("model.trendAppreciation", d.TrendAppreciation)
	v.SetDefault("model.policyAnchor", d.PolicyAnchor)
	v.SetDefault("shocks.stdDev", d.ShockStdDev)
	v.SetDefault("shocks.seed", constants.DefaultSeed)
	v.SetDefault("shocks.disabled", false)
	v.SetDefault("solver.method", constants.SolverNewton)
	v.SetDefault("solver.tolerance", constants.DefaultTolerance)
	v.SetDefault("solver.maxIterations", constants.DefaultMaxIterations)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yml")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path yields the defaults plus any
// environment overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// so they can override configuration keys. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Parameters builds the immutable model calibration.
func (c Configuration) Parameters() (model.Parameters, error) {
	p := model.Parameters{
		Alpha:             c.Model.Alpha,
		Beta:              c.Model.Beta,
		Gamma:             c.Model.Gamma,
		Phi:               c.Model.Phi,
		Theta:             c.Model.Theta,
		Psi:               c.Model.Psi,
		Rho:               c.Model.Rho,
		Lambda:            c.Model.Lambda,
		NeutralRealRate:   c.Model.NeutralRealRate,
		RiskPremium:       c.Model.RiskPremium,
		TrendAppreciation: c.Model.TrendAppreciation,
		PolicyAnchor:      c.Model.PolicyAnchor,
		ShockStdDev:       c.Shocks.StdDev,
	}
	if err := p.Validate(); err != nil {
		return model.Parameters{}, fmt.Errorf("invalid model configuration: %w", err)
	}
	return p, nil
}

// NewSolver returns the configured solver strategy.
func (c Configuration) NewSolver() (solver.Solver, error) {
	return solver.New(c.Solver.Method)
}

// SolverOptions returns the tolerance and iteration budget of each period solve.
func (c Configuration) SolverOptions() solver.Options {
	return solver.Options{
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	p := model.Parameters{
		Alpha:             c.Model.Alpha,
		Phi:               c.Model.Phi,
		Rho:               c.Model.Rho,
		TrendAppreciation: c.Model.TrendAppreciation,
	}
	warnings = append(warnings, p.Warnings()...)
	warnings = append(warnings, validation.ValidateSolverSettings(c.Solver.Method, c.Solver.Tolerance, c.Solver.MaxIterations)...)
	warnings = append(warnings, validation.ValidateShockSettings(c.Shocks.StdDev, c.Shocks.Disabled)...)
	return warnings
}
