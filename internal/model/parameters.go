// Package model holds the New Keynesian small open economy model: its
// calibration, the long-run real exchange rate trend, the per-period state
// and the solver that closes the four period equations.
package model

import (
	"fmt"

	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"github.com/R-Oraby/Macro-Models/pkg/mathutil"
)

// Parameters is the calibration of the model. It is a value type; copies
// handed to the solver cannot be changed by the caller afterwards.
type Parameters struct {
	// IS curve
	Alpha float64 `json:"alpha" yaml:"alpha"` // persistence of output growth
	Beta  float64 `json:"beta" yaml:"beta"`   // response to the real interest rate gap
	Gamma float64 `json:"gamma" yaml:"gamma"` // response to the real exchange rate gap

	// Phillips curve
	Phi   float64 `json:"phi" yaml:"phi"`     // persistence of inflation
	Theta float64 `json:"theta" yaml:"theta"` // response to output growth
	Psi   float64 `json:"psi" yaml:"psi"`     // exchange rate pass-through

	// Policy rule
	Rho    float64 `json:"rho" yaml:"rho"`       // interest rate smoothing
	Lambda float64 `json:"lambda" yaml:"lambda"` // response to NDA growth

	NeutralRealRate   float64 `json:"neutralRealRate" yaml:"neutralRealRate"`
	RiskPremium       float64 `json:"riskPremium" yaml:"riskPremium"`
	TrendAppreciation float64 `json:"trendAppreciation" yaml:"trendAppreciation"`
	PolicyAnchor      float64 `json:"policyAnchor" yaml:"policyAnchor"`
	ShockStdDev       float64 `json:"shockStdDev" yaml:"shockStdDev"`
}

// DefaultParameters returns the baseline calibration.
func DefaultParameters() Parameters {
	return Parameters{
		Alpha:             constants.DefaultAlpha,
		Beta:              constants.DefaultBeta,
		Gamma:             constants.DefaultGamma,
		Phi:               constants.DefaultPhi,
		Theta:             constants.DefaultTheta,
		Psi:               constants.DefaultPsi,
		Rho:               constants.DefaultRho,
		Lambda:            constants.DefaultLambda,
		NeutralRealRate:   constants.DefaultNeutralRealRate,
		RiskPremium:       constants.DefaultRiskPremium,
		TrendAppreciation: constants.DefaultTrendAppreciation,
		PolicyAnchor:      constants.DefaultPolicyAnchor,
		ShockStdDev:       constants.DefaultShockStdDev,
	}
}

// Validate returns an error when any value is NaN or infinite, or when the
// shock standard deviation is negative.
func (p Parameters) Validate() error {
	for _, f := range p.fields() {
		if !mathutil.IsFinite(f.value) {
			return fmt.Errorf("parameter %s must be finite, got %v", f.name, f.value)
		}
	}
	if p.ShockStdDev < 0 {
		return fmt.Errorf("parameter shockStdDev must be non-negative, got %v", p.ShockStdDev)
	}
	return nil
}

// Warnings lists calibration choices that are legal but leave the model
// without the persistence the warm start relies on.
func (p Parameters) Warnings() []string {
	var warnings []string
	for _, f := range []namedValue{{"alpha", p.Alpha}, {"phi", p.Phi}, {"rho", p.Rho}} {
		if !mathutil.InUnitInterval(f.value) {
			warnings = append(warnings, fmt.Sprintf("parameter %s = %g lies outside (0, 1)", f.name, f.value))
		}
	}
	if p.TrendAppreciation < 0 {
		warnings = append(warnings, fmt.Sprintf("trend appreciation %g is negative, the trend depreciates", p.TrendAppreciation))
	}
	return warnings
}

type namedValue struct {
	name  string
	value float64
}

func (p Parameters) fields() []namedValue {
	return []namedValue{
		{"alpha", p.Alpha},
		{"beta", p.Beta},
		{"gamma", p.Gamma},
		{"phi", p.Phi},
		{"theta", p.Theta},
		{"psi", p.Psi},
		{"rho", p.Rho},
		{"lambda", p.Lambda},
		{"neutralRealRate", p.NeutralRealRate},
		{"riskPremium", p.RiskPremium},
		{"trendAppreciation", p.TrendAppreciation},
		{"policyAnchor", p.PolicyAnchor},
		{"shockStdDev", p.ShockStdDev},
	}
}
