// Package mathutil provides common floating point helpers.
package mathutil

import (
	"math"

	"github.com/R-Oraby/Macro-Models/pkg/constants"
)

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// AllFinite reports whether every value is finite.
func AllFinite(vals ...float64) bool {
	for _, v := range vals {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// ScaledLog returns 100·ln(val), the unit every level series is stored in.
// Non-positive inputs yield NaN.
func ScaledLog(val float64) float64 {
	if val <= 0 {
		return math.NaN()
	}
	return constants.LogScale * math.Log(val)
}

// InUnitInterval reports whether val lies strictly inside (0, 1).
func InUnitInterval(val float64) bool {
	return val > 0 && val < 1
}
