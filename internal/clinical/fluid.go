// Package clinical implements the dialysis risk checks and the
// time-on-treatment calculation. Everything here is pure: no I/O and no clock.
package clinical

import "math"

// FluidRemovalLimit is the fraction of dry weight above which fluid removal
// is flagged. The comparison is strict: exactly 5% does not warn.
const FluidRemovalLimit = 0.05

// ratioTolerance absorbs binary rounding of decimal inputs, so 2.49 kg
// against 49.8 kg reads as exactly 5%.
const ratioTolerance = 1e-9

// FluidAssessment is the result of a fluid-removal check.
type FluidAssessment struct {
	Evaluated bool    // false when inputs were missing or invalid
	Ratio     float64 // fluidRemoval / dryWeight, when evaluated
	Warning   bool
}

// Percent returns the removal ratio as a percentage.
func (a FluidAssessment) Percent() float64 {
	return a.Ratio * 100
}

// CheckFluidRemoval compares fluid removed in a session against dry weight.
// A nil fluidRemoval, a NaN on either side, or a non-positive dry weight
// yields no warning.
func CheckFluidRemoval(dryWeight float64, fluidRemoval *float64) FluidAssessment {
	if fluidRemoval == nil || math.IsNaN(*fluidRemoval) || math.IsNaN(dryWeight) || dryWeight <= 0 {
		return FluidAssessment{}
	}

	ratio := *fluidRemoval / dryWeight
	return FluidAssessment{
		Evaluated: true,
		Ratio:     ratio,
		Warning:   ratio-FluidRemovalLimit > ratioTolerance,
	}
}
