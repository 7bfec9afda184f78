package model

import "math"

// Strength domain shared by every instance.
const (
	StrengthMin     = -2.0
	StrengthMax     = 2.0
	StrengthNeutral = 1.0
)

// Common quantization steps.
const (
	StepCoarse = 0.05
	StepFine   = 0.01
)

// Block is one controllable unit as seen by the presentation layer.
// Category is derived from ID, never stored.
type Block struct {
	ID       string  `json:"id"`
	Enabled  bool    `json:"enabled"`
	Strength float64 `json:"strength"`
}

// Quantizer snaps strengths to a fixed step inside the strength domain.
type Quantizer struct {
	Step    float64
	perUnit float64
}

// NewQuantizer returns a quantizer for step. Non-positive steps fall back
// to StepCoarse.
func NewQuantizer(step float64) Quantizer {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = StepCoarse
	}
	return Quantizer{Step: step, perUnit: math.Round(1 / step)}
}

// Snap rounds v to the nearest step and clamps it to [StrengthMin, StrengthMax].
// NaN maps to StrengthNeutral.
func (q Quantizer) Snap(v float64) float64 {
	if q.perUnit == 0 {
		q = NewQuantizer(q.Step)
	}
	if math.IsNaN(v) {
		return StrengthNeutral
	}
	v = ClampStrength(v)
	// Divide by an integer count so the stored value is the closest float
	// to an exact multiple of the step.
	n := math.Round(v * q.perUnit)
	out := n / q.perUnit
	if out == 0 {
		return 0 // no negative zero
	}
	return ClampStrength(out)
}

// Steps returns how many steps v is away from zero.
func (q Quantizer) Steps(v float64) int {
	if q.perUnit == 0 {
		q = NewQuantizer(q.Step)
	}
	return int(math.Round(v * q.perUnit))
}

// ClampStrength clamps v to the strength domain.
func ClampStrength(v float64) float64 {
	if v < StrengthMin {
		return StrengthMin
	}
	if v > StrengthMax {
		return StrengthMax
	}
	return v
}
