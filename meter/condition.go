// Package meter turns normalized loudness levels into a bounded, steady
// intensity value suitable for display and classification.
package meter

import "math"

const (
	// Gain maps a normalized [0,1] level onto the 0-100 intensity scale.
	Gain = 250
	// NoiseGate is the lowest intensity that registers as sound. HVAC hum
	// and footsteps land below it.
	NoiseGate = 8
	// Max is the top of the intensity scale.
	Max = 100
)

// Condition scales a normalized level into an intensity sample in
// [0,100], forcing anything under the noise gate to exactly 0.
func Condition(level float64) float64 {
	if math.IsNaN(level) || level <= 0 {
		return 0
	}
	v := math.Min(level*Gain, Max)
	if v < NoiseGate {
		return 0
	}
	return v
}

// SensitivityGain converts a 0-100 sensitivity setting into a level
// multiplier. 50 is unity.
func SensitivityGain(sensitivity float64) float64 {
	if math.IsNaN(sensitivity) || sensitivity <= 0 {
		return 0
	}
	return math.Min(sensitivity, 100) / 50
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
