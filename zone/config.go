package zone

import (
	"math"
	"time"
)

// SilenceFloor is the intensity below which the speaker is considered
// silent rather than merely quiet.
const SilenceFloor = 3

// Clamp ranges applied by Normalize.
const (
	MinLower = 0
	MaxLower = 85
	MinUpper = 15
	MaxUpper = 100
	// MinBand is the forced width of the optimal band when the thresholds
	// cross.
	MinBand = 10

	MinPersistence = 500 * time.Millisecond
	MaxPersistence = 10 * time.Second
)

// Config is the classification configuration. The zero value is not
// useful; start from Default.
type Config struct {
	Lower       float64       `json:"lower_threshold"`
	Upper       float64       `json:"upper_threshold"`
	Sensitivity float64       `json:"sensitivity"`
	Dampening   float64       `json:"dampening"`
	Persistence time.Duration `json:"persistence"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Lower:       25,
		Upper:       75,
		Sensitivity: 50,
		Dampening:   30,
		Persistence: 2 * time.Second,
	}
}

// Normalize clamps every field into range and guarantees a non-empty
// optimal band (Lower < Upper). It is idempotent.
func (c Config) Normalize() Config {
	c.Lower = clamp(c.Lower, MinLower, MaxLower)
	c.Upper = clamp(c.Upper, MinUpper, MaxUpper)
	if c.Lower >= c.Upper {
		c.Upper = c.Lower + MinBand
	}
	c.Sensitivity = clamp(c.Sensitivity, 0, 100)
	c.Dampening = clamp(c.Dampening, 0, 100)
	switch {
	case c.Persistence < MinPersistence:
		c.Persistence = MinPersistence
	case c.Persistence > MaxPersistence:
		c.Persistence = MaxPersistence
	}
	return c
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

// Classify maps a displayed intensity onto a state. It is a pure function
// of its inputs; cfg is expected to be normalized.
func Classify(v float64, cfg Config) State {
	switch {
	case v < SilenceFloor:
		return Silent
	case v < cfg.Lower:
		return Low
	case v <= cfg.Upper:
		return Optimal
	default:
		return Danger
	}
}
