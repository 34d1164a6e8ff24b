package meter

import (
	"time"
)

// DecayWindow is how long the displayed value takes to fall from the
// held peak to the current sample once the hold period is over.
const DecayWindow = 1000 * time.Millisecond

// Params are the per-frame knobs of the stabilizer.
type Params struct {
	// Dampening in [0,100]; 0 disables averaging.
	Dampening float64
	// Persistence is the hold time after a peak before decay starts.
	Persistence time.Duration
}

// Stabilizer is an asymmetric envelope follower: rising input is shown
// immediately, falling input is held for Params.Persistence and then
// decays linearly over DecayWindow. A short moving average over the last
// HistorySize samples removes frame-to-frame jitter first.
//
// A Stabilizer is not safe for concurrent use.
type Stabilizer struct {
	lastSignificant float64
	lastPeak        time.Time
	displayed       float64
	history         ring
}

func NewStabilizer() *Stabilizer {
	return &Stabilizer{}
}

// Update feeds one conditioned sample taken at now and returns the new
// displayed value.
func (s *Stabilizer) Update(sample float64, now time.Time, p Params) float64 {
	sample = clamp(sample, 0, Max)
	s.history.push(sample)

	v := sample
	if d := clamp(p.Dampening, 0, 100) / 100; d > 0 {
		v = sample*(1-d) + s.history.mean()*d
	}

	if v > s.lastSignificant {
		s.lastSignificant = v
		s.displayed = v
		s.lastPeak = now
		return s.displayed
	}

	elapsed := now.Sub(s.lastPeak)
	hold := p.Persistence
	if hold < 0 {
		hold = 0
	}
	if elapsed < hold {
		s.displayed = s.lastSignificant
		return s.displayed
	}

	progress := float64(elapsed-hold) / float64(DecayWindow)
	if progress >= 1 {
		s.displayed = clamp(v, 0, Max)
		s.lastSignificant = v
		s.lastPeak = now
		return s.displayed
	}
	s.displayed = clamp(s.lastSignificant+(v-s.lastSignificant)*progress, 0, Max)
	return s.displayed
}

// Displayed returns the most recent displayed value.
func (s *Stabilizer) Displayed() float64 { return s.displayed }

// LastSignificant returns the current envelope anchor.
func (s *Stabilizer) LastSignificant() float64 { return s.lastSignificant }

// History returns the buffered samples, oldest first.
func (s *Stabilizer) History() []float64 { return s.history.values() }

// Reset returns the stabilizer to its initial state.
func (s *Stabilizer) Reset() {
	*s = Stabilizer{}
}
