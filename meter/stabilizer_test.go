package meter

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func noDamp(hold time.Duration) Params {
	return Params{Dampening: 0, Persistence: hold}
}

func TestRisingEdgeSnaps(t *testing.T) {
	s := NewStabilizer()
	p := noDamp(2 * time.Second)
	s.Update(20, at(0), p)
	if got := s.Update(60, at(10), p); got != 60 {
		t.Fatalf("rising edge displayed %v, want 60", got)
	}
	if s.LastSignificant() != 60 {
		t.Errorf("lastSignificant = %v, want 60", s.LastSignificant())
	}
}

func TestHoldKeepsPeak(t *testing.T) {
	s := NewStabilizer()
	p := noDamp(2 * time.Second)
	s.Update(70, at(0), p)
	for ms := 100; ms < 2000; ms += 100 {
		if got := s.Update(10, at(ms), p); got != 70 {
			t.Fatalf("at %dms displayed %v, want held 70", ms, got)
		}
	}
}

func TestDecayIsLinear(t *testing.T) {
	s := NewStabilizer()
	p := noDamp(2 * time.Second)
	s.Update(80, at(0), p)
	got := s.Update(20, at(2500), p) // halfway through decay
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("mid-decay displayed %v, want 50", got)
	}
	if s.LastSignificant() != 80 {
		t.Errorf("anchor moved during decay: %v", s.LastSignificant())
	}
}

func TestDecayBoundaryReanchors(t *testing.T) {
	s := NewStabilizer()
	p := noDamp(2 * time.Second)
	s.Update(80, at(0), p)
	got := s.Update(20, at(3000), p)
	if got != 20 {
		t.Fatalf("at persistence+1000ms displayed %v, want 20", got)
	}
	if s.LastSignificant() != 20 {
		t.Errorf("lastSignificant = %v, want re-anchored 20", s.LastSignificant())
	}
	// Re-anchored at 3000ms: the next lower sample is held again.
	if got := s.Update(10, at(3100), p); got != 20 {
		t.Errorf("after re-anchor displayed %v, want held 20", got)
	}
}

func TestZeroPersistenceDecaysImmediately(t *testing.T) {
	s := NewStabilizer()
	p := noDamp(0)
	s.Update(60, at(0), p)
	got := s.Update(20, at(500), p)
	if math.Abs(got-40) > 1e-9 {
		t.Errorf("displayed %v, want 40 (no hold plateau)", got)
	}
}

func TestHoldScenario(t *testing.T) {
	s := NewStabilizer()
	p := noDamp(2 * time.Second)
	samples := []float64{50, 50, 10, 10}
	for i, v := range samples {
		if got := s.Update(v, at(i*600), p); got != 50 {
			t.Fatalf("tick %d displayed %v, want 50", i+1, got)
		}
	}
}

func TestDampeningAveragesHistory(t *testing.T) {
	s := NewStabilizer()
	p := Params{Dampening: 50, Persistence: 0}
	s.Update(0, at(0), p)
	// history {0, 40}: mean 20, weighted 40*0.5 + 20*0.5 = 30
	if got := s.Update(40, at(10), p); math.Abs(got-30) > 1e-9 {
		t.Errorf("dampened displayed %v, want 30", got)
	}
}

func TestDisplayedStaysInRange(t *testing.T) {
	s := NewStabilizer()
	p := Params{Dampening: 80, Persistence: 500 * time.Millisecond}
	inputs := []float64{-20, 150, 0, 99, 300, 5, math.NaN(), 42}
	for i, v := range inputs {
		got := s.Update(v, at(i*700), p)
		if got < 0 || got > Max {
			t.Fatalf("displayed %v out of range for input %v", got, v)
		}
	}
}

func TestReset(t *testing.T) {
	s := NewStabilizer()
	s.Update(90, at(0), noDamp(time.Second))
	s.Reset()
	if s.Displayed() != 0 || s.LastSignificant() != 0 || len(s.History()) != 0 {
		t.Error("reset left state behind")
	}
}
