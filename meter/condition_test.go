package meter

import (
	"math"
	"testing"
)

func TestConditionBounds(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		level := float64(i) / 500 // 0..2, past the top of the scale
		v := Condition(level)
		if v < 0 || v > Max {
			t.Fatalf("Condition(%v) = %v, out of [0,100]", level, v)
		}
		if level*Gain < NoiseGate && v != 0 {
			t.Fatalf("Condition(%v) = %v, want 0 below noise gate", level, v)
		}
	}
}

func TestConditionGate(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0, 0},
		{0.031, 0},   // 7.75
		{0.032, 8},   // exactly at gate
		{0.2, 50},
		{0.4, 100},
		{0.9, 100},
		{-1, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Condition(tt.level); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Condition(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSensitivityGain(t *testing.T) {
	if g := SensitivityGain(50); g != 1 {
		t.Errorf("SensitivityGain(50) = %v, want 1", g)
	}
	if g := SensitivityGain(0); g != 0 {
		t.Errorf("SensitivityGain(0) = %v, want 0", g)
	}
	if g := SensitivityGain(250); g != 2 {
		t.Errorf("SensitivityGain(250) = %v, want 2 (clamped)", g)
	}
}

func TestRingEvictsOldest(t *testing.T) {
	var r ring
	for i := 1; i <= 7; i++ {
		r.push(float64(i))
	}
	if r.len() != HistorySize {
		t.Fatalf("len = %d, want %d", r.len(), HistorySize)
	}
	got := r.values()
	want := []float64{3, 4, 5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values = %v, want %v", got, want)
		}
	}
	if m := r.mean(); m != 5 {
		t.Errorf("mean = %v, want 5", m)
	}
	r.reset()
	if r.len() != 0 || r.mean() != 0 {
		t.Error("reset did not empty ring")
	}
}
