package engine

import (
	"testing"
	"time"

	"hush/zone"
)

func feed(m *silenceMonitor, s zone.State, n int) silenceEvent {
	var last silenceEvent
	for range n {
		last = m.Tick(s)
	}
	return last
}

func TestSilenceWarnAfter8s(t *testing.T) {
	m := newSilenceMonitor(0)
	for i := 1; i < 8; i++ {
		if ev := m.Tick(zone.Silent); ev != silenceNone {
			t.Fatalf("unexpected event at second %d: %d", i, ev)
		}
	}
	if ev := m.Tick(zone.Silent); ev != silenceWarn {
		t.Fatalf("expected silenceWarn at second 8, got %d", ev)
	}
}

func TestSilenceWarnClearsOnVoice(t *testing.T) {
	m := newSilenceMonitor(0)
	feed(m, zone.Silent, 8)

	// 2 of the last 8 samples voiced reaches the clear ratio
	if ev := m.Tick(zone.Low); ev != silenceNone {
		t.Fatalf("cleared too early: %d", ev)
	}
	if ev := m.Tick(zone.Danger); ev != silenceClear {
		t.Fatalf("expected silenceClear, got %d", ev)
	}
}

func TestAnyAudibleZoneCountsAsVoice(t *testing.T) {
	for _, s := range []zone.State{zone.Low, zone.Optimal, zone.Warning, zone.Danger} {
		m := newSilenceMonitor(0)
		for i := 0; i < 60; i++ {
			if ev := m.Tick(s); ev == silenceWarn {
				t.Fatalf("%v: unexpected warn at second %d", s, i)
			}
		}
	}
}

func TestSparseVoiceAvoidsWarn(t *testing.T) {
	m := newSilenceMonitor(0)
	// one LOW sample in every eight stays above the minimum ratio
	for i := 0; i < 64; i++ {
		s := zone.Silent
		if i%8 == 0 {
			s = zone.Low
		}
		if ev := m.Tick(s); ev == silenceWarn {
			t.Fatalf("unexpected warn at second %d", i)
		}
	}
}

func TestSilenceRepeat(t *testing.T) {
	m := newSilenceMonitor(0)
	feed(m, zone.Silent, 8)
	for i := 9; i < 16; i++ {
		if ev := m.Tick(zone.Silent); ev != silenceNone {
			t.Fatalf("unexpected event at second %d: %d", i, ev)
		}
	}
	if ev := m.Tick(zone.Silent); ev != silenceRepeat {
		t.Fatalf("expected silenceRepeat at second 16, got %d", ev)
	}
}

func TestAutoEndDisabledByDefault(t *testing.T) {
	m := newSilenceMonitor(0)
	for i := 0; i < 120; i++ {
		if ev := m.Tick(zone.Silent); ev == silenceAutoEnd {
			t.Fatalf("auto-end with autoEnd disabled at second %d", i)
		}
	}
}

func TestAutoEndAfterWindow(t *testing.T) {
	m := newSilenceMonitor(30 * time.Second)
	var got int
	for i := 1; i <= 30; i++ {
		if m.Tick(zone.Silent) == silenceAutoEnd {
			got = i
			break
		}
	}
	if got != 30 {
		t.Fatalf("auto-end at second %d, want 30", got)
	}
}

func TestAutoEndWindowFloor(t *testing.T) {
	m := newSilenceMonitor(2 * time.Second)
	if n := len(m.long.states); n != 8 {
		t.Fatalf("auto-end window = %d, want 8", n)
	}
}

func TestSilenceReset(t *testing.T) {
	m := newSilenceMonitor(0)
	feed(m, zone.Silent, 8)
	m.Reset()
	if ev := feed(m, zone.Silent, 7); ev != silenceNone {
		t.Fatalf("event after reset: %d", ev)
	}
	if m.recent.filled != 7 || m.recent.voiced != 0 {
		t.Errorf("window after reset = %+v", m.recent)
	}
}

func TestStateWindowEvictsOldest(t *testing.T) {
	w := newStateWindow(3)
	for _, s := range []zone.State{zone.Optimal, zone.Silent, zone.Silent, zone.Silent} {
		w.push(s)
	}
	if w.voiced != 0 || !w.full() {
		t.Errorf("window = %+v, want full and silent", w)
	}
	if got := w.ratio(); got != 0 {
		t.Errorf("ratio = %v", got)
	}
}
