package engine

import (
	"time"

	"hush/zone"
)

const (
	silenceWarnAfter = 8 * time.Second
	voiceMinRatio    = 0.10
	voiceClearRatio  = 0.25
)

type silenceEvent int

const (
	silenceNone silenceEvent = iota
	silenceWarn
	silenceClear
	silenceRepeat
	silenceAutoEnd
)

// stateWindow holds the most recent per-second zone samples and how many
// of them were voiced (anything but SILENT).
type stateWindow struct {
	states []zone.State
	next   int
	filled int
	voiced int
}

func newStateWindow(seconds int) stateWindow {
	return stateWindow{states: make([]zone.State, seconds)}
}

func (w *stateWindow) push(s zone.State) {
	if w.filled == len(w.states) {
		if w.states[w.next] != zone.Silent {
			w.voiced--
		}
	} else {
		w.filled++
	}
	w.states[w.next] = s
	if s != zone.Silent {
		w.voiced++
	}
	w.next = (w.next + 1) % len(w.states)
}

func (w *stateWindow) full() bool { return w.filled == len(w.states) }

func (w *stateWindow) ratio() float64 {
	if w.filled == 0 {
		return 1
	}
	return float64(w.voiced) / float64(w.filled)
}

func (w *stateWindow) reset() {
	clear(w.states)
	w.next, w.filled, w.voiced = 0, 0, 0
}

// silenceMonitor watches a session's 1-second samples for stretches
// without voice. It warns once the warn window is nearly all SILENT,
// reminds every warn window while that lasts, and with auto-end enabled
// asks for the session to end once the longer window is silent too.
type silenceMonitor struct {
	recent    stateWindow
	long      stateWindow
	autoEnd   bool
	warned    bool
	sinceWarn int
}

// newSilenceMonitor returns a monitor for 1 s samples. autoEnd <= 0
// disables silenceAutoEnd; shorter windows are raised to the warn window.
func newSilenceMonitor(autoEnd time.Duration) *silenceMonitor {
	warn := int(silenceWarnAfter / time.Second)
	long := warn
	if autoEnd > 0 {
		long = max(int(autoEnd/time.Second), warn)
	}
	return &silenceMonitor{
		recent:  newStateWindow(warn),
		long:    newStateWindow(long),
		autoEnd: autoEnd > 0,
	}
}

func (m *silenceMonitor) Tick(state zone.State) silenceEvent {
	m.recent.push(state)
	m.long.push(state)
	r := m.recent.ratio()

	switch {
	case !m.warned && m.recent.full() && r < voiceMinRatio:
		m.warned = true
		m.sinceWarn = 0
		return silenceWarn
	case m.warned && r >= voiceClearRatio:
		m.warned = false
		return silenceClear
	case m.autoEnd && m.long.full() && m.long.ratio() < voiceMinRatio:
		return silenceAutoEnd
	}

	if !m.warned {
		return silenceNone
	}
	m.sinceWarn++
	if m.sinceWarn >= len(m.recent.states) {
		m.sinceWarn = 0
		return silenceRepeat
	}
	return silenceNone
}

func (m *silenceMonitor) Reset() {
	m.recent.reset()
	m.long.reset()
	m.warned = false
	m.sinceWarn = 0
}
