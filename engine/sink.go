package engine

import (
	"hush/session"
	"hush/zone"
)

// Sink receives pipeline output. Calls are made from the engine goroutine
// and must not block.
type Sink interface {
	Intensity(v float64)
	Transition(tr zone.Transition)
	Progress(p session.Progress)
	SessionStarted(id string)
	SessionEnded(rec session.Record)
	NoVoiceWarning()
	VoiceCleared()
}

type NopSink struct{}

func (NopSink) Intensity(float64)           {}
func (NopSink) Transition(zone.Transition)  {}
func (NopSink) Progress(session.Progress)   {}
func (NopSink) SessionStarted(string)       {}
func (NopSink) SessionEnded(session.Record) {}
func (NopSink) NoVoiceWarning()             {}
func (NopSink) VoiceCleared()               {}

// MultiSink fans every call out to each sink in order.
type MultiSink []Sink

func (m MultiSink) Intensity(v float64) {
	for _, s := range m {
		s.Intensity(v)
	}
}

func (m MultiSink) Transition(tr zone.Transition) {
	for _, s := range m {
		s.Transition(tr)
	}
}

func (m MultiSink) Progress(p session.Progress) {
	for _, s := range m {
		s.Progress(p)
	}
}

func (m MultiSink) SessionStarted(id string) {
	for _, s := range m {
		s.SessionStarted(id)
	}
}

func (m MultiSink) SessionEnded(rec session.Record) {
	for _, s := range m {
		s.SessionEnded(rec)
	}
}

func (m MultiSink) NoVoiceWarning() {
	for _, s := range m {
		s.NoVoiceWarning()
	}
}

func (m MultiSink) VoiceCleared() {
	for _, s := range m {
		s.VoiceCleared()
	}
}
