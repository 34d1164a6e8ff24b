package main

import (
	"fmt"
	"io"

	"hush/beep"
	"hush/engine"
	"hush/session"
	"hush/zone"
)

// cueSink plays the audible cues. Playback runs off the engine goroutine.
type cueSink struct {
	engine.NopSink
}

func (cueSink) SessionStarted(string)       { go beep.PlayStart() }
func (cueSink) SessionEnded(session.Record) { go beep.PlayEnd() }
func (cueSink) NoVoiceWarning()             { go beep.PlayNoVoice() }

func (cueSink) Transition(tr zone.Transition) {
	if tr.To == zone.Danger {
		go beep.PlayDanger()
	}
}

// toggleSession ends the active session or starts a new one.
func toggleSession(e *engine.Engine) {
	if _, active := e.Current(); active {
		e.EndSession()
		return
	}
	if _, err := e.StartSession(); err != nil {
		tuiSend(ErrorMsg{Text: err.Error()})
	}
}

// printSink writes one line per session event, for headless and test
// runs. Intensity and progress are too chatty to print.
type printSink struct {
	engine.NopSink
	w io.Writer
}

func newPrintSink(w io.Writer) printSink { return printSink{w: w} }

func (p printSink) SessionStarted(id string) {
	fmt.Fprintf(p.w, "SESSION_START %s\n", id)
}

func (p printSink) Transition(tr zone.Transition) {
	fmt.Fprintf(p.w, "STATE %s -> %s %.0f\n", tr.From, tr.To, tr.Intensity)
}

func (p printSink) SessionEnded(rec session.Record) {
	fmt.Fprintf(p.w, "SESSION_END id=%s total=%d green=%d peak=%d drops=%d score=%d\n",
		rec.ID, rec.TotalDuration, rec.GreenZoneTime, rec.PeakIntensity, rec.DropCount, rec.ConsistencyScore)
}

func (p printSink) NoVoiceWarning() { fmt.Fprintln(p.w, "NO_VOICE") }
func (p printSink) VoiceCleared()   { fmt.Fprintln(p.w, "VOICE") }
