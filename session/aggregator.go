package session

import (
	"math"
	"time"

	"hush/zone"
)

// Progress is the live view of an active session, refreshed every
// second.
type Progress struct {
	Total   string // MM:SS
	Green   string // MM:SS
	Success string // "NN%"

	TotalSeconds int
	GreenSeconds int
	DropCount    int
}

// Aggregator owns the mutable record of the active session. It is not
// safe for concurrent use.
type Aggregator struct {
	active bool
	rec    Record
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Active reports whether a session is in progress.
func (a *Aggregator) Active() bool { return a.active }

// Start begins a new session with the given id. The zone the session
// opens in is recorded as its first event, since frames keep running
// between sessions and no transition may follow. An active session is
// ended first and returned with ended=true so the caller can persist it.
func (a *Aggregator) Start(id string, now time.Time, opening zone.State, intensity float64) (prev Record, ended bool) {
	if a.active {
		prev, ended = a.End(now)
	}
	v := roundIntensity(intensity)
	a.active = true
	a.rec = Record{
		ID:            id,
		StartTime:     now,
		PeakIntensity: v,
		Transitions:   []Event{{State: opening, Time: now, Intensity: v}},
	}
	return prev, ended
}

// Observe records a displayed intensity for the running peak.
func (a *Aggregator) Observe(intensity float64) {
	if !a.active {
		return
	}
	if p := roundIntensity(intensity); p > a.rec.PeakIntensity {
		a.rec.PeakIntensity = p
	}
}

// Transition appends tr to the history and counts drops out of the
// optimal zone.
func (a *Aggregator) Transition(tr zone.Transition) {
	if !a.active {
		return
	}
	a.rec.Transitions = append(a.rec.Transitions, Event{
		State:     tr.To,
		Time:      tr.Time,
		Intensity: roundIntensity(tr.Intensity),
	})
	if tr.From == zone.Optimal && tr.To != zone.Optimal {
		a.rec.DropCount++
	}
}

// Tick is called once per second with the state current at the tick
// boundary. Elapsed time is recomputed from the start time so missed
// ticks do not skew it; green time counts sampled ticks only and never
// exceeds elapsed time.
func (a *Aggregator) Tick(now time.Time, state zone.State) {
	if !a.active {
		return
	}
	a.rec.TotalDuration = elapsedSeconds(a.rec.StartTime, now)
	if state == zone.Optimal && a.rec.GreenZoneTime < a.rec.TotalDuration {
		a.rec.GreenZoneTime++
	}
	a.rec.ConsistencyScore = ConsistencyScore(a.rec.DropCount, a.rec.GreenZoneTime)
}

// Progress returns the presentation view of the active session.
func (a *Aggregator) Progress() Progress {
	r := a.rec
	return Progress{
		Total:        FormatClock(r.TotalDuration),
		Green:        FormatClock(r.GreenZoneTime),
		Success:      FormatPercent(r.SuccessRate()),
		TotalSeconds: r.TotalDuration,
		GreenSeconds: r.GreenZoneTime,
		DropCount:    r.DropCount,
	}
}

// Current returns a copy of the active record.
func (a *Aggregator) Current() (Record, bool) {
	if !a.active {
		return Record{}, false
	}
	return a.rec.clone(), true
}

// End finalizes the active session. ok is false when there is nothing to
// end.
func (a *Aggregator) End(now time.Time) (rec Record, ok bool) {
	if !a.active {
		return Record{}, false
	}
	a.rec.EndTime = now
	a.rec.TotalDuration = elapsedSeconds(a.rec.StartTime, now)
	a.rec.ConsistencyScore = ConsistencyScore(a.rec.DropCount, a.rec.GreenZoneTime)
	rec = a.rec.clone()
	a.active = false
	a.rec = Record{}
	return rec, true
}

func (r Record) clone() Record {
	r.Transitions = append([]Event(nil), r.Transitions...)
	return r
}

func elapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func roundIntensity(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}
