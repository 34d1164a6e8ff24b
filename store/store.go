// Package store persists classification settings and session summaries.
// Persistence is best effort: callers keep working in memory when a
// store reports an error.
package store

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"

	"hush/session"
	"hush/zone"
)

// MaxSessions is the retention cap for session history.
const MaxSessions = 50

var (
	// ErrNotFound is returned by LoadConfig when nothing has been saved.
	ErrNotFound = errors.New("store: not found")
	// ErrUnavailable is returned by every call on an Unavailable store.
	ErrUnavailable = errors.New("store: persistence unavailable")
)

// Store is the persistence collaborator.
type Store interface {
	LoadConfig() (zone.Config, error)
	SaveConfig(cfg zone.Config) error
	SaveSession(rec session.Record) error
	// ListSessions returns at most MaxSessions records, most recent first.
	ListSessions() ([]session.Record, error)
	AggregateStats() (Stats, error)
	Close() error
}

// Stats summarizes the retained history.
type Stats struct {
	Count          int             `json:"count"`
	AvgSuccessRate float64         `json:"avg_success_rate"`
	TotalGreenTime int             `json:"total_green_time"`
	TotalTime      int             `json:"total_time"`
	Best           *session.Record `json:"best_session,omitempty"`
}

// Aggregate computes Stats over recs. The best session is the one with
// the highest success rate; ties go to the higher consistency score, then
// to the earlier entry in recs.
func Aggregate(recs []session.Record) Stats {
	st := Stats{Count: len(recs)}
	if len(recs) == 0 {
		return st
	}
	rates := make([]float64, len(recs))
	best := 0
	for i, r := range recs {
		rates[i] = r.SuccessRate()
		st.TotalGreenTime += r.GreenZoneTime
		st.TotalTime += r.TotalDuration
		if better(r, recs[best]) {
			best = i
		}
	}
	st.AvgSuccessRate = stat.Mean(rates, nil)
	b := recs[best]
	st.Best = &b
	return st
}

func better(a, b session.Record) bool {
	if a.SuccessRate() != b.SuccessRate() {
		return a.SuccessRate() > b.SuccessRate()
	}
	return a.ConsistencyScore > b.ConsistencyScore
}

// sortRecent orders records most recent first and trims to MaxSessions.
func sortRecent(recs []session.Record) []session.Record {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].StartTime.After(recs[j].StartTime)
	})
	if len(recs) > MaxSessions {
		recs = recs[:MaxSessions]
	}
	return recs
}
