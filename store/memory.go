package store

import (
	"sync"

	"hush/session"
	"hush/zone"
)

// Memory is a Store that keeps everything in process memory. It is safe
// for concurrent use so the report server can read while the engine
// writes.
type Memory struct {
	mu       sync.Mutex
	cfg      *zone.Config
	sessions []session.Record // most recent first
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadConfig() (zone.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return zone.Config{}, ErrNotFound
	}
	return *m.cfg, nil
}

func (m *Memory) SaveConfig(cfg zone.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = &cfg
	return nil
}

func (m *Memory) SaveSession(rec session.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.sessions[:0]
	for _, r := range m.sessions {
		if r.ID != rec.ID {
			kept = append(kept, r)
		}
	}
	rec.Transitions = append([]session.Event(nil), rec.Transitions...)
	m.sessions = sortRecent(append([]session.Record{rec}, kept...))
	return nil
}

func (m *Memory) ListSessions() ([]session.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]session.Record, len(m.sessions))
	copy(out, m.sessions)
	return out, nil
}

func (m *Memory) AggregateStats() (Stats, error) {
	recs, _ := m.ListSessions()
	return Aggregate(recs), nil
}

func (m *Memory) Close() error { return nil }

// Unavailable is a Store whose every call fails with ErrUnavailable. It
// stands in when the database cannot be opened.
type Unavailable struct{}

func (Unavailable) LoadConfig() (zone.Config, error)        { return zone.Config{}, ErrUnavailable }
func (Unavailable) SaveConfig(zone.Config) error            { return ErrUnavailable }
func (Unavailable) SaveSession(session.Record) error        { return ErrUnavailable }
func (Unavailable) ListSessions() ([]session.Record, error) { return nil, ErrUnavailable }
func (Unavailable) AggregateStats() (Stats, error)          { return Stats{}, ErrUnavailable }
func (Unavailable) Close() error                            { return nil }
