package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"hush/log"
	"hush/session"
	"hush/zone"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite is a Store backed by a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// Single connection: sqlite serializes writers anyway, and ":memory:"
	// databases are per-connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}

	s := &SQLite{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(s.db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// m is not closed: closing it would close s.db.
	m.Log = migrateLogger{}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Version returns the applied schema version.
func (s *SQLite) Version() (uint, error) {
	var v uint
	err := s.db.QueryRow(`SELECT version FROM schema_migrations LIMIT 1`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) { log.Infof("[migrate] "+format, v...) }
func (migrateLogger) Verbose() bool                  { return false }

func (s *SQLite) LoadConfig() (zone.Config, error) {
	var (
		cfg           zone.Config
		persistenceMs int64
	)
	err := s.db.QueryRow(`SELECT lower_threshold, upper_threshold, sensitivity, dampening, persistence_ms
		FROM config WHERE id = 1`).Scan(&cfg.Lower, &cfg.Upper, &cfg.Sensitivity, &cfg.Dampening, &persistenceMs)
	if errors.Is(err, sql.ErrNoRows) {
		return zone.Config{}, ErrNotFound
	}
	if err != nil {
		return zone.Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.Persistence = time.Duration(persistenceMs) * time.Millisecond
	return cfg, nil
}

func (s *SQLite) SaveConfig(cfg zone.Config) error {
	_, err := s.db.Exec(`INSERT INTO config (id, lower_threshold, upper_threshold, sensitivity, dampening, persistence_ms)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			lower_threshold = excluded.lower_threshold,
			upper_threshold = excluded.upper_threshold,
			sensitivity     = excluded.sensitivity,
			dampening       = excluded.dampening,
			persistence_ms  = excluded.persistence_ms,
			updated_at      = CURRENT_TIMESTAMP`,
		cfg.Lower, cfg.Upper, cfg.Sensitivity, cfg.Dampening, cfg.Persistence.Milliseconds())
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// SaveSession stores rec (replacing any record with the same ID) and
// evicts the oldest sessions beyond MaxSessions.
func (s *SQLite) SaveSession(rec session.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session_transitions WHERE session_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO sessions (
			id, start_ms, end_ms, total_duration, green_zone_time,
			peak_intensity, drop_count, consistency_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartTime.UnixMilli(), rec.EndTime.UnixMilli(), rec.TotalDuration, rec.GreenZoneTime,
		rec.PeakIntensity, rec.DropCount, rec.ConsistencyScore)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO session_transitions (session_id, idx, state, at_ms, intensity)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transitions: %w", err)
	}
	defer stmt.Close()
	for i, ev := range rec.Transitions {
		if _, err := stmt.Exec(rec.ID, i, ev.State.String(), ev.Time.UnixMilli(), ev.Intensity); err != nil {
			return fmt.Errorf("insert transition %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM sessions WHERE seq NOT IN (
			SELECT seq FROM sessions ORDER BY start_ms DESC, seq DESC LIMIT ?)`, MaxSessions); err != nil {
		return fmt.Errorf("evict sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM session_transitions
		WHERE session_id NOT IN (SELECT id FROM sessions)`); err != nil {
		return fmt.Errorf("evict transitions: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) ListSessions() ([]session.Record, error) {
	rows, err := s.db.Query(`SELECT id, start_ms, end_ms, total_duration, green_zone_time,
			peak_intensity, drop_count, consistency_score
		FROM sessions ORDER BY start_ms DESC, seq DESC LIMIT ?`, MaxSessions)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var recs []session.Record
	index := make(map[string]int)
	for rows.Next() {
		var (
			r              session.Record
			startMs, endMs int64
		)
		if err := rows.Scan(&r.ID, &startMs, &endMs, &r.TotalDuration, &r.GreenZoneTime,
			&r.PeakIntensity, &r.DropCount, &r.ConsistencyScore); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		r.StartTime = time.UnixMilli(startMs).UTC()
		r.EndTime = time.UnixMilli(endMs).UTC()
		index[r.ID] = len(recs)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(recs) == 0 {
		return recs, nil
	}

	trows, err := s.db.Query(`SELECT session_id, state, at_ms, intensity
		FROM session_transitions ORDER BY session_id, idx`)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		var (
			id, state string
			atMs      int64
			ev        session.Event
		)
		if err := trows.Scan(&id, &state, &atMs, &ev.Intensity); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if ev.State, err = zone.ParseState(state); err != nil {
			return nil, fmt.Errorf("session %s: %w", id, err)
		}
		ev.Time = time.UnixMilli(atMs).UTC()
		recs[i].Transitions = append(recs[i].Transitions, ev)
	}
	return recs, trows.Err()
}

func (s *SQLite) AggregateStats() (Stats, error) {
	recs, err := s.ListSessions()
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(recs), nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
