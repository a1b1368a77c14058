// Package storage persists load history, the last-known-good portfolio
// document and privacy-conscious visit counts in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned by LatestSnapshot before any document was saved.
var ErrNoSnapshot = errors.New("storage: no snapshot")

// VisitRetention is how long visit rows are kept.
const VisitRetention = 365 * 24 * time.Hour

// Store wraps the SQLite handle. Timestamps are stored as unix milliseconds.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single writer keeps SQLite from returning SQLITE_BUSY under load
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS loads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at INTEGER NOT NULL,
		source TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		checksum TEXT NOT NULL DEFAULT '',
		missing TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS loads_at ON loads (at)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		checksum TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS snapshots_saved_at ON snapshots (saved_at)`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT '',
		at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS visitors_at ON visitors (at)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// LoadRecord is one attempt to load the portfolio document.
type LoadRecord struct {
	ID       int64     `json:"id"`
	At       time.Time `json:"at"`
	Source   string    `json:"source"`
	Outcome  string    `json:"outcome"`
	Error    string    `json:"error,omitempty"`
	Checksum string    `json:"checksum,omitempty"`
	Missing  []string  `json:"missing,omitempty"`
}

func (s *Store) RecordLoad(ctx context.Context, rec LoadRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loads (at, source, outcome, error, checksum, missing)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.At.UnixMilli(), rec.Source, rec.Outcome, rec.Error, rec.Checksum, strings.Join(rec.Missing, ","))
	if err != nil {
		return fmt.Errorf("record load: %w", err)
	}
	return nil
}

// RecentLoads returns up to limit load records, newest first.
func (s *Store) RecentLoads(ctx context.Context, limit int) ([]LoadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, at, source, outcome, error, checksum, missing
		FROM loads
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent loads: %w", err)
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		rec, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoad(row scanner) (LoadRecord, error) {
	var (
		rec     LoadRecord
		at      int64
		missing string
	)
	if err := row.Scan(&rec.ID, &at, &rec.Source, &rec.Outcome, &rec.Error, &rec.Checksum, &missing); err != nil {
		return LoadRecord{}, fmt.Errorf("scan load: %w", err)
	}
	rec.At = time.UnixMilli(at)
	if missing != "" {
		rec.Missing = strings.Split(missing, ",")
	}
	return rec, nil
}

// Snapshot is a stored copy of a successfully loaded document.
type Snapshot struct {
	Checksum string
	Body     []byte
	SavedAt  time.Time
}

// SaveSnapshot stores body under checksum. Saving the same document again
// only refreshes its timestamp.
func (s *Store) SaveSnapshot(ctx context.Context, checksum string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (checksum, body, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(checksum) DO UPDATE SET saved_at = excluded.saved_at
	`, checksum, body, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recently saved document or ErrNoSnapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap    Snapshot
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT checksum, body, saved_at FROM snapshots
		ORDER BY saved_at DESC LIMIT 1
	`).Scan(&snap.Checksum, &snap.Body, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}
	snap.SavedAt = time.UnixMilli(savedAt)
	return snap, nil
}

// RecordVisit stores one page view. Callers must hash the IP first.
func (s *Store) RecordVisit(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, at) VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Cleanup deletes visits recorded before cutoff and reports how many went.
func (s *Store) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	return res.RowsAffected()
}
