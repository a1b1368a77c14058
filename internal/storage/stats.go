package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Stats summarises stored data for the admin dashboard.
type Stats struct {
	TotalVisitors    int64         `json:"total_visitors"`
	UniqueVisitors   int64         `json:"unique_visitors"`
	VisitorsToday    int64         `json:"visitors_today"`
	VisitorsThisWeek int64         `json:"visitors_this_week"`
	TotalLoads       int64         `json:"total_loads"`
	FailedLoads      int64         `json:"failed_loads"`
	LastLoad         *LoadRecord   `json:"last_load,omitempty"`
	Snapshot         *SnapshotInfo `json:"snapshot,omitempty"`
	TopPaths         []PathCount   `json:"top_paths"`
}

type SnapshotInfo struct {
	Checksum string    `json:"checksum"`
	SavedAt  time.Time `json:"saved_at"`
	Size     int64     `json:"size"`
}

type PathCount struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// Stats computes dashboard figures relative to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE at >= ?`, []any{startOfDay.UnixMilli()}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE at >= ?`, []any{now.Add(-7 * 24 * time.Hour).UnixMilli()}},
		{&stats.TotalLoads, `SELECT COUNT(*) FROM loads`, nil},
		{&stats.FailedLoads, `SELECT COUNT(*) FROM loads WHERE outcome != 'ok'`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	recent, err := s.RecentLoads(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) > 0 {
		stats.LastLoad = &recent[0]
	}

	var (
		info    SnapshotInfo
		savedAt int64
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT checksum, saved_at, length(body) FROM snapshots
		ORDER BY saved_at DESC LIMIT 1
	`).Scan(&info.Checksum, &savedAt, &info.Size)
	switch {
	case err == nil:
		info.SavedAt = time.UnixMilli(savedAt)
		stats.Snapshot = &info
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("stats snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views FROM visitors
		GROUP BY path ORDER BY views DESC, path ASC LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("stats paths: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, fmt.Errorf("stats paths: %w", err)
		}
		stats.TopPaths = append(stats.TopPaths, pc)
	}
	return stats, rows.Err()
}
