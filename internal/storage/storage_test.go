package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.RecordLoad(ctx, LoadRecord{Source: "a", Outcome: "ok"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	loads, err := s.RecentLoads(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, loads, 1)
}

func TestLatestSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LatestSnapshot(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, s.SaveSnapshot(ctx, "aaa", []byte(`{"v":1}`)))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.SaveSnapshot(ctx, "bbb", []byte(`{"v":2}`)))

	snap, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bbb", snap.Checksum)
	assert.Equal(t, `{"v":2}`, string(snap.Body))

	// re-saving an older document makes it current again
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.SaveSnapshot(ctx, "aaa", []byte(`{"v":1}`)))
	snap, err = s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "aaa", snap.Checksum)
}

func TestRecentLoadsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordLoad(ctx, LoadRecord{At: base, Source: "db.json", Outcome: "ok", Checksum: "c1"}))
	require.NoError(t, s.RecordLoad(ctx, LoadRecord{
		At: base.Add(time.Minute), Source: "db.json", Outcome: "ok", Checksum: "c2",
		Missing: []string{"hero", "about"},
	}))
	require.NoError(t, s.RecordLoad(ctx, LoadRecord{
		At: base.Add(2 * time.Minute), Source: "db.json", Outcome: "fetch_error", Error: "status 500",
	}))

	loads, err := s.RecentLoads(ctx, 2)
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, "fetch_error", loads[0].Outcome)
	assert.Equal(t, "status 500", loads[0].Error)
	assert.Nil(t, loads[0].Missing)
	assert.Equal(t, []string{"hero", "about"}, loads[1].Missing)
	assert.True(t, loads[1].At.Equal(base.Add(time.Minute)))
}

func TestStatsAndCleanup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordVisit(ctx, "h1", "ua", "/"))
	require.NoError(t, s.RecordVisit(ctx, "h1", "ua", "/"))
	require.NoError(t, s.RecordVisit(ctx, "h2", "ua", "/database.json"))
	require.NoError(t, s.RecordLoad(ctx, LoadRecord{Source: "db.json", Outcome: "ok", Checksum: "c1"}))
	require.NoError(t, s.RecordLoad(ctx, LoadRecord{Source: "db.json", Outcome: "parse_error"}))
	require.NoError(t, s.SaveSnapshot(ctx, "c1", []byte("{}")))

	stats, err := s.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalVisitors)
	assert.EqualValues(t, 2, stats.UniqueVisitors)
	assert.EqualValues(t, 3, stats.VisitorsToday)
	assert.EqualValues(t, 3, stats.VisitorsThisWeek)
	assert.EqualValues(t, 2, stats.TotalLoads)
	assert.EqualValues(t, 1, stats.FailedLoads)
	require.NotNil(t, stats.LastLoad)
	require.NotNil(t, stats.Snapshot)
	assert.Equal(t, "c1", stats.Snapshot.Checksum)
	assert.EqualValues(t, 2, stats.Snapshot.Size)
	require.NotEmpty(t, stats.TopPaths)
	assert.Equal(t, PathCount{Path: "/", Views: 2}, stats.TopPaths[0])

	removed, err := s.Cleanup(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	stats, err = s.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVisitors)
	assert.Empty(t, stats.TopPaths)
}

func TestStatsOnEmptyDatabase(t *testing.T) {
	stats, err := openTestStore(t).Stats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, stats.LastLoad)
	assert.Nil(t, stats.Snapshot)
}
