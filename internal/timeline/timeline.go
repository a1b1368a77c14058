// Package timeline groups dated records by calendar year for the experience
// and education sections.
package timeline

import (
	"slices"
	"time"
)

// Entry is one record placed on the timeline.
type Entry[T any] struct {
	Item  T
	Start time.Time
	// FirstInGroup marks the latest entry of its year; only that entry shows
	// the year label.
	FirstInGroup bool
}

// Group is the set of entries sharing a start year. Year is 0 for records
// whose start date is unknown.
type Group[T any] struct {
	Year    int
	Entries []Entry[T]
}

// ByYear orders items newest first and buckets them by the year of start.
// Groups are strictly descending by year, entries within a group are
// non-increasing by start, and equal starts keep their input order. Items
// with a zero start time land in a trailing Year 0 group.
func ByYear[T any](items []T, start func(T) time.Time) []Group[T] {
	entries := make([]Entry[T], 0, len(items))
	for _, it := range items {
		entries = append(entries, Entry[T]{Item: it, Start: start(it)})
	}
	slices.SortStableFunc(entries, func(a, b Entry[T]) int {
		return b.Start.Compare(a.Start)
	})

	var groups []Group[T]
	for _, e := range entries {
		year := yearOf(e.Start)
		if n := len(groups); n == 0 || groups[n-1].Year != year {
			e.FirstInGroup = true
			groups = append(groups, Group[T]{Year: year})
		}
		last := &groups[len(groups)-1]
		last.Entries = append(last.Entries, e)
	}
	return groups
}

// Flatten returns the items of groups in display order.
func Flatten[T any](groups []Group[T]) []T {
	var out []T
	for _, g := range groups {
		for _, e := range g.Entries {
			out = append(out, e.Item)
		}
	}
	return out
}

// yearOf buckets in UTC to agree with the instant order ByYear sorts by.
func yearOf(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	return t.UTC().Year()
}
