package portfolio

import (
	"cmp"
	"slices"
)

// SortProjects returns a copy of projects ordered by Order ascending. Projects
// without an Order come after all ordered ones; ties keep input order.
func SortProjects(projects []Project) []Project {
	out := slices.Clone(projects)
	slices.SortStableFunc(out, func(a, b Project) int {
		switch {
		case a.Order == nil && b.Order == nil:
			return 0
		case a.Order == nil:
			return 1
		case b.Order == nil:
			return -1
		}
		return cmp.Compare(*a.Order, *b.Order)
	})
	return out
}
