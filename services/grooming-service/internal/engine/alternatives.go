package engine

import (
	"sort"

	"github.com/smarterdog/grooming/services/grooming-service/internal/catalog"
)

// NearestAlternatives orders available slots by distance from requested, earlier slot
// first on ties, and returns at most max of them. The requested slot itself is skipped.
func NearestAlternatives(requested string, available []string, max int) []string {
	target := catalog.Minutes(requested)
	out := make([]string, 0, len(available))
	for _, s := range available {
		if s != requested {
			out = append(out, s)
		}
	}
	if target < 0 {
		if max > 0 && len(out) > max {
			out = out[:max]
		}
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := distance(catalog.Minutes(out[i]), target), distance(catalog.Minutes(out[j]), target)
		if di != dj {
			return di < dj
		}
		return catalog.Minutes(out[i]) < catalog.Minutes(out[j])
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
