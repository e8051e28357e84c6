// Package filter holds the query predicates over tasks and events. Every
// function returns a new slice, never mutates its input, and keeps the
// relative order of the items it keeps.
package filter

import (
	"strings"
	"time"

	"github.com/dori/dayplan/internal/store"
)

var (
	// MinTime stands in for a missing lower bound or a missing date
	MinTime = time.Time{}
	// MaxTime stands in for a missing upper bound
	MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// Floor truncates t to midnight in its own location
func Floor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func floorOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return Floor(fallback)
	}
	return Floor(*t)
}

func keep[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

func nameMatches(name string, prefixes []string) bool {
	folded := strings.ToLower(name)
	for _, p := range prefixes {
		if strings.HasPrefix(folded, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func tagMatches(tags []string, candidates []string) bool {
	for _, tag := range tags {
		for _, c := range candidates {
			if tag == c {
				return true
			}
		}
	}
	return false
}

func byName[T store.Item](items []T, names []string) []T {
	if len(items) == 0 || len(names) == 0 {
		return items
	}
	return keep(items, func(item T) bool { return nameMatches(item.Name(), names) })
}

func byTag[T store.Item](items []T, tags []string) []T {
	if len(items) == 0 || len(tags) == 0 {
		return items
	}
	return keep(items, func(item T) bool { return tagMatches(item.Tags(), tags) })
}

func union[T store.Item](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]T{a, b} {
		for _, item := range list {
			if seen[item.ID()] {
				continue
			}
			seen[item.ID()] = true
			out = append(out, item)
		}
	}
	return out
}
