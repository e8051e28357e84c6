package filter

import (
	"time"

	"github.com/dori/dayplan/internal/store"
)

// EventsByName keeps events whose name starts with any of names, ignoring case
func EventsByName(events []*store.Event, names []string) []*store.Event {
	return byName(events, names)
}

// EventsByTag keeps events carrying any of tags (case-sensitive)
func EventsByTag(events []*store.Event, tags []string) []*store.Event {
	return byTag(events, tags)
}

// EventsByOver keeps events whose IsOver(now) equals over
func EventsByOver(events []*store.Event, over bool, now time.Time) []*store.Event {
	return keep(events, func(e *store.Event) bool { return e.IsOver(now) == over })
}

// EventsOnDate keeps events starting on the same day as date
func EventsOnDate(events []*store.Event, date time.Time) []*store.Event {
	day := Floor(date)
	return keep(events, func(e *store.Event) bool {
		start := e.StartDate()
		return start != nil && Floor(*start).Equal(day)
	})
}

// EventsInRange keeps events whose floored span overlaps [start, end].
// A missing event start counts as MinTime and a missing end as MaxTime.
func EventsInRange(events []*store.Event, start, end *time.Time) []*store.Event {
	lo, hi := bounds(start, end)
	return keep(events, func(e *store.Event) bool {
		from := floorOr(e.StartDate(), MinTime)
		to := floorOr(e.EndDate(), MaxTime)
		return !from.After(hi) && !to.Before(lo)
	})
}

// UnionEvents merges a and b, dropping repeats and keeping first-seen order
func UnionEvents(a, b []*store.Event) []*store.Event {
	return union(a, b)
}
