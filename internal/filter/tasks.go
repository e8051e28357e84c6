package filter

import (
	"time"

	"github.com/dori/dayplan/internal/store"
)

// TasksByName keeps tasks whose name starts with any of names, ignoring case
func TasksByName(tasks []*store.Task, names []string) []*store.Task {
	return byName(tasks, names)
}

// TasksByTag keeps tasks carrying any of tags (case-sensitive)
func TasksByTag(tasks []*store.Task, tags []string) []*store.Task {
	return byTag(tasks, tags)
}

// TasksByCompletion keeps tasks whose completion flag equals completed
func TasksByCompletion(tasks []*store.Task, completed bool) []*store.Task {
	return keep(tasks, func(t *store.Task) bool { return t.IsCompleted() == completed })
}

// TasksOnDate keeps tasks due on the same day as date. Floating tasks never match.
func TasksOnDate(tasks []*store.Task, date time.Time) []*store.Task {
	day := Floor(date)
	return keep(tasks, func(t *store.Task) bool {
		due := t.DueDate()
		return due != nil && Floor(*due).Equal(day)
	})
}

// TasksInRange keeps tasks whose floored due date lies in [start, end].
// A nil bound is open. Floating tasks count as due at MinTime, so they only
// survive when start is nil.
func TasksInRange(tasks []*store.Task, start, end *time.Time) []*store.Task {
	lo, hi := bounds(start, end)
	return keep(tasks, func(t *store.Task) bool {
		due := floorOr(t.DueDate(), MinTime)
		return !due.Before(lo) && !due.After(hi)
	})
}

// UnionTasks merges a and b, dropping repeats and keeping first-seen order
func UnionTasks(a, b []*store.Task) []*store.Task {
	return union(a, b)
}

func bounds(start, end *time.Time) (time.Time, time.Time) {
	lo, hi := MinTime, MaxTime
	if start != nil {
		lo = *start
	}
	if end != nil {
		hi = *end
	}
	return lo, hi
}
