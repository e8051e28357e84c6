package query

import "fmt"

// Pluralize picks singular or plural by count
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// CountItems describes how many tasks and events there are, e.g.
// "2 tasks and 1 event". Zero sides are left out; nothing at all is
// "nothing".
func CountItems(tasks, events int) string {
	if tasks == 0 && events == 0 {
		return "nothing"
	}
	taskPart := fmt.Sprintf("%d %s", tasks, Pluralize(tasks, "task", "tasks"))
	eventPart := fmt.Sprintf("%d %s", events, Pluralize(events, "event", "events"))
	switch {
	case tasks != 0 && events != 0:
		return taskPart + " and " + eventPart
	case tasks != 0:
		return taskPart
	default:
		return eventPart
	}
}
