// Package ics converts between the store and iCalendar (RFC 5545) files.
// Tasks map to VTODO components and events to VEVENT components.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dori/dayplan/internal/store"
)

const (
	productID = "-//dayplan//dayplan//EN"

	statusCompleted   = "COMPLETED"
	statusNeedsAction = "NEEDS-ACTION"

	utcLayout = "20060102T150405Z"
)

// Export writes every task and event of s as one calendar
func Export(w io.Writer, s *store.Store) error {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)

	stamp := s.Now().UTC()

	for _, t := range s.Tasks() {
		todo := cal.AddTodo(t.ID())
		todo.SetProperty(ical.ComponentPropertyDtstamp, stamp.Format(utcLayout))
		todo.SetSummary(t.Name())
		if due := t.DueDate(); due != nil {
			todo.SetProperty(ical.ComponentPropertyDue, due.UTC().Format(utcLayout))
		}
		status := statusNeedsAction
		if t.IsCompleted() {
			status = statusCompleted
		}
		todo.SetProperty(ical.ComponentPropertyStatus, status)
		for _, tag := range t.Tags() {
			todo.AddProperty(ical.ComponentPropertyCategories, tag)
		}
	}

	for _, e := range s.Events() {
		ev := cal.AddEvent(e.ID())
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Name())
		if start := e.StartDate(); start != nil {
			ev.SetStartAt(*start)
		}
		if end := e.EndDate(); end != nil {
			ev.SetEndAt(*end)
		}
		for _, tag := range e.Tags() {
			ev.AddProperty(ical.ComponentPropertyCategories, tag)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// parseTime parses a basic DATE or DATE-TIME value. Floating times are
// read in loc.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse(utcLayout, v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}
