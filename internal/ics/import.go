package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/dori/dayplan/internal/store"
)

const (
	defaultHorizon        = 90 * 24 * time.Hour
	defaultMaxOccurrences = 500
)

// ImportOptions controls how a calendar is merged into the store
type ImportOptions struct {
	// Recurring events are expanded into occurrences between Now and
	// Now+Horizon.
	Now     time.Time
	Horizon time.Duration

	// MaxOccurrences caps the expansion of a single recurring event
	MaxOccurrences int

	// Location is used for floating and all-day times. Defaults to time.Local.
	Location *time.Location
}

// ImportReport counts what Import did
type ImportReport struct {
	Tasks     int
	Events    int
	Skipped   int
	Truncated []string
}

type parsedTask struct {
	source    string
	name      string
	due       *time.Time
	completed bool
	tags      []string
}

type parsedEvent struct {
	source     string
	name       string
	start, end *time.Time
	tags       []string
}

// Import reads a calendar from r and creates its todos and events in s.
// Each imported item remembers the UID it came from (UID plus start for an
// occurrence of a recurring event); components whose key matches an item
// ID or a remembered key are skipped, so importing the same calendar twice
// does nothing. Nothing is created when the calendar cannot be read. The
// caller commits with Save.
func Import(s *store.Store, r io.Reader, opts ImportOptions) (*ImportReport, error) {
	if opts.Now.IsZero() {
		opts.Now = s.Now()
	}
	if opts.Horizon <= 0 {
		opts.Horizon = defaultHorizon
	}
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = defaultMaxOccurrences
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	report := &ImportReport{}
	seen := knownKeys(s)
	claim := func(key string) bool {
		if key == "" {
			return true
		}
		if seen[key] {
			report.Skipped++
			return false
		}
		seen[key] = true
		return true
	}

	var (
		tasks  []parsedTask
		events []parsedEvent
	)

	for _, todo := range cal.Todos() {
		if !claim(uid(&todo.ComponentBase)) {
			continue
		}
		t, err := readTodo(todo, opts.Location)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	for _, ve := range cal.Events() {
		id := uid(&ve.ComponentBase)
		if id != "" && seen[id] {
			report.Skipped++
			continue
		}
		occurrences, truncated, err := readEvent(ve, opts)
		if err != nil {
			return nil, err
		}
		if truncated {
			report.Truncated = append(report.Truncated, id)
		}
		for _, occ := range occurrences {
			if claim(occ.source) {
				events = append(events, occ)
			}
		}
	}

	for _, pt := range tasks {
		t := s.CreateTask()
		t.SetSource(pt.source)
		t.SetName(pt.name)
		t.SetDueDate(pt.due)
		t.SetCompleted(pt.completed)
		if err := s.AddTags(t, pt.tags...); err != nil {
			return report, err
		}
		report.Tasks++
	}
	for _, pe := range events {
		e := s.CreateEvent()
		e.SetSource(pe.source)
		e.SetName(pe.name)
		if err := e.SetRange(pe.start, pe.end); err != nil {
			return report, err
		}
		if err := s.AddTags(e, pe.tags...); err != nil {
			return report, err
		}
		report.Events++
	}
	return report, nil
}

func readTodo(todo *ical.VTodo, loc *time.Location) (parsedTask, error) {
	t := parsedTask{
		source: uid(&todo.ComponentBase),
		name:   propValue(&todo.ComponentBase, ical.ComponentPropertySummary),
		tags: categories(&todo.ComponentBase),
	}
	if due := todo.GetProperty(ical.ComponentPropertyDue); due != nil && due.Value != "" {
		v, err := parseTime(due.Value, loc)
		if err != nil {
			return t, fmt.Errorf("failed to parse due date of %q: %w", t.name, err)
		}
		if !strings.Contains(due.Value, "T") {
			v = endOfDay(v)
		}
		t.due = &v
	}
	status := strings.ToUpper(propValue(&todo.ComponentBase, ical.ComponentPropertyStatus))
	t.completed = status == statusCompleted || todo.GetProperty(ical.ComponentPropertyCompleted) != nil
	return t, nil
}

// readEvent returns the occurrences of ve. A recurring event yields one
// occurrence per recurrence inside the import window.
func readEvent(ve *ical.VEvent, opts ImportOptions) ([]parsedEvent, bool, error) {
	base := parsedEvent{
		source: uid(&ve.ComponentBase),
		name:   propValue(&ve.ComponentBase, ical.ComponentPropertySummary),
		tags:   categories(&ve.ComponentBase),
	}

	start, allDay, err := eventTime(ve, ical.ComponentPropertyDtStart, opts.Location)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse start of %q: %w", base.name, err)
	}
	end, _, err := eventTime(ve, ical.ComponentPropertyDtEnd, opts.Location)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse end of %q: %w", base.name, err)
	}
	if start != nil && end == nil && allDay {
		e := start.AddDate(0, 0, 1)
		end = &e
	}
	if allDay && end != nil {
		// DTEND is exclusive for all-day events
		e := end.Add(-time.Second)
		end = &e
	}
	if start != nil && end != nil && end.Before(*start) {
		end = nil
	}
	base.start, base.end = start, end

	rule := propValue(&ve.ComponentBase, ical.ComponentPropertyRrule)
	if rule == "" || start == nil {
		return []parsedEvent{base}, false, nil
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse RRULE of %q: %w", base.name, err)
	}
	r.DTStart(*start)

	var set rrule.Set
	set.RRule(r)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if ex, err := parseTime(part, start.Location()); err == nil {
				set.ExDate(ex)
			}
		}
	}

	var duration time.Duration
	if end != nil {
		duration = end.Sub(*start)
	}
	windowStart := opts.Now.In(start.Location())
	windowEnd := opts.Now.Add(opts.Horizon).In(start.Location())
	times := set.Between(windowStart, windowEnd, true)

	truncated := false
	if len(times) > opts.MaxOccurrences {
		times = times[:opts.MaxOccurrences]
		truncated = true
	}

	out := make([]parsedEvent, 0, len(times))
	for _, occStart := range times {
		occ := base
		s := occStart
		occ.start = &s
		if end != nil {
			e := occStart.Add(duration)
			occ.end = &e
		}
		occ.tags = append([]string(nil), base.tags...)
		if base.source != "" {
			occ.source = occurrenceKey(base.source, occStart)
		}
		out = append(out, occ)
	}
	return out, truncated, nil
}

// eventTime reads a DTSTART or DTEND property. allDay is true for DATE
// values. A missing property yields nil.
func eventTime(ve *ical.VEvent, prop ical.ComponentProperty, loc *time.Location) (*time.Time, bool, error) {
	p := ve.GetProperty(prop)
	if p == nil || p.Value == "" {
		return nil, false, nil
	}
	allDay := !strings.Contains(p.Value, "T")
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		allDay = true
	}

	var (
		t   time.Time
		err error
	)
	if !allDay {
		if prop == ical.ComponentPropertyDtStart {
			t, err = ve.GetStartAt()
		} else {
			t, err = ve.GetEndAt()
		}
	}
	if allDay || err != nil {
		t, err = parseTime(p.Value, loc)
	}
	if err != nil {
		return nil, allDay, err
	}
	return &t, allDay, nil
}

// knownKeys collects every item ID and import key already in s
func knownKeys(s *store.Store) map[string]bool {
	keys := make(map[string]bool)
	add := func(key string) {
		if key != "" {
			keys[key] = true
		}
	}
	for _, t := range s.Tasks() {
		add(t.ID())
		add(t.Source())
	}
	for _, e := range s.Events() {
		add(e.ID())
		add(e.Source())
	}
	return keys
}

func occurrenceKey(uid string, start time.Time) string {
	return uid + "/" + start.UTC().Format(utcLayout)
}

func uid(c *ical.ComponentBase) string {
	return propValue(c, ical.ComponentPropertyUniqueId)
}

func propValue(c *ical.ComponentBase, prop ical.ComponentProperty) string {
	if p := c.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func categories(c *ical.ComponentBase) []string {
	var tags []string
	for _, p := range c.GetProperties(ical.ComponentPropertyCategories) {
		for _, tag := range strings.Split(p.Value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
