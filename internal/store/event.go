package store

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry spanning a start and an end
type Event struct {
	id     string
	name   string
	start  *time.Time
	end    *time.Time
	source string
	tags   tagList
}

func newEvent() *Event {
	return &Event{id: uuid.New().String()}
}

// ID returns the event's stable identifier
func (e *Event) ID() string { return e.id }

// Name returns the event name
func (e *Event) Name() string { return e.name }

// SetName renames the event
func (e *Event) SetName(name string) { e.name = name }

// Source returns the key of the calendar entry (or occurrence) the event
// was imported from
func (e *Event) Source() string { return e.source }

// SetSource records where an imported event came from
func (e *Event) SetSource(key string) { e.source = key }

// Tags returns a copy of the event's tags in insertion order
func (e *Event) Tags() []string { return e.tags.list() }

// Kind returns KindEvent
func (e *Event) Kind() Kind { return KindEvent }

func (e *Event) HasStatus() bool    { return true }
func (e *Event) HasDateRange() bool { return true }

func (e *Event) tagSet() *tagList { return &e.tags }

// StartDate returns the start, or nil if unset
func (e *Event) StartDate() *time.Time { return copyTime(e.start) }

// EndDate returns the end, or nil if unset
func (e *Event) EndDate() *time.Time { return copyTime(e.end) }

// SetRange sets start and end together. Either may be nil; when both are
// present end must not be before start.
func (e *Event) SetRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidRange
	}
	e.start = copyTime(start)
	e.end = copyTime(end)
	return nil
}

// IsOver returns true if the event ended strictly before now.
// An event without an end is never over.
func (e *Event) IsOver(now time.Time) bool {
	if e.end == nil {
		return false
	}
	return e.end.Before(now)
}

// IsFuture returns true if the event starts at or after now
func (e *Event) IsFuture(now time.Time) bool {
	if e.start == nil {
		return false
	}
	return !e.start.Before(now)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
