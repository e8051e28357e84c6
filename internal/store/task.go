package store

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a todo item. A task without a due date is floating.
type Task struct {
	id        string
	name      string
	due       *time.Time
	completed bool
	source    string
	tags      tagList
}

func newTask() *Task {
	return &Task{id: uuid.New().String()}
}

// ID returns the task's stable identifier
func (t *Task) ID() string { return t.id }

// Name returns the task name
func (t *Task) Name() string { return t.name }

// SetName renames the task
func (t *Task) SetName(name string) { t.name = name }

// Source returns the key of the calendar entry the task was imported from
func (t *Task) Source() string { return t.source }

// SetSource records where an imported task came from
func (t *Task) SetSource(key string) { t.source = key }

// Tags returns a copy of the task's tags in insertion order
func (t *Task) Tags() []string { return t.tags.list() }

// Kind returns KindTask
func (t *Task) Kind() Kind { return KindTask }

func (t *Task) HasStatus() bool    { return true }
func (t *Task) HasDateRange() bool { return false }

func (t *Task) tagSet() *tagList { return &t.tags }

// DueDate returns the due date, or nil for floating tasks
func (t *Task) DueDate() *time.Time { return copyTime(t.due) }

// SetDueDate sets or clears (nil) the due date
func (t *Task) SetDueDate(due *time.Time) { t.due = copyTime(due) }

// IsFloating returns true if the task has no due date
func (t *Task) IsFloating() bool {
	return t.due == nil
}

// IsCompleted returns the completion flag
func (t *Task) IsCompleted() bool { return t.completed }

// SetCompleted marks the task complete or incomplete
func (t *Task) SetCompleted(completed bool) { t.completed = completed }

// IsOverdue returns true if the task is incomplete and past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	if t.due == nil || t.completed {
		return false
	}
	return t.due.Before(now)
}
