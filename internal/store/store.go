package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// state is everything a commit replaces. Items are shared between a state
// and its clones; the slices, maps and tag index are not.
type state struct {
	tasks     []*Task
	events    []*Event
	taskByID  map[string]*Task
	eventByID map[string]*Event
	index     *TagIndex
}

func newState() *state {
	return &state{
		taskByID:  make(map[string]*Task),
		eventByID: make(map[string]*Event),
		index:     NewTagIndex(),
	}
}

func (st *state) clone() *state {
	cp := &state{
		tasks:     append([]*Task(nil), st.tasks...),
		events:    append([]*Event(nil), st.events...),
		taskByID:  make(map[string]*Task, len(st.taskByID)),
		eventByID: make(map[string]*Event, len(st.eventByID)),
		index:     st.index.clone(),
	}
	for k, v := range st.taskByID {
		cp.taskByID[k] = v
	}
	for k, v := range st.eventByID {
		cp.eventByID[k] = v
	}
	return cp
}

func (st *state) insertTask(t *Task) {
	st.tasks = append(st.tasks, t)
	st.taskByID[t.id] = t
}

func (st *state) insertEvent(e *Event) {
	st.events = append(st.events, e)
	st.eventByID[e.id] = e
}

func (st *state) hasTask(t *Task) bool {
	return t != nil && st.taskByID[t.id] == t
}

func (st *state) hasEvent(e *Event) bool {
	return e != nil && st.eventByID[e.id] == e
}

func (st *state) hasItem(item Item) bool {
	switch v := item.(type) {
	case *Task:
		return st.hasTask(v)
	case *Event:
		return st.hasEvent(v)
	}
	return false
}

// removeTasks drops every task in drop, keeping the order of the rest
func (st *state) removeTasks(drop map[*Task]bool) {
	kept := make([]*Task, 0, len(st.tasks))
	for _, t := range st.tasks {
		if drop[t] {
			delete(st.taskByID, t.id)
			continue
		}
		kept = append(kept, t)
	}
	st.tasks = kept
}

func (st *state) removeEvents(drop map[*Event]bool) {
	kept := make([]*Event, 0, len(st.events))
	for _, e := range st.events {
		if drop[e] {
			delete(st.eventByID, e.id)
			continue
		}
		kept = append(kept, e)
	}
	st.events = kept
}

// Store owns the live tasks and events and the tag index over them.
//
// Load, Undo and Redo replace the whole state. Task and Event handles
// obtained before one of those calls are stale afterwards; fetch them again
// through Tasks, Events or the Find methods.
//
// A Store is not safe for concurrent use.
type Store struct {
	st      *state
	storage Storage
	nowFn   func() time.Time
	logger  *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used by the aggregate counters
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.nowFn = now
	}
}

// WithLogger sets the logger used for commit and invariant messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty store backed by storage. Call Load to pick up the
// committed state.
func New(storage Storage, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		st:      newState(),
		storage: storage,
		nowFn:   time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's notion of the current time
func (s *Store) Now() time.Time {
	return s.nowFn()
}

// Tasks returns the live tasks in display order
func (s *Store) Tasks() []*Task {
	return append([]*Task(nil), s.st.tasks...)
}

// Events returns the live events in display order
func (s *Store) Events() []*Event {
	return append([]*Event(nil), s.st.events...)
}

// FindTask returns the live task with the given ID
func (s *Store) FindTask(id string) (*Task, bool) {
	t, ok := s.st.taskByID[id]
	return t, ok
}

// FindEvent returns the live event with the given ID
func (s *Store) FindEvent(id string) (*Event, bool) {
	e, ok := s.st.eventByID[id]
	return e, ok
}

// TagIndex returns a copy of the current tag index
func (s *Store) TagIndex() *TagIndex {
	return s.st.index.clone()
}

// CountTags returns the number of distinct tags in use
func (s *Store) CountTags() int {
	return s.st.index.Len()
}

// CreateTask adds a default task to the live set. It is not persisted
// until Save.
func (s *Store) CreateTask() *Task {
	t := newTask()
	s.st.insertTask(t)
	return t
}

// CreateEvent adds a default event to the live set. It is not persisted
// until Save.
func (s *Store) CreateEvent() *Event {
	e := newEvent()
	s.st.insertEvent(e)
	return e
}

// AddTags tags a live item. Names it already carries are skipped.
func (s *Store) AddTags(item Item, names ...string) error {
	if !s.st.hasItem(item) {
		return ErrNotFound
	}
	added := item.tagSet().add(normalizeTags(names)...)
	s.st.index.Add(added...)
	return nil
}

// RemoveTags removes the given tags from a live item. Every name must be
// carried by the item or nothing is removed.
func (s *Store) RemoveTags(item Item, names ...string) error {
	if !s.st.hasItem(item) {
		return ErrNotFound
	}
	names = normalizeTags(names)
	tags := item.tagSet()
	for _, name := range names {
		if !tags.has(name) {
			return fmt.Errorf("%w: %q", ErrTagNotFound, name)
		}
	}
	if err := s.st.index.Remove(names...); err != nil {
		return s.invariant(err)
	}
	for _, name := range names {
		tags.remove(name)
	}
	return nil
}

// ClearTags removes every tag from a live item
func (s *Store) ClearTags(item Item) error {
	if !s.st.hasItem(item) {
		return ErrNotFound
	}
	if err := s.st.index.RemoveItems(item); err != nil {
		return s.invariant(err)
	}
	item.tagSet().clear()
	return nil
}

// DestroyTask removes a task, drains its tags and commits
func (s *Store) DestroyTask(t *Task) error {
	return s.commit("destroy task", func(st *state) error {
		if !st.hasTask(t) {
			return ErrNotFound
		}
		if err := st.index.RemoveItems(t); err != nil {
			return s.invariant(err)
		}
		st.removeTasks(map[*Task]bool{t: true})
		return nil
	})
}

// DestroyEvent removes an event, drains its tags and commits
func (s *Store) DestroyEvent(e *Event) error {
	return s.commit("destroy event", func(st *state) error {
		if !st.hasEvent(e) {
			return ErrNotFound
		}
		if err := st.index.RemoveItems(e); err != nil {
			return s.invariant(err)
		}
		st.removeEvents(map[*Event]bool{e: true})
		return nil
	})
}

// DestroyAll removes every task and event and commits
func (s *Store) DestroyAll() error {
	return s.commit("destroy all", func(st *state) error {
		if err := st.index.RemoveItems(items(st.tasks, st.events)...); err != nil {
			return s.invariant(err)
		}
		st.tasks = nil
		st.events = nil
		st.taskByID = make(map[string]*Task)
		st.eventByID = make(map[string]*Event)
		return nil
	})
}

// DestroyByList removes the given tasks and events and commits. Entries
// that are not live are ignored.
func (s *Store) DestroyByList(tasks []*Task, events []*Event) error {
	return s.commit("destroy list", func(st *state) error {
		dropTasks := make(map[*Task]bool)
		dropEvents := make(map[*Event]bool)
		var live []Item
		for _, t := range tasks {
			if st.hasTask(t) && !dropTasks[t] {
				dropTasks[t] = true
				live = append(live, t)
			}
		}
		for _, e := range events {
			if st.hasEvent(e) && !dropEvents[e] {
				dropEvents[e] = true
				live = append(live, e)
			}
		}
		if err := st.index.RemoveItems(live...); err != nil {
			return s.invariant(err)
		}
		st.removeTasks(dropTasks)
		st.removeEvents(dropEvents)
		return nil
	})
}

// commit applies stage to a copy of the state, saves that copy and only
// then makes it current. A failed save leaves the store as it was.
func (s *Store) commit(op string, stage func(st *state) error) error {
	staged := s.st.clone()
	if err := stage(staged); err != nil {
		return err
	}
	if err := s.save(op, staged); err != nil {
		s.logger.Error("commit failed", "op", op, "err", err)
		return &PersistenceError{Op: op, Err: err}
	}
	s.st = staged
	s.logger.Debug("committed", "op", op, "tasks", len(staged.tasks), "events", len(staged.events), "tags", staged.index.Len())
	return nil
}

func (s *Store) save(op string, st *state) error {
	if labeled, ok := s.storage.(LabeledStorage); ok {
		return labeled.SaveOp(op, st.snapshot())
	}
	return s.storage.Save(st.snapshot())
}

func (s *Store) invariant(err error) error {
	s.logger.Error("tag index out of sync", "err", err)
	return err
}

// CountIncompleteTasks returns the number of tasks not marked complete
func (s *Store) CountIncompleteTasks() int {
	count := 0
	for _, t := range s.st.tasks {
		if !t.completed {
			count++
		}
	}
	return count
}

// CountOverdueTasks returns the number of incomplete tasks due before now
func (s *Store) CountOverdueTasks() int {
	now := s.nowFn()
	count := 0
	for _, t := range s.st.tasks {
		if t.IsOverdue(now) {
			count++
		}
	}
	return count
}

// CountFutureEvents returns the number of events starting at or after now
func (s *Store) CountFutureEvents() int {
	now := s.nowFn()
	count := 0
	for _, e := range s.st.events {
		if e.IsFuture(now) {
			count++
		}
	}
	return count
}

// Save commits the current state
func (s *Store) Save() error {
	if err := s.save("save", s.st); err != nil {
		s.logger.Error("save failed", "err", err)
		return &PersistenceError{Op: "save", Err: err}
	}
	s.logger.Debug("saved", "tasks", len(s.st.tasks), "events", len(s.st.events))
	return nil
}

// Load replaces the state with the one at the storage cursor
func (s *Store) Load() error {
	snap, err := s.storage.Load()
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}
	s.st = restoreState(snap)
	return nil
}

// Undo rolls the state back one commit
func (s *Store) Undo() error {
	snap, err := s.storage.Undo()
	if err != nil {
		if errors.Is(err, ErrNothingToUndo) {
			return ErrNothingToUndo
		}
		return &PersistenceError{Op: "undo", Err: err}
	}
	s.st = restoreState(snap)
	s.logger.Debug("undone", "undo_size", s.storage.UndoSize(), "redo_size", s.storage.RedoSize())
	return nil
}

// Redo rolls the state forward one commit
func (s *Store) Redo() error {
	snap, err := s.storage.Redo()
	if err != nil {
		if errors.Is(err, ErrNothingToRedo) {
			return ErrNothingToRedo
		}
		return &PersistenceError{Op: "redo", Err: err}
	}
	s.st = restoreState(snap)
	s.logger.Debug("redone", "undo_size", s.storage.UndoSize(), "redo_size", s.storage.RedoSize())
	return nil
}

// UndoSize returns how many undo steps are available
func (s *Store) UndoSize() int {
	return s.storage.UndoSize()
}

// RedoSize returns how many redo steps are available
func (s *Store) RedoSize() int {
	return s.storage.RedoSize()
}

// Move relocates the backing storage
func (s *Store) Move(path string) error {
	if err := s.storage.Move(path); err != nil {
		return &PersistenceError{Op: "move", Err: err}
	}
	return nil
}

func items(tasks []*Task, events []*Event) []Item {
	out := make([]Item, 0, len(tasks)+len(events))
	for _, t := range tasks {
		out = append(out, t)
	}
	for _, e := range events {
		out = append(out, e)
	}
	return out
}

// normalizeTags trims names and drops blanks and repeats
func normalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
