package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("item not found")
	ErrTagNotFound   = errors.New("tag not found on item")
	ErrInvalidRange  = errors.New("end is before start")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrPersistence   = errors.New("persistence failure")
	ErrInvariant     = errors.New("tag index invariant violated")
)

// PersistenceError reports a Storage failure for the named operation
// (save, load, undo, redo, move).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// InvariantError means the TagIndex and the live items disagree. It is a
// programming error, never a user one.
type InvariantError struct {
	Tag   string
	Count int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tag index invariant violated: cannot decrement %q (count %d)", e.Tag, e.Count)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// OK reduces an operation result to a success flag
func OK(err error) bool {
	return err == nil
}
