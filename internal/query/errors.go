package query

import (
	"errors"
	"strings"
)

// Validation failures. A *ValidationError matches exactly one of these
// with errors.Is.
var (
	ErrNoKeyword        = errors.New("no keyword found")
	ErrItemTypeConflict = errors.New("item type conflict")
	ErrDateConflict     = errors.New("date conflict")
	ErrUnparseableDate  = errors.New("unparseable date")
)

// ValidationError rejects a query before any item is looked at. Syntax is
// the usage line that disambiguates the mistake.
type ValidationError struct {
	Kind    error
	Syntax  string
	Message string
}

func (e *ValidationError) Error() string {
	return strings.ReplaceAll(e.Message, "\n", " ")
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func invalid(kind error, syntax, message string) *ValidationError {
	return &ValidationError{Kind: kind, Syntax: syntax, Message: message}
}
