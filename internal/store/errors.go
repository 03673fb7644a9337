package store

import (
	"errors"
	"fmt"
)

// Op names the store operation that failed.
type Op string

const (
	OpOpen  Op = "open"
	OpFetch Op = "fetch"
	OpSave  Op = "save"
)

var (
	// ErrOpen matches any *Error raised while opening the store.
	ErrOpen = errors.New("store open failed")
	// ErrFetch matches any *Error raised while reading records.
	ErrFetch = errors.New("store fetch failed")
	// ErrSave matches any *Error raised while replacing records.
	ErrSave = errors.New("store save failed")
	// ErrIndexRange is returned when a record index does not fit the schema.
	ErrIndexRange = errors.New("record index out of range")

	errNotOpen = errors.New("store is not open")
)

// Error is the typed failure returned by every Store operation.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against ErrOpen, ErrFetch or ErrSave.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrOpen:
		return e.Op == OpOpen
	case ErrFetch:
		return e.Op == OpFetch
	case ErrSave:
		return e.Op == OpSave
	}
	return false
}

func opError(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
