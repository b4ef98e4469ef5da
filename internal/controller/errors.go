package controller

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTitle is returned when a title is empty after trimming.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrTitleTooLong is returned when a title exceeds the draft limit.
	ErrTitleTooLong = errors.New("task title is too long")

	// ErrDuplicateTitle is returned when another task already has the title,
	// compared case-insensitively.
	ErrDuplicateTitle = errors.New("task with this title already exists")

	// ErrTaskNotFound is returned when an action names a row that is no
	// longer in the local collection.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoAction is returned when an event does not resolve to a row action.
	ErrNoAction = errors.New("no task action")
)

// NetworkError wraps a failed task API call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err was caused by the user's input rather
// than by the task API.
func IsUserError(err error) bool {
	return errors.Is(err, ErrEmptyTitle) ||
		errors.Is(err, ErrTitleTooLong) ||
		errors.Is(err, ErrDuplicateTitle) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrNoAction)
}
