package store

import "errors"

var (
	// ErrNotFound is returned when a row the caller asked for does not
	// exist or is not visible to the calling client.
	ErrNotFound = errors.New("not found")

	// ErrCompleted is returned when a write targets an assessment that
	// has already been completed. Completed sessions are immutable.
	ErrCompleted = errors.New("assessment already completed")
)
