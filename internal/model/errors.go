package model

import "errors"

var (
	// ErrNotFound is returned when no record exists for the given id.
	ErrNotFound = errors.New("post not found")

	// ErrNotCancellable is returned when a cancel targets a record that
	// has already left the scheduled state.
	ErrNotCancellable = errors.New("post is not cancellable")
)
