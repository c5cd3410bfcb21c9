package session

import "errors"

// Sentinel errors returned by session operations. Handlers map them to
// user-facing notices with errors.Is.
var (
	// ErrEmptyInput is returned when a submission is empty after trimming.
	ErrEmptyInput = errors.New("input is empty")

	// ErrBusy is returned when a submission arrives while a completion
	// request is already in flight. The attempt is ignored, not queued.
	ErrBusy = errors.New("a request is already in flight")

	// ErrNotFound is returned when a conversation or message ID does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownMode is returned when a mode outside the fixed set is
	// selected.
	ErrUnknownMode = errors.New("unknown topic mode")
)
