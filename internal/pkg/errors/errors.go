package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConcurrencyExhausted signals that an optimistic write lost the
	// version race on every allowed attempt.
	ErrConcurrencyExhausted = errors.New("concurrency retries exhausted")
)
