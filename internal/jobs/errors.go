package jobs

import "errors"

var (
	// ErrNotFound indicates no record exists for the requested job id.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidTransition indicates a lifecycle rule was violated. It signals
	// a concurrency or logic bug, not a normal business error.
	ErrInvalidTransition = errors.New("invalid job transition")
	// ErrConcurrentModification indicates the stored record changed since it
	// was last read.
	ErrConcurrentModification = errors.New("job modified concurrently")
)
