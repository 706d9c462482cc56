package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Queue errors
	ErrQueueUnavailable = errors.New("job queue unavailable")
	ErrNotLeaseHolder   = errors.New("job is not leased by this worker")
	ErrTerminalState    = errors.New("job already reached a terminal state")

	// Generation errors
	ErrMalformedPlan = errors.New("generated plan is malformed")

	// Submission errors
	ErrRateLimited = errors.New("too many generation requests")
	ErrNoProfile   = errors.New("profile not found")
)
