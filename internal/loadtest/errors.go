package loadtest

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrUnexpectedStatus is returned for HTTP responses with an unexpected code.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMismatch is returned when the served scoreboard differs from the
	// local computation.
	ErrMismatch = errors.New("scoreboard mismatch")
)
