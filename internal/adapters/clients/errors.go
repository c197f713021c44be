// Package clients provides the instrumented HTTP client used to reach the remote quote endpoint.
package clients

import "errors"

// Transport-level failures. The acl package translates them into domain errors.
var (
	// ErrCircuitOpen means the breaker is rejecting calls to an unhealthy endpoint.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
