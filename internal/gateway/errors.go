package gateway

import (
	"fmt"
	"strings"
)

// APIError is a non-success remote response. It carries the operation
// name and the number of queries issued so far, so a failed run can be
// diagnosed from the error alone. The wrapped error retains the status
// line and response body reported by the transport.
type APIError struct {
	Op      string
	Queries int
	Err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed after %d queries: %v", e.Op, e.Queries, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// RateLimitError marks the undocumented anti-abuse limit. It is handled
// exactly like any other remote failure; only the message differs.
type RateLimitError struct {
	Op      string
	Queries int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: too many requests in a short amount of time, you've hit the anti-abuse rate limit (after %d queries)", e.Op, e.Queries)
}

func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "403") || strings.Contains(msg, "rate limit")
}
