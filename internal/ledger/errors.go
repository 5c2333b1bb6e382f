package ledger

import (
	"fmt"
	"strings"
)

// APIError describes a failed ledger API call. Err is one of the common
// sentinel errors (unavailable, rejected, malformed) so callers can branch
// with errors.Is; Cause carries the underlying transport or decode failure.
type APIError struct {
	Err        error
	Cause      error
	Method     string
	Path       string
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %v", e.Method, e.Path, e.Err)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *APIError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
