package recipebox

import (
	"fmt"
)

// FetchError reports that a recipe source could not be reached or answered
// with a non-success status. StatusCode is zero for transport failures.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s: status %d", e.Op, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: %s: fetch failed", e.Op, e.URL)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports that no recipe matched the requested identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("recipe %q not found", e.ID)
}

// ValidationError reports a user-entered query that cannot be submitted.
type ValidationError struct {
	Query  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query %q: %s", e.Query, e.Reason)
}
