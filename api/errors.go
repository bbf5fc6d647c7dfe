package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the backend rejects the session
	// token. The local token store has already been cleared.
	ErrUnauthorized = errors.New("session expired or invalid")
	// ErrForbidden is returned when the session role may not perform
	// the operation.
	ErrForbidden = errors.New("operation requires an admin session")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
)

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	Op      string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Message, e.Status)
}
