package app

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the backend rejects the stored token
// (401/403). Callers clear cached credentials and prompt for a new login;
// the operation is never retried automatically.
var ErrUnauthorized = errors.New("unauthorized: your session has expired, please log in again")

// ValidationError reports rejected user input (blank text, missing field).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// StateGuardError reports an operation attempted in a state that forbids it,
// such as submitting a turn while viewing a locked past story.
type StateGuardError struct {
	Msg string
}

func (e *StateGuardError) Error() string { return e.Msg }

// BackendError carries a non-success backend response. Message holds the
// backend-provided detail when available.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed with status %d", e.Status)
}

// NetworkError wraps a transport-level failure (DNS, connect, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v (check your connection and try again)", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
