package backend

import (
	"errors"
	"fmt"
)

// ErrAttemptsExhausted is returned by Regenerate when the attempt counter has
// passed the cap; no request is sent in that case.
var ErrAttemptsExhausted = errors.New("regeneration attempts exhausted")

// ConnectionError indicates the backend could not be reached: dial failure,
// timeout, or any other transport-level problem.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("backend unreachable at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError indicates a reply arrived but was not a valid protocol
// payload: undecodable body, or a success reply carrying no code.
type ProtocolError struct {
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed backend reply: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("malformed backend reply: %s", e.Message)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// BackendError indicates a well-formed reply that reports failure, either via
// an HTTP error status or a non-empty error field in the payload.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}
