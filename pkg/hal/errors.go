package hal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRelationMissing is matched by *NavigationError.
	ErrRelationMissing = errors.New("relation not advertised")

	// ErrTransport is matched by *TransportError.
	ErrTransport = errors.New("transport failure")

	// ErrDecode is matched by *DecodeError.
	ErrDecode = errors.New("unexpected response shape")
)

// NavigationError is returned when a relation is followed that the current
// resource does not advertise. It indicates an API or version mismatch, not
// a network problem.
type NavigationError struct {
	Relation  string
	URL       string
	Available []string
}

func (e *NavigationError) Error() string {
	msg := fmt.Sprintf("relation %q not found on resource %s", e.Relation, e.URL)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *NavigationError) Is(target error) bool {
	return target == ErrRelationMissing
}

// TransportError covers network, timeout and DNS failures as well as
// non-success HTTP statuses.
type TransportError struct {
	Method string
	URL    string
	// StatusCode is zero when no response was received.
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// DecodeError is returned when a response body does not have the expected
// shape.
type DecodeError struct {
	Target string
	URL    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("failed to decode %s from %s: %v", e.Target, e.URL, e.Err)
	}
	return fmt.Sprintf("failed to decode %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
