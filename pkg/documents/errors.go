package documents

import (
	"errors"
	"strings"
)

var (
	// ErrAPIUnavailable means the API root could not be reached or did not
	// advertise the relation an operation starts from. Either authentication
	// failed or the base URL is unreachable.
	ErrAPIUnavailable = errors.New("document API unavailable")

	// ErrNoResults means a document query matched nothing. Queries report
	// this as an error rather than returning an empty list.
	ErrNoResults = errors.New("no documents found")

	// ErrNotFound means the requested document or version does not exist.
	ErrNotFound = errors.New("document not found")
)

// Error is a document operation failure. Err is one of the sentinel errors
// above; Cause is the lower-level error, if any.
type Error struct {
	Op    string
	Err   error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 4)
	parts = append(parts, e.Op)
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
