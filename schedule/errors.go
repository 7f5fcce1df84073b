package schedule

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching across the evaluator.
var (
	// ErrUnsupportedType reports an object whose type is not one of the
	// nine schedule formats.
	ErrUnsupportedType = errors.New("schedule: unsupported schedule type")

	// ErrNoDocument reports evaluation of a document-required format
	// (Week:Daily, Week:Compact, Year) with no document available.
	ErrNoDocument = errors.New("schedule: document required to resolve schedule references")

	// ErrMalformed is the base for malformed schedule data discovered
	// mid-evaluation. Malformed data is reported, never silently
	// defaulted; the only fallback-to-zero points are the documented
	// unmatched-day-rule cases.
	ErrMalformed = errors.New("schedule: malformed schedule")
)

// MalformedError wraps a lower-level value error (a non-numeric field
// where a number was expected, a missing referenced day schedule) with
// the schedule context it occurred in.
type MalformedError struct {
	Schedule string
	Detail   string
	Cause    error
}

func (e *MalformedError) Error() string {
	msg := fmt.Sprintf("schedule: %s: %s", e.Schedule, e.Detail)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

func malformed(name, detail string, cause error) error {
	return &MalformedError{Schedule: name, Detail: detail, Cause: cause}
}
