package records

import (
	"errors"
	"fmt"
)

// MalformedError reports an input record that failed required-field or
// type-coercion checks. It aborts processing of the offending file only; the
// run continues with the next file.
//
// Line is 1-based for activity logs and 0 for song files (one object per
// file). Field names the offending JSON attribute when known.
type MalformedError struct {
	Path   string
	Line   int
	Field  string
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	msg := "malformed record: " + e.Path
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d", msg, e.Line)
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedError) Unwrap() error { return e.Err }

// IsMalformed reports whether err (or anything it wraps) is a MalformedError.
func IsMalformed(err error) bool {
	var m *MalformedError
	return errors.As(err, &m)
}
