// Package faults defines the error kinds surfaced by an analysis run.
//
// Only run-fatal conditions become faults: bad parameters, missing input,
// or a failed listing call. Per-post hydration failures are counted by the
// scraper instead of raised, so they never abort a run.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal analysis error.
type Kind string

const (
	// KindValidation marks missing or empty input data.
	KindValidation Kind = "VALIDATION"
	// KindConfiguration marks invalid run parameters.
	KindConfiguration Kind = "CONFIGURATION"
	// KindSource marks a failed listing call against the content source.
	KindSource Kind = "SOURCE"
)

// Error is a fatal error with a kind and optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation fault.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Configuration creates a configuration fault.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Source creates a source fault wrapping the underlying listing error.
func Source(err error, format string, args ...any) *Error {
	return &Error{Kind: KindSource, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is (or wraps) a fault of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}
