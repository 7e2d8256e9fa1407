// Package quanterrors defines the small closed set of error kinds the core
// surfaces to callers, per the error handling design: InvalidInput,
// InsufficientData, Numerical, ProviderError, and Cancelled.
package quanterrors

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error category. Callers branch on Kind rather
// than matching error strings.
type Kind string

const (
	InvalidInput      Kind = "InvalidInput"
	InsufficientData  Kind = "InsufficientData"
	Numerical         Kind = "Numerical"
	ProviderErrorKind Kind = "ProviderError"
	Cancelled         Kind = "Cancelled"
)

// Error is a Kind-tagged error value. It never carries a stack trace; only a
// kind and a human-readable message cross the core boundary.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is lets errors.Is match on Kind: errors.Is(err, quanterrors.New(InvalidInput, ""))
// compares only the Kind field of *Error targets.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an existing error without discarding it.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
