// Package apperr defines the error taxonomy shared by the settlement engine.
// Callers classify failures with errors.Is against the sentinel kinds; the
// HTTP layer maps each kind to a response code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: entity absent, or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState: the operation is not valid for the entity's current
	// status (paying a cancelled order, double-requesting a withdrawal).
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidArgument: the request itself is malformed (amount below the
	// minimum, rate out of range).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrExternal: a payment-gateway call failed or returned an
	// unverifiable result.
	ErrExternal = errors.New("external error")
)

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func InvalidState(format string, args ...any) error {
	return wrap(ErrInvalidState, format, args...)
}

func InvalidArgument(format string, args ...any) error {
	return wrap(ErrInvalidArgument, format, args...)
}

func External(format string, args ...any) error {
	return wrap(ErrExternal, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, kind)...)
}
