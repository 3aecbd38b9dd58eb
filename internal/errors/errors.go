// Package errors provides standardized domain errors that express gateway intent
// rather than transport details. Use cases and services wrap these sentinels and
// HTTP handlers map them to status codes.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors shared by every gateway module.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is not allowed to use the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUnreachable indicates a remote host could not be reached (DNS, connect, timeout).
	// Callers may retry; the gateway never does.
	ErrUnreachable = errors.New("unreachable")

	// ErrRemoteRejected indicates a remote ArcGIS server answered with an error envelope.
	ErrRemoteRejected = errors.New("remote rejected")

	// ErrUnavailable indicates a dependency could not produce a usable result.
	ErrUnavailable = errors.New("unavailable")
)

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
