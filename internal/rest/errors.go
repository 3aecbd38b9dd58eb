package rest

import (
	"fmt"
	"strings"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// Transport errors returned by the client.
var (
	// ErrServiceNotFound is returned when the remote answers 404.
	ErrServiceNotFound = apperrors.Wrap(apperrors.ErrNotFound, "arcgis service not found")

	// ErrHostUnresolvable is returned on DNS failures and 502 responses.
	ErrHostUnresolvable = apperrors.Wrap(apperrors.ErrUnreachable, "arcgis host unresolvable")

	// ErrMalformedResponse is returned when a response body is not the expected JSON.
	ErrMalformedResponse = apperrors.Wrap(apperrors.ErrRemoteRejected, "malformed arcgis response")

	// ErrEmptyInput is returned when HydrateFromJSON gets no data.
	ErrEmptyInput = apperrors.Wrap(apperrors.ErrInvalidInput, "empty json input")
)

// RequestError describes a failed HTTP exchange with a remote server.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// RemoteError is the error envelope an ArcGIS server returns in place of a result:
//
//	{"error": {"code": 400, "message": "...", "details": ["..."]}}
type RemoteError struct {
	Code    int
	Message string
	Details []string
	URL     string
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("arcgis error %d: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return apperrors.ErrRemoteRejected
}
