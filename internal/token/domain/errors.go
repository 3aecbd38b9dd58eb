package domain

import (
	"github.com/geocrest/gateway/internal/errors"
)

// Token errors.
var (
	// ErrInvalidToken indicates the presented token failed decryption, expired, or
	// does not match the requesting client.
	ErrInvalidToken = errors.Wrap(errors.ErrForbidden, "invalid token")

	// ErrGroupNotAllowed indicates a valid token whose group may not use the service.
	ErrGroupNotAllowed = errors.Wrap(errors.ErrForbidden, "unauthorized for the service")

	// ErrInvalidGroupName indicates an empty group name or one containing the field separator.
	ErrInvalidGroupName = errors.Wrap(errors.ErrInvalidInput, "invalid group name")

	// ErrInvalidTTL indicates a non-positive token lifetime.
	ErrInvalidTTL = errors.Wrap(errors.ErrInvalidInput, "token lifetime must be positive")

	// ErrEmptyKey indicates the token service was constructed without a key.
	ErrEmptyKey = errors.Wrap(errors.ErrInvalidInput, "token key must not be empty")
)
