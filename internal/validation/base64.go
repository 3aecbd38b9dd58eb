package validation

import (
	"encoding/base64"
	"strings"

	validation "github.com/jellydator/validation"
)

// Base64 validates that a string is valid base64-encoded data.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	_, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// tokenReplacer reverses the url-safe alphabet of gateway tokens.
var tokenReplacer = strings.NewReplacer("_", "/", "-", "+", ".", "=")

// TokenString validates that a string is a url-safe base64 gateway token.
// It checks the encoding only; whether the token decrypts is up to the token service.
var TokenString = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_token_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if strings.ContainsAny(s, "/+=") {
		return validation.NewError("validation_token", "must be a url-safe base64 token")
	}
	if _, err := base64.StdEncoding.Strict().DecodeString(tokenReplacer.Replace(s)); err != nil {
		return validation.NewError("validation_token", "must be a url-safe base64 token")
	}
	return nil
})
