// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// AbsoluteURL validates an http or https url with a host.
var AbsoluteURL = validation.NewStringRuleWithError(
	isAbsoluteURL,
	validation.NewError("validation_absolute_url", "must be an absolute http or https url"),
)

// ServicesURL validates an absolute url under an ArcGIS /rest/services root.
var ServicesURL = validation.NewStringRuleWithError(
	func(s string) bool {
		return isAbsoluteURL(s) && strings.Contains(strings.ToLower(s), "/rest/services")
	},
	validation.NewError("validation_services_url", "must be an ArcGIS REST services url"),
)

// GroupName validates a token group name. Group names are stored in a
// colon-separated payload, so they cannot contain colons.
var GroupName = validation.NewStringRuleWithError(
	func(s string) bool {
		return !strings.Contains(s, ":")
	},
	validation.NewError("validation_group_name", "must not contain ':'"),
)

// ClientConstraint validates an optional token client constraint.
var ClientConstraint = validation.NewStringRuleWithError(
	func(s string) bool {
		lower := strings.ToLower(s)
		return (strings.HasPrefix(lower, "ip.") || strings.HasPrefix(lower, "ref.")) && !strings.Contains(s, ":")
	},
	validation.NewError("validation_client_constraint", "must start with 'ip.' or 'ref.' and not contain ':'"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
