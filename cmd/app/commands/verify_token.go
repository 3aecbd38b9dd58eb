package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	tokenDomain "github.com/geocrest/gateway/internal/token/domain"
	tokenService "github.com/geocrest/gateway/internal/token/service"
	customValidation "github.com/geocrest/gateway/internal/validation"
)

// ErrTokenNotValid is returned by RunVerifyToken when the token does not validate.
var ErrTokenNotValid = errors.New("token is not valid")

// RunVerifyToken decodes a gateway token as if it arrived from remoteAddr with
// referer, prints what it carries and returns ErrTokenNotValid when it would be rejected.
func RunVerifyToken(
	tokens tokenService.TokenService,
	logger *slog.Logger,
	writer io.Writer,
	encoded string,
	remoteAddr string,
	referer string,
	format string,
) error {
	if err := validation.Validate(encoded, validation.Required, customValidation.TokenString); err != nil {
		return fmt.Errorf("invalid token argument: %w", customValidation.WrapValidationError(err))
	}

	token := tokens.Decode(encoded, tokenDomain.RequestInfo{
		RemoteAddr: remoteAddr,
		Referer:    referer,
	})

	var expiration string
	if !token.ExpirationDate.IsZero() {
		expiration = token.ExpirationDate.Format(time.RFC3339)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"valid":           token.IsValid,
			"group_name":      token.GroupName,
			"client_id":       token.ClientID,
			"expiration_date": expiration,
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Valid: %t\n", token.IsValid)
		if token.GroupName != "" {
			_, _ = fmt.Fprintf(writer, "Group: %s\n", token.GroupName)
		}
		if token.ClientID != "" {
			_, _ = fmt.Fprintf(writer, "Client: %s\n", token.ClientID)
		}
		if expiration != "" {
			_, _ = fmt.Fprintf(writer, "Expires: %s\n", expiration)
		}
	}

	logger.Info("token verified",
		slog.Bool("valid", token.IsValid),
		slog.String("group", token.GroupName))

	if !token.IsValid {
		return ErrTokenNotValid
	}
	return nil
}
