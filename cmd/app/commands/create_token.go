package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	tokenService "github.com/geocrest/gateway/internal/token/service"
	customValidation "github.com/geocrest/gateway/internal/validation"
)

// CreateTokenInput holds the arguments of the create-token command.
type CreateTokenInput struct {
	GroupName string
	ClientID  string
	TTL       time.Duration
}

// Validate checks the group name, the optional client constraint and the lifetime.
func (i CreateTokenInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.GroupName,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			customValidation.GroupName,
		),
		validation.Field(&i.ClientID,
			customValidation.ClientConstraint,
		),
		validation.Field(&i.TTL,
			validation.Required,
			validation.Min(time.Second),
		),
	)
}

// RunCreateToken issues a gateway token for a group and prints it in text or JSON format.
func RunCreateToken(
	tokens tokenService.TokenService,
	logger *slog.Logger,
	writer io.Writer,
	input CreateTokenInput,
	format string,
) error {
	if err := input.Validate(); err != nil {
		return fmt.Errorf("invalid token arguments: %w", customValidation.WrapValidationError(err))
	}

	token, err := tokens.Create(input.GroupName, input.ClientID, input.TTL)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	encoded, err := tokens.Encode(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"token":           encoded,
			"group_name":      token.GroupName,
			"client_id":       token.ClientID,
			"expiration_date": token.ExpirationDate.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(writer, "Token created successfully!")
		_, _ = fmt.Fprintf(writer, "Group: %s\n", token.GroupName)
		if token.ClientID != "" {
			_, _ = fmt.Fprintf(writer, "Client: %s\n", token.ClientID)
		}
		_, _ = fmt.Fprintf(writer, "Expires: %s\n", token.ExpirationDate.Format(time.RFC3339))
		_, _ = fmt.Fprintf(writer, "Token: %s\n", encoded)
	}

	logger.Info("token created",
		slog.String("group", token.GroupName),
		slog.Time("expiration_date", token.ExpirationDate),
	)

	return nil
}
