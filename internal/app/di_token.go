package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/jellydator/validation"

	tokenDomain "github.com/geocrest/gateway/internal/token/domain"
	tokenService "github.com/geocrest/gateway/internal/token/service"
	customValidation "github.com/geocrest/gateway/internal/validation"
)

// readinessGroup is the group name of the probe token minted by the readiness check.
const readinessGroup = "readiness"

// KMSService returns the KMS service.
func (c *Container) KMSService() tokenService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = c.initKMSService()
	})
	return c.kmsService
}

// TokenService returns the gateway token service.
// It fails when no token key is configured or the KMS keeper cannot decrypt it.
func (c *Container) TokenService() (tokenService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// initKMSService creates the KMS service for decrypting the token key.
func (c *Container) initKMSService() tokenService.KMSService {
	return tokenService.NewKMSService()
}

// initTokenService resolves the token key and derives the token service from it.
func (c *Container) initTokenService() (tokenService.TokenService, error) {
	if c.config.TokenKeyKMSURI != "" {
		if err := validation.Validate(c.config.TokenKey, validation.Required, customValidation.Base64); err != nil {
			return nil, fmt.Errorf("TOKEN_KEY must hold the KMS ciphertext: %w", customValidation.WrapValidationError(err))
		}
	}

	key, err := tokenService.ResolveTokenKey(
		context.Background(),
		c.KMSService(),
		c.config.TokenKeyKMSURI,
		c.config.TokenKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token key: %w", err)
	}

	service, err := tokenService.NewTokenService(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return service, nil
}

// tokenServiceCheck mints a short-lived probe token and verifies it decodes as valid.
func (c *Container) tokenServiceCheck(tokens tokenService.TokenService) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		token, err := tokens.Create(readinessGroup, "", time.Minute)
		if err != nil {
			return err
		}

		encoded, err := tokens.Encode(token)
		if err != nil {
			return err
		}

		if decoded := tokens.Decode(encoded, tokenDomain.RequestInfo{}); !decoded.IsValid {
			return errors.New("probe token did not validate")
		}
		return nil
	}
}
