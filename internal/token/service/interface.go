// Package service implements encoding, decoding and validation of gateway tokens.
package service

import (
	"context"
	"time"

	tokenDomain "github.com/geocrest/gateway/internal/token/domain"
)

// TokenService issues and validates gateway tokens.
type TokenService interface {
	// Create returns a fresh valid token for groupName expiring after ttl.
	Create(groupName, clientID string, ttl time.Duration) (*tokenDomain.Token, error)

	// Encode encrypts the token into its opaque URL-safe form.
	Encode(token *tokenDomain.Token) (string, error)

	// Decode decrypts and validates an encoded token against the request.
	// It never fails: any problem yields a token with IsValid=false.
	Decode(encoded string, req tokenDomain.RequestInfo) *tokenDomain.Token
}

// KMSKeeper decrypts data with a key held by a key management service.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers for KMS key URIs.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}
