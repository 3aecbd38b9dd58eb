// Package http provides gin middleware that gates the gateway API behind gateway tokens.
package http

import (
	"context"

	tokenDomain "github.com/geocrest/gateway/internal/token/domain"
)

// tokenKey is a context key type for storing the validated token.
type tokenKey struct{}

// WithToken stores a validated token in the context.
func WithToken(ctx context.Context, token *tokenDomain.Token) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken retrieves the validated token from the context.
func GetToken(ctx context.Context) (*tokenDomain.Token, bool) {
	token, ok := ctx.Value(tokenKey{}).(*tokenDomain.Token)
	return token, ok
}
