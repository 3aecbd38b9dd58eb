package http

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	tokenDomain "github.com/geocrest/gateway/internal/token/domain"
	tokenService "github.com/geocrest/gateway/internal/token/service"
)

// TokenParam is the query, header and form field name carrying a gateway token.
const TokenParam = "token"

// Response bodies for rejected requests.
const (
	InvalidTokenMessage = "Invalid token"
	UnauthorizedMessage = "Unauthorized for the service"
)

// ExtractToken returns the first non-empty token from the query string, the
// "token" header, or the form body, in that order.
func ExtractToken(c *gin.Context) string {
	if token := c.Query(TokenParam); token != "" {
		return token
	}
	if token := c.GetHeader(TokenParam); token != "" {
		return token
	}
	return c.PostForm(TokenParam)
}

// RequestInfo builds the token validation facts for a gin request. The client
// address comes from X-Forwarded-For only when the peer is one of the engine's
// trusted proxies.
func RequestInfo(c *gin.Context) tokenDomain.RequestInfo {
	return tokenDomain.RequestInfo{
		RemoteAddr: c.ClientIP(),
		Referer:    c.Request.Referer(),
	}
}

// TokenAuthorizationMiddleware rejects requests without a valid gateway token.
//
// Invalid, expired or client-mismatched tokens get 403 "Invalid token". When
// allowedGroups is non-empty, a valid token whose group is not listed gets 403
// "Unauthorized for the service". Accepted tokens are stored in the request
// context (see GetToken).
func TokenAuthorizationMiddleware(
	tokens tokenService.TokenService,
	allowedGroups []string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokens.Decode(ExtractToken(c), RequestInfo(c))
		if !token.IsValid {
			logger.Debug("token rejected",
				slog.String("path", c.Request.URL.Path),
				slog.String("client_ip", c.ClientIP()))
			c.String(http.StatusForbidden, InvalidTokenMessage)
			c.Abort()
			return
		}

		if len(allowedGroups) > 0 && !slices.Contains(allowedGroups, token.GroupName) {
			logger.Debug("token group not allowed",
				slog.String("group", token.GroupName),
				slog.String("path", c.Request.URL.Path))
			c.String(http.StatusForbidden, UnauthorizedMessage)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithToken(c.Request.Context(), token))
		c.Next()
	}
}
