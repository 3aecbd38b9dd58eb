package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/geocrest/gateway/internal/config"
	tokenHTTP "github.com/geocrest/gateway/internal/token/http"
)

// createCORSMiddleware lets browser applications on cfg.CORSAllowOrigins call
// the gateway directly. It returns nil when CORS is disabled or no origin is
// configured.
//
// Gateway tokens travel in the Token header or the token parameter, never in
// cookies, so credentialed requests are not allowed. Retry-After is exposed so
// a browser client can honor per-group rate limiting.
func createCORSMiddleware(cfg *config.Config, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.CORSEnabled {
		return nil
	}

	origins := config.SplitList(cfg.CORSAllowOrigins)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", http.CanonicalHeaderKey(tokenHTTP.TokenParam)},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
