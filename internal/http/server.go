// Package http provides the gateway HTTP server, its middleware and routing.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	arcgisHTTP "github.com/geocrest/gateway/internal/arcgis/http"
	"github.com/geocrest/gateway/internal/config"
	"github.com/geocrest/gateway/internal/metrics"
	tokenHTTP "github.com/geocrest/gateway/internal/token/http"
	tokenService "github.com/geocrest/gateway/internal/token/service"
)

// ReadinessCheck reports whether one component can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	checks []ReadinessCheck
}

// NewServer creates a new HTTP server. The readiness endpoint reports
// "ready" only when every check passes; a server without checks is never ready.
func NewServer(
	host string,
	port int,
	logger *slog.Logger,
	checks ...ReadinessCheck,
) *Server {
	return &Server{
		logger: logger,
		checks: checks,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// NewMetricsServer creates the scrape server. It serves the provider's
// registry at /metrics and liveness at /health, without token authorization.
func NewMetricsServer(host string, port int, logger *slog.Logger, provider *metrics.Provider) *Server {
	s := NewServer(host, port, logger.With(slog.String("server", "metrics")))

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(provider.Handler()))
	router.GET("/health", s.healthHandler)

	s.router = router
	return s
}

// SetupRouter configures the Gin router with all routes and middleware.
//
// Forwarded client addresses are honored only from cfg.TrustedProxies; with
// none configured the peer address identifies the client.
// Every route under /v1 requires a gateway token. Rate limiting is applied per
// token group after authorization. The background cleanup of idle limiters
// stops when ctx is done.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	tokens tokenService.TokenService,
	catalogHandler *arcgisHTTP.CatalogHandler,
	serviceHandler *arcgisHTTP.ServiceHandler,
	taskHandler *arcgisHTTP.TaskHandler,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		s.logger.Error("invalid trusted proxies, forwarded headers ignored",
			slog.String("trusted_proxies", cfg.TrustedProxies),
			slog.Any("error", err))
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace, "/health", "/ready"))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(tokenHTTP.TokenAuthorizationMiddleware(tokens, cfg.AllowedGroups(), s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(tokenHTTP.GroupRateLimitMiddleware(
			ctx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}

	catalog := v1.Group("/catalog")
	{
		catalog.GET("", catalogHandler.GetHandler)
		catalog.DELETE("", catalogHandler.DeleteHandler)
	}

	service := v1.Group("/service")
	{
		service.GET("", serviceHandler.GetHandler)
		service.GET("/layers/:layerId", serviceHandler.LayerHandler)
		service.GET("/query", serviceHandler.QueryHandler)
		service.POST("/identify", serviceHandler.IdentifyHandler)
		service.POST("/geocode", serviceHandler.GeocodeHandler)
		service.GET("/reverse-geocode", serviceHandler.ReverseGeocodeHandler)
		service.POST("/project", serviceHandler.ProjectHandler)
	}

	tasks := v1.Group("/tasks")
	{
		tasks.POST("/execute", taskHandler.ExecuteHandler)
		tasks.POST("/jobs", taskHandler.SubmitJobHandler)
		tasks.GET("/jobs/:jobId", taskHandler.GetJobHandler)
		tasks.DELETE("/jobs/:jobId", taskHandler.CancelJobHandler)
		tasks.GET("/jobs/:jobId/results/:param", taskHandler.ResultHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler runs every readiness check with a short deadline.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(s.checks))
	ready := len(s.checks) > 0
	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			s.logger.Warn("readiness check failed",
				slog.String("component", check.Name),
				slog.Any("error", err))
			components[check.Name] = "error"
			ready = false
			continue
		}
		components[check.Name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
