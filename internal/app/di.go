// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	arcgisHTTP "github.com/geocrest/gateway/internal/arcgis/http"
	arcgisService "github.com/geocrest/gateway/internal/arcgis/service"
	arcgisUseCase "github.com/geocrest/gateway/internal/arcgis/usecase"
	"github.com/geocrest/gateway/internal/config"
	"github.com/geocrest/gateway/internal/http"
	"github.com/geocrest/gateway/internal/metrics"
	"github.com/geocrest/gateway/internal/rest"
	tokenService "github.com/geocrest/gateway/internal/token/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger

	// Metrics
	metricsProvider *metrics.Provider
	recorder        *metrics.Recorder
	businessMetrics metrics.BusinessMetrics
	remoteMetrics   metrics.RemoteMetrics

	// Token components
	kmsService   tokenService.KMSService
	tokenService tokenService.TokenService

	// ArcGIS components
	restClient     *rest.Client
	serviceFactory *arcgisService.Factory
	catalogCache   arcgisUseCase.CatalogCache
	gatewayUseCase arcgisUseCase.GatewayUseCase
	catalogHandler *arcgisHTTP.CatalogHandler
	serviceHandler *arcgisHTTP.ServiceHandler
	taskHandler    *arcgisHTTP.TaskHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.Server

	// serverCtx scopes background goroutines owned by the HTTP server.
	serverCtx    context.Context
	serverCancel context.CancelFunc

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	metricsProviderInit sync.Once
	recorderInit        sync.Once
	businessMetricsInit sync.Once
	remoteMetricsInit   sync.Once
	kmsServiceInit      sync.Once
	tokenServiceInit    sync.Once
	restClientInit      sync.Once
	serviceFactoryInit  sync.Once
	catalogCacheInit    sync.Once
	gatewayUseCaseInit  sync.Once
	catalogHandlerInit  sync.Once
	serviceHandlerInit  sync.Once
	taskHandlerInit     sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:       cfg,
		serverCtx:    ctx,
		serverCancel: cancel,
		initErrors:   make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the OpenTelemetry metrics provider.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// metricsRecorder returns the recorder shared by business and remote metrics,
// or nil when metrics are disabled.
func (c *Container) metricsRecorder() (*metrics.Recorder, error) {
	var err error
	c.recorderInit.Do(func() {
		c.recorder, err = c.initRecorder()
		if err != nil {
			c.initErrors["metricsRecorder"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsRecorder"]; exists {
		return nil, storedErr
	}
	return c.recorder, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// RemoteMetrics returns the recorder for outbound ArcGIS exchanges.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) RemoteMetrics() (metrics.RemoteMetrics, error) {
	var err error
	c.remoteMetricsInit.Do(func() {
		c.remoteMetrics, err = c.initRemoteMetrics()
		if err != nil {
			c.initErrors["remoteMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["remoteMetrics"]; exists {
		return nil, storedErr
	}
	return c.remoteMetrics, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsServer() (*http.Server, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Stops rate limiter cleanup goroutines.
	c.serverCancel()

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initMetricsProvider creates the metrics provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initRecorder creates the gateway metrics recorder on the shared provider.
func (c *Container) initRecorder() (*metrics.Recorder, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics recorder: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	recorder, err := metrics.NewRecorder(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}
	return recorder, nil
}

// initBusinessMetrics returns the recorder, or a no-op sink when metrics are disabled.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	recorder, err := c.metricsRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics recorder for business metrics: %w", err)
	}
	if recorder == nil {
		return metrics.NoOp{}, nil
	}
	return recorder, nil
}

// initRemoteMetrics returns the recorder, or a no-op sink when metrics are disabled.
func (c *Container) initRemoteMetrics() (metrics.RemoteMetrics, error) {
	recorder, err := c.metricsRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics recorder for remote metrics: %w", err)
	}
	if recorder == nil {
		return metrics.NoOp{}, nil
	}
	return recorder, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for http server: %w", err)
	}

	catalogHandler, err := c.CatalogHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog handler for http server: %w", err)
	}

	serviceHandler, err := c.ServiceHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get service handler for http server: %w", err)
	}

	taskHandler, err := c.TaskHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get task handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(
		c.config.ServerHost,
		c.config.ServerPort,
		logger,
		http.ReadinessCheck{Name: "token_service", Check: c.tokenServiceCheck(tokens)},
	)
	server.SetupRouter(
		c.serverCtx,
		c.config,
		tokens,
		catalogHandler,
		serviceHandler,
		taskHandler,
		metricsProvider,
		c.config.MetricsNamespace,
	)

	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.Server, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
