package app

import (
	"fmt"

	arcgisHTTP "github.com/geocrest/gateway/internal/arcgis/http"
	arcgisService "github.com/geocrest/gateway/internal/arcgis/service"
	arcgisUseCase "github.com/geocrest/gateway/internal/arcgis/usecase"
	"github.com/geocrest/gateway/internal/rest"
)

// breakerName labels the circuit breaker guarding ArcGIS transport calls.
const breakerName = "arcgis"

// RestClient returns the ArcGIS REST transport.
func (c *Container) RestClient() (*rest.Client, error) {
	var err error
	c.restClientInit.Do(func() {
		c.restClient, err = c.initRestClient()
		if err != nil {
			c.initErrors["restClient"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["restClient"]; exists {
		return nil, storedErr
	}
	return c.restClient, nil
}

// ServiceFactory returns the factory that discovers catalogs and builds services.
func (c *Container) ServiceFactory() (*arcgisService.Factory, error) {
	var err error
	c.serviceFactoryInit.Do(func() {
		c.serviceFactory, err = c.initServiceFactory()
		if err != nil {
			c.initErrors["serviceFactory"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["serviceFactory"]; exists {
		return nil, storedErr
	}
	return c.serviceFactory, nil
}

// CatalogCache returns the process-wide catalog cache.
func (c *Container) CatalogCache() (arcgisUseCase.CatalogCache, error) {
	var err error
	c.catalogCacheInit.Do(func() {
		c.catalogCache, err = c.initCatalogCache()
		if err != nil {
			c.initErrors["catalogCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["catalogCache"]; exists {
		return nil, storedErr
	}
	return c.catalogCache, nil
}

// GatewayUseCase returns the gateway use case.
func (c *Container) GatewayUseCase() (arcgisUseCase.GatewayUseCase, error) {
	var err error
	c.gatewayUseCaseInit.Do(func() {
		c.gatewayUseCase, err = c.initGatewayUseCase()
		if err != nil {
			c.initErrors["gatewayUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gatewayUseCase"]; exists {
		return nil, storedErr
	}
	return c.gatewayUseCase, nil
}

// CatalogHandler returns the HTTP handler for catalog discovery.
func (c *Container) CatalogHandler() (*arcgisHTTP.CatalogHandler, error) {
	var err error
	c.catalogHandlerInit.Do(func() {
		c.catalogHandler, err = c.initCatalogHandler()
		if err != nil {
			c.initErrors["catalogHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["catalogHandler"]; exists {
		return nil, storedErr
	}
	return c.catalogHandler, nil
}

// ServiceHandler returns the HTTP handler for service operations.
func (c *Container) ServiceHandler() (*arcgisHTTP.ServiceHandler, error) {
	var err error
	c.serviceHandlerInit.Do(func() {
		c.serviceHandler, err = c.initServiceHandler()
		if err != nil {
			c.initErrors["serviceHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["serviceHandler"]; exists {
		return nil, storedErr
	}
	return c.serviceHandler, nil
}

// TaskHandler returns the HTTP handler for geoprocessing tasks.
func (c *Container) TaskHandler() (*arcgisHTTP.TaskHandler, error) {
	var err error
	c.taskHandlerInit.Do(func() {
		c.taskHandler, err = c.initTaskHandler()
		if err != nil {
			c.initErrors["taskHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["taskHandler"]; exists {
		return nil, storedErr
	}
	return c.taskHandler, nil
}

// initRestClient creates the REST client with timeout, metrics and optional circuit breaker.
func (c *Container) initRestClient() (*rest.Client, error) {
	remoteMetrics, err := c.RemoteMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get remote metrics for rest client: %w", err)
	}

	opts := []rest.Option{
		rest.WithTimeout(c.config.ArcGISHTTPTimeout),
		rest.WithLogger(c.Logger()),
		rest.WithObserver(remoteMetrics),
	}
	if c.config.CircuitBreakerEnabled {
		opts = append(opts, rest.WithCircuitBreaker(breakerName))
	}

	return rest.NewClient(opts...), nil
}

// initServiceFactory creates the service factory.
func (c *Container) initServiceFactory() (*arcgisService.Factory, error) {
	client, err := c.RestClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get rest client for service factory: %w", err)
	}

	return arcgisService.NewFactory(
		client,
		c.Logger(),
		arcgisService.WithCredentials(arcgisService.Credentials{
			Username: c.config.ArcGISUsername,
			Password: c.config.ArcGISPassword,
		}),
		arcgisService.WithTrustedHosts(c.config.CredentialHosts()...),
		arcgisService.WithTokenExpiration(c.config.ArcGISTokenExpiration),
		arcgisService.WithJobPolling(c.config.GPUpdateDelay, c.config.GPMaxPollDuration),
	), nil
}

// initCatalogCache creates the catalog cache over the service factory.
func (c *Container) initCatalogCache() (arcgisUseCase.CatalogCache, error) {
	factory, err := c.ServiceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get service factory for catalog cache: %w", err)
	}

	return arcgisUseCase.NewCatalogCache(
		factory,
		c.Logger(),
		arcgisUseCase.WithCacheTTL(c.config.CatalogCacheTTL),
		arcgisUseCase.WithCrawl(c.config.CatalogCrawlServices),
	), nil
}

// initGatewayUseCase creates the gateway use case, wrapped with metrics when enabled.
func (c *Container) initGatewayUseCase() (arcgisUseCase.GatewayUseCase, error) {
	catalogCache, err := c.CatalogCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog cache for gateway use case: %w", err)
	}

	factory, err := c.ServiceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get service factory for gateway use case: %w", err)
	}

	baseUseCase := arcgisUseCase.NewGatewayUseCase(
		catalogCache,
		factory,
		c.config.ArcGISProxyURL,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for gateway use case: %w", err)
		}
		return arcgisUseCase.NewGatewayUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initCatalogHandler creates the catalog HTTP handler.
func (c *Container) initCatalogHandler() (*arcgisHTTP.CatalogHandler, error) {
	gatewayUseCase, err := c.GatewayUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway use case for catalog handler: %w", err)
	}
	return arcgisHTTP.NewCatalogHandler(gatewayUseCase, c.Logger()), nil
}

// initServiceHandler creates the service HTTP handler.
func (c *Container) initServiceHandler() (*arcgisHTTP.ServiceHandler, error) {
	gatewayUseCase, err := c.GatewayUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway use case for service handler: %w", err)
	}
	return arcgisHTTP.NewServiceHandler(gatewayUseCase, c.Logger()), nil
}

// initTaskHandler creates the geoprocessing task HTTP handler.
func (c *Container) initTaskHandler() (*arcgisHTTP.TaskHandler, error) {
	gatewayUseCase, err := c.GatewayUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway use case for task handler: %w", err)
	}
	return arcgisHTTP.NewTaskHandler(gatewayUseCase, c.Logger()), nil
}
