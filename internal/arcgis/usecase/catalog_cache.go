package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/arcgis/service"
)

type catalogKey struct {
	rootURL  string
	proxyURL string
}

func (k catalogKey) String() string {
	return k.rootURL + "|" + k.proxyURL
}

// CatalogCacheOption configures the catalog cache.
type CatalogCacheOption func(*catalogCache)

// WithCacheTTL bounds how long a catalog is served before it is rediscovered.
// Zero keeps catalogs until invalidated.
func WithCacheTTL(ttl time.Duration) CatalogCacheOption {
	return func(c *catalogCache) {
		c.ttl = ttl
	}
}

// WithCrawl builds every service of a catalog when it is discovered.
func WithCrawl(crawl bool) CatalogCacheOption {
	return func(c *catalogCache) {
		c.crawl = crawl
	}
}

// WithCacheClock replaces the time source.
func WithCacheClock(now func() time.Time) CatalogCacheOption {
	return func(c *catalogCache) {
		c.now = now
	}
}

type catalogCache struct {
	factory ServiceFactory
	logger  *slog.Logger
	ttl     time.Duration
	crawl   bool
	now     func() time.Time

	entries sync.Map
	flight  singleflight.Group
}

// NewCatalogCache creates a CatalogCache backed by factory.
func NewCatalogCache(factory ServiceFactory, logger *slog.Logger, opts ...CatalogCacheOption) CatalogCache {
	c := &catalogCache{
		factory: factory,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCatalog returns the catalog for rootURL reached through proxyURL.
//
// Population is serialized per key: concurrent callers on a missing or stale
// entry share a single discovery. The flight runs detached from the caller's
// cancellation so one abandoned request does not fail the others waiting on it.
func (c *catalogCache) GetCatalog(ctx context.Context, rootURL, proxyURL string) (*arcgisDomain.Catalog, error) {
	key := catalogKey{rootURL: service.NormalizeURL(rootURL), proxyURL: proxyURL}

	if catalog, ok := c.load(key); ok && c.usable(catalog) {
		return catalog, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	result, err, _ := c.flight.Do(key.String(), func() (any, error) {
		cached, ok := c.load(key)
		if ok && c.usable(cached) {
			return cached, nil
		}

		if ok && !c.expired(cached) {
			refreshed, err := c.factory.RefreshToken(flightCtx, cached)
			if err != nil {
				return nil, err
			}
			c.entries.Store(key, refreshed)
			return refreshed, nil
		}

		opts := []service.CatalogOption{service.WithCatalogProxy(key.proxyURL)}
		if c.crawl {
			opts = append(opts, service.WithServices())
		}
		catalog, err := c.factory.CreateCatalog(flightCtx, key.rootURL, opts...)
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, catalog)
		return catalog, nil
	})
	if err != nil {
		c.logger.Warn("catalog unavailable",
			slog.String("url", key.rootURL),
			slog.String("proxy", key.proxyURL),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", arcgisDomain.ErrCatalogUnavailable, err)
	}
	return result.(*arcgisDomain.Catalog), nil
}

// Invalidate drops the cached catalog for rootURL and proxyURL.
func (c *catalogCache) Invalidate(rootURL, proxyURL string) {
	c.entries.Delete(catalogKey{rootURL: service.NormalizeURL(rootURL), proxyURL: proxyURL})
}

func (c *catalogCache) load(key catalogKey) (*arcgisDomain.Catalog, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*arcgisDomain.Catalog), true
}

// usable reports whether catalog can be served without a refresh.
func (c *catalogCache) usable(catalog *arcgisDomain.Catalog) bool {
	return !c.expired(catalog) && catalog.IsTokenValid(c.now())
}

func (c *catalogCache) expired(catalog *arcgisDomain.Catalog) bool {
	return c.ttl > 0 && c.now().Sub(catalog.FetchedAt) >= c.ttl
}
