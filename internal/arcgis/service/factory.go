package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
	"github.com/geocrest/gateway/internal/rest"
)

// crawlConcurrency bounds concurrent requests while crawling a catalog.
const crawlConcurrency = 8

type constructor func(ctx context.Context, f *Factory, b base) (arcgisDomain.Service, error)

// registry maps each supported service type to its constructor.
var registry = map[arcgisDomain.ServiceType]constructor{
	arcgisDomain.MapServer:      newMapServer,
	arcgisDomain.FeatureServer:  newFeatureServer,
	arcgisDomain.GeocodeServer:  newGeocodeServer,
	arcgisDomain.GeometryServer: newGeometryServer,
	arcgisDomain.GPServer:       newGPServer,
	arcgisDomain.MobileServer:   newMobileServer,
}

// Credentials authenticate against ArcGIS token services.
type Credentials struct {
	Username string
	Password string
}

// IsSet reports whether both username and password are configured.
func (c Credentials) IsSet() bool {
	return c.Username != "" && c.Password != ""
}

// Factory discovers catalogs and builds services.
type Factory struct {
	client          *rest.Client
	logger          *slog.Logger
	credentials     Credentials
	trustedHosts    map[string]struct{}
	tokenExpiration time.Duration
	updateDelay     time.Duration
	maxPollDuration time.Duration
	now             func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithCredentials sets the account used to acquire tokens for secured servers.
func WithCredentials(credentials Credentials) FactoryOption {
	return func(f *Factory) {
		f.credentials = credentials
	}
}

// WithTrustedHosts sets the hosts credentials may be sent to. Each entry is a
// hostname, matching any port, or a host:port pair. Without trusted hosts the
// credentials are never sent.
func WithTrustedHosts(hosts ...string) FactoryOption {
	return func(f *Factory) {
		f.trustedHosts = make(map[string]struct{}, len(hosts))
		for _, host := range hosts {
			f.trustedHosts[strings.ToLower(host)] = struct{}{}
		}
	}
}

// WithTokenExpiration sets the lifetime requested for server tokens.
func WithTokenExpiration(expiration time.Duration) FactoryOption {
	return func(f *Factory) {
		f.tokenExpiration = expiration
	}
}

// WithJobPolling sets the poll interval and ceiling of geoprocessing jobs.
func WithJobPolling(updateDelay, maxPollDuration time.Duration) FactoryOption {
	return func(f *Factory) {
		f.updateDelay = updateDelay
		f.maxPollDuration = maxPollDuration
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		f.now = now
	}
}

// NewFactory creates a Factory.
func NewFactory(client *rest.Client, logger *slog.Logger, opts ...FactoryOption) *Factory {
	f := &Factory{
		client:          client,
		logger:          logger,
		tokenExpiration: 60 * time.Minute,
		updateDelay:     DefaultUpdateDelay,
		maxPollDuration: DefaultMaxPollDuration,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateService builds the service at serviceURL. The variant is chosen from
// the URL's last path segment. Without WithVersion, the server version is
// fetched from the services root first.
func (f *Factory) CreateService(
	ctx context.Context,
	serviceURL string,
	opts ...ServiceOption,
) (arcgisDomain.Service, error) {
	serviceType, ok := arcgisDomain.ServiceTypeFromURL(serviceURL)
	if !ok {
		return nil, apperrors.Wrapf(arcgisDomain.ErrUnsupportedServiceType, "%q", serviceType)
	}
	build := registry[serviceType]

	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.version == 0 {
		version, err := f.fetchVersion(ctx, serviceURL, o)
		if err != nil {
			return nil, err
		}
		o.version = version
	}

	service, err := build(ctx, f, newBase(f.client, serviceURL, serviceType, o))
	if err != nil {
		return nil, err
	}

	f.logger.Debug("service created",
		slog.String("url", service.URL()),
		slog.String("type", string(serviceType)))
	return service, nil
}

func (f *Factory) fetchVersion(ctx context.Context, serviceURL string, o serviceOptions) (float64, error) {
	root := ServicesRoot(serviceURL)
	if root == "" {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "%q is not an ArcGIS services url", serviceURL)
	}

	b := base{client: f.client, url: root, proxyURL: o.proxyURL, token: o.token}
	info, err := rest.Hydrate[arcgisDomain.CatalogInfo](ctx, f.client, b.target(root, nil), b.options()...)
	if err != nil {
		return 0, err
	}
	return info.CurrentVersion, nil
}

// CreateCatalog discovers the catalog at rootURL.
//
// A server with token-based security gets a placeholder token, replaced by a
// real one right away when credentials are configured. Sub-services are only
// built with WithServices, which also crawls folders.
func (f *Factory) CreateCatalog(ctx context.Context, rootURL string, opts ...CatalogOption) (*arcgisDomain.Catalog, error) {
	var o catalogOptions
	for _, opt := range opts {
		opt(&o)
	}

	root := NormalizeURL(rootURL)
	info, err := rest.Hydrate[arcgisDomain.CatalogInfo](ctx, f.client, root, rest.WithProxy(o.proxyURL))
	if err != nil {
		return nil, err
	}

	catalog := &arcgisDomain.Catalog{
		RootURL:        root,
		ProxyURL:       o.proxyURL,
		CurrentVersion: info.CurrentVersion,
		Folders:        info.Folders,
		ServiceInfos:   info.Services,
		AuthInfo:       info.AuthInfo,
		FetchedAt:      f.now(),
	}

	if catalog.RequiresToken() {
		catalog.Token = &arcgisDomain.ServerToken{}
		if f.credentials.IsSet() {
			catalog, err = f.RefreshToken(ctx, catalog)
			if err != nil {
				return nil, err
			}
		}
	}

	if o.withServices {
		catalog, err = f.crawl(ctx, catalog)
		if err != nil {
			return nil, err
		}
	}

	f.logger.Info("catalog discovered",
		slog.String("url", root),
		slog.Int("folders", len(catalog.Folders)),
		slog.Int("services", len(catalog.ServiceInfos)),
		slog.Bool("secured", catalog.RequiresToken()))
	return catalog, nil
}

// crawl lists every folder's services and builds the supported ones. A folder
// that cannot be listed fails the crawl; a service that cannot be built is
// logged and skipped.
func (f *Factory) crawl(ctx context.Context, catalog *arcgisDomain.Catalog) (*arcgisDomain.Catalog, error) {
	b := base{client: f.client, proxyURL: catalog.ProxyURL, token: catalog.TokenValue()}

	folders := make([][]arcgisDomain.ServiceInfo, len(catalog.Folders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(crawlConcurrency)
	for i, folder := range catalog.Folders {
		g.Go(func() error {
			folderURL := catalog.RootURL + "/" + folder
			info, err := rest.Hydrate[arcgisDomain.CatalogInfo](gctx, f.client, b.target(folderURL, nil), b.options()...)
			if err != nil {
				return apperrors.Wrapf(err, "folder %s", folder)
			}
			folders[i] = info.Services
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	infos := append([]arcgisDomain.ServiceInfo{}, catalog.ServiceInfos...)
	for _, services := range folders {
		infos = append(infos, services...)
	}

	services := make([]arcgisDomain.Service, len(infos))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(crawlConcurrency)
	for i, info := range infos {
		if !info.Type.IsSupported() {
			continue
		}
		g.Go(func() error {
			service, err := f.CreateService(gctx, info.URL(catalog.RootURL),
				WithProxy(catalog.ProxyURL),
				WithToken(catalog.TokenValue()),
				WithVersion(catalog.CurrentVersion))
			if err != nil {
				f.logger.Warn("skipping service",
					slog.String("name", info.Name),
					slog.String("type", string(info.Type)),
					slog.Any("error", err))
				return nil
			}
			services[i] = service
			return nil
		})
	}
	_ = g.Wait()

	built := make([]arcgisDomain.Service, 0, len(services))
	for _, s := range services {
		if s != nil {
			built = append(built, s)
		}
	}

	crawled := *catalog
	crawled.ServiceInfos = infos
	crawled.Services = built
	return &crawled, nil
}

// RefreshToken acquires a new server token for a secured catalog and returns a
// new snapshot holding it, with its services rebound to the token. Open
// catalogs, and any catalog when no credentials are configured, are returned
// unchanged. So is a catalog whose token service or proxy is not a trusted
// host: the credentials are withheld from it.
func (f *Factory) RefreshToken(ctx context.Context, catalog *arcgisDomain.Catalog) (*arcgisDomain.Catalog, error) {
	if !catalog.RequiresToken() || !f.credentials.IsSet() {
		return catalog, nil
	}

	tokenURL := generateTokenURL(catalog.AuthInfo.TokenServicesURL)
	if tokenURL == "" {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "secured catalog has no token service url")
	}
	if !f.isTrusted(tokenURL) || (catalog.ProxyURL != "" && !f.isTrusted(catalog.ProxyURL)) {
		f.logger.Warn("credentials withheld from untrusted host",
			slog.String("url", catalog.RootURL),
			slog.String("token_url", tokenURL),
			slog.String("proxy_url", catalog.ProxyURL))
		return catalog, nil
	}

	form := url.Values{}
	form.Set("username", f.credentials.Username)
	form.Set("password", f.credentials.Password)
	form.Set("client", "requestip")
	form.Set("expiration", strconv.Itoa(int(f.tokenExpiration.Minutes())))

	resp, err := rest.PostForm[arcgisDomain.TokenResponse](ctx, f.client, tokenURL, form, rest.WithProxy(catalog.ProxyURL))
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "token service returned no token")
	}

	token := resp.ServerToken()
	refreshed := catalog.WithToken(token)
	if len(catalog.Services) > 0 {
		rebound := make([]arcgisDomain.Service, len(catalog.Services))
		for i, s := range catalog.Services {
			rebound[i] = s.WithToken(token.Value)
		}
		refreshed = refreshed.WithServices(rebound)
	}

	f.logger.Info("server token acquired",
		slog.String("url", catalog.RootURL),
		slog.Time("expires", token.Expires))
	return refreshed, nil
}

// isTrusted reports whether rawURL points at a trusted host.
func (f *Factory) isTrusted(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	if _, ok := f.trustedHosts[strings.ToLower(u.Host)]; ok {
		return true
	}
	_, ok := f.trustedHosts[strings.ToLower(u.Hostname())]
	return ok
}

// generateTokenURL returns the generateToken endpoint of a token service url.
func generateTokenURL(tokenServicesURL string) string {
	if tokenServicesURL == "" {
		return ""
	}
	trimmed := strings.TrimRight(tokenServicesURL, "/")
	if strings.HasSuffix(strings.ToLower(trimmed), "/generatetoken") {
		return trimmed
	}
	return trimmed + "/generateToken"
}
