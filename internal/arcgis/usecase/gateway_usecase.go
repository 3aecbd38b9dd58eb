package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/arcgis/service"
	apperrors "github.com/geocrest/gateway/internal/errors"
)

type serviceKey struct {
	url      string
	proxyURL string
	token    string
}

func (k serviceKey) String() string {
	return k.url + "|" + k.proxyURL + "|" + k.token
}

// layerDescriber is implemented by services exposing per-layer metadata.
type layerDescriber interface {
	Layer(ctx context.Context, layerID int) (*arcgisDomain.LayerInfo, error)
}

type gatewayUseCase struct {
	catalogs     CatalogCache
	factory      ServiceFactory
	defaultProxy string
	logger       *slog.Logger

	services sync.Map
	flight   singleflight.Group
}

// NewGatewayUseCase creates a GatewayUseCase. Services are memoized per url,
// proxy and server token, so a token refresh yields freshly bound services.
func NewGatewayUseCase(
	catalogs CatalogCache,
	factory ServiceFactory,
	defaultProxy string,
	logger *slog.Logger,
) GatewayUseCase {
	return &gatewayUseCase{
		catalogs:     catalogs,
		factory:      factory,
		defaultProxy: defaultProxy,
		logger:       logger,
	}
}

func (g *gatewayUseCase) proxy(proxyURL string) string {
	if proxyURL != "" {
		return proxyURL
	}
	return g.defaultProxy
}

// Catalog returns the cached catalog for rootURL.
func (g *gatewayUseCase) Catalog(ctx context.Context, rootURL, proxyURL string) (*arcgisDomain.Catalog, error) {
	if rootURL == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "catalog url is required")
	}
	return g.catalogs.GetCatalog(ctx, rootURL, g.proxy(proxyURL))
}

// InvalidateCatalog drops a cached catalog and every service memoized under it.
func (g *gatewayUseCase) InvalidateCatalog(ctx context.Context, rootURL, proxyURL string) error {
	if rootURL == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "catalog url is required")
	}

	proxy := g.proxy(proxyURL)
	root := service.NormalizeURL(rootURL)
	g.catalogs.Invalidate(root, proxy)

	prefix := strings.ToLower(root) + "/"
	g.services.Range(func(k, _ any) bool {
		key := k.(serviceKey)
		if key.proxyURL == proxy && strings.HasPrefix(strings.ToLower(key.url), prefix) {
			g.services.Delete(k)
		}
		return true
	})

	g.logger.InfoContext(ctx, "catalog invalidated", slog.String("url", root), slog.String("proxy", proxy))
	return nil
}

// Service resolves ref to a hydrated service. The catalog of the service's
// server supplies the token and version the service is bound to.
func (g *gatewayUseCase) Service(ctx context.Context, ref ServiceRef) (arcgisDomain.Service, error) {
	serviceURL := service.NormalizeURL(ref.URL)
	if serviceURL == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "service url is required")
	}
	root := service.ServicesRoot(serviceURL)
	if root == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "%q is not an ArcGIS services url", ref.URL)
	}

	proxy := g.proxy(ref.ProxyURL)
	catalog, err := g.catalogs.GetCatalog(ctx, root, proxy)
	if err != nil {
		return nil, err
	}

	key := serviceKey{url: serviceURL, proxyURL: proxy, token: catalog.TokenValue()}
	if s, ok := g.services.Load(key); ok {
		return s.(arcgisDomain.Service), nil
	}

	// The flight outlives any single caller.
	flightCtx := context.WithoutCancel(ctx)
	result, err, _ := g.flight.Do(key.String(), func() (any, error) {
		if s, ok := g.services.Load(key); ok {
			return s, nil
		}
		s, err := g.factory.CreateService(flightCtx, serviceURL,
			service.WithProxy(proxy),
			service.WithToken(key.token),
			service.WithVersion(catalog.CurrentVersion))
		if err != nil {
			return nil, err
		}
		g.services.Store(key, s)
		g.evictStale(key)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(arcgisDomain.Service), nil
}

// evictStale drops services memoized for the same url and proxy under a
// token other than current's.
func (g *gatewayUseCase) evictStale(current serviceKey) {
	g.services.Range(func(k, _ any) bool {
		key := k.(serviceKey)
		if key.url == current.url && key.proxyURL == current.proxyURL && key.token != current.token {
			g.services.Delete(k)
		}
		return true
	})
}

// Layer returns the description of one layer of a map service.
func (g *gatewayUseCase) Layer(ctx context.Context, ref ServiceRef, layerID int) (*arcgisDomain.LayerInfo, error) {
	describer, err := resolve[layerDescriber](ctx, g, ref, "layer")
	if err != nil {
		return nil, err
	}
	return describer.Layer(ctx, layerID)
}

// Query runs a layer query on a map or feature service.
func (g *gatewayUseCase) Query(
	ctx context.Context,
	ref ServiceRef,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	querier, err := resolve[service.Querier](ctx, g, ref, "query")
	if err != nil {
		return nil, err
	}
	return querier.Query(ctx, layerID, params)
}

// Identify runs an identify on a map service.
func (g *gatewayUseCase) Identify(
	ctx context.Context,
	ref ServiceRef,
	params arcgisDomain.IdentifyParams,
) (*arcgisDomain.IdentifyResultCollection, error) {
	identifier, err := resolve[service.Identifier](ctx, g, ref, "identify")
	if err != nil {
		return nil, err
	}
	return identifier.Identify(ctx, params)
}

// FindAddressCandidates geocodes an address on a geocode service.
func (g *gatewayUseCase) FindAddressCandidates(
	ctx context.Context,
	ref ServiceRef,
	params arcgisDomain.FindAddressParams,
) (*arcgisDomain.AddressCandidateCollection, error) {
	geocoder, err := resolve[service.Geocoder](ctx, g, ref, "findAddressCandidates")
	if err != nil {
		return nil, err
	}
	return geocoder.FindAddressCandidates(ctx, params)
}

// ReverseGeocode finds the address nearest a point on a geocode service.
func (g *gatewayUseCase) ReverseGeocode(
	ctx context.Context,
	ref ServiceRef,
	location arcgisDomain.Geometry,
	distance float64,
	outSR int,
) (*arcgisDomain.ReverseGeocodedAddress, error) {
	geocoder, err := resolve[service.Geocoder](ctx, g, ref, "reverseGeocode")
	if err != nil {
		return nil, err
	}
	return geocoder.ReverseGeocode(ctx, location, distance, outSR)
}

// Project reprojects geometries on a geometry service.
func (g *gatewayUseCase) Project(
	ctx context.Context,
	ref ServiceRef,
	geometries []arcgisDomain.Geometry,
	inSR, outSR int,
) ([]arcgisDomain.Geometry, error) {
	projector, err := resolve[service.Projector](ctx, g, ref, "project")
	if err != nil {
		return nil, err
	}
	return projector.Project(ctx, geometries, inSR, outSR)
}

// Execute runs a synchronous geoprocessing task.
func (g *gatewayUseCase) Execute(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.GPExecuteResult, error) {
	t, err := g.task(ctx, ref, task)
	if err != nil {
		return nil, err
	}
	return t.Execute(ctx, params)
}

// SubmitJob starts an asynchronous geoprocessing job.
func (g *gatewayUseCase) SubmitJob(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	t, err := g.task(ctx, ref, task)
	if err != nil {
		return nil, err
	}
	return t.Submit(ctx, params)
}

// RunJob starts a job and watches it to completion.
func (g *gatewayUseCase) RunJob(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	t, err := g.task(ctx, ref, task)
	if err != nil {
		return nil, err
	}

	job, err := t.SubmitJob(ctx, params, service.JobHandler{
		StatusUpdated: func(info arcgisDomain.JobInfo) {
			g.logger.DebugContext(ctx, "job status",
				slog.String("job_id", info.JobID),
				slog.String("status", info.Status.String()))
		},
	})
	if err != nil {
		return nil, err
	}

	info, err := job.Wait(ctx)
	if err != nil {
		job.Cancel()
		return nil, err
	}
	return &info, nil
}

// JobStatus fetches the status of a job.
func (g *gatewayUseCase) JobStatus(ctx context.Context, ref ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error) {
	t, err := g.task(ctx, ref, task)
	if err != nil {
		return nil, err
	}
	return t.JobStatus(ctx, jobID)
}

// CancelJob asks the server to cancel a job.
func (g *gatewayUseCase) CancelJob(ctx context.Context, ref ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error) {
	t, err := g.task(ctx, ref, task)
	if err != nil {
		return nil, err
	}
	return t.CancelJob(ctx, jobID)
}

// JobResult fetches one result parameter of a job.
func (g *gatewayUseCase) JobResult(
	ctx context.Context,
	ref ServiceRef,
	task, jobID, param string,
	opts ResultOptions,
) (*arcgisDomain.GPParameter, error) {
	t, err := g.task(ctx, ref, task)
	if err != nil {
		return nil, err
	}
	if opts.Image {
		return t.GetResultImage(ctx, jobID, param, service.ImageOptions{OutSR: opts.OutSR})
	}
	return t.GetResultData(ctx, jobID, param)
}

func (g *gatewayUseCase) task(ctx context.Context, ref ServiceRef, name string) (*service.GPTask, error) {
	if name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "task name is required")
	}
	geoprocessor, err := resolve[service.Geoprocessor](ctx, g, ref, "geoprocessing")
	if err != nil {
		return nil, err
	}
	return geoprocessor.Task(ctx, name)
}

// resolve returns the service at ref as T, or ErrOperationNotSupported when
// the service does not implement operation.
func resolve[T any](ctx context.Context, g *gatewayUseCase, ref ServiceRef, operation string) (T, error) {
	var zero T

	s, err := g.Service(ctx, ref)
	if err != nil {
		return zero, err
	}

	typed, ok := s.(T)
	if !ok {
		return zero, apperrors.Wrapf(arcgisDomain.ErrOperationNotSupported, "%s on %s", operation, s.Type())
	}
	return typed, nil
}
