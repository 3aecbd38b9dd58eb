// Package usecase orchestrates catalog discovery and the typed operations the
// gateway dispatches to remote ArcGIS services. It owns the catalog cache, the
// only shared mutable state of the gateway.
package usecase

import (
	"context"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/arcgis/service"
)

// ServiceFactory builds catalogs and services from their REST metadata.
type ServiceFactory interface {
	CreateCatalog(ctx context.Context, rootURL string, opts ...service.CatalogOption) (*arcgisDomain.Catalog, error)
	CreateService(ctx context.Context, serviceURL string, opts ...service.ServiceOption) (arcgisDomain.Service, error)
	RefreshToken(ctx context.Context, catalog *arcgisDomain.Catalog) (*arcgisDomain.Catalog, error)
}

// CatalogCache memoizes discovered catalogs by root and proxy url.
type CatalogCache interface {
	// GetCatalog returns the cached catalog, discovering it on a miss and
	// refreshing its server token when stale. Failures are never cached.
	GetCatalog(ctx context.Context, rootURL, proxyURL string) (*arcgisDomain.Catalog, error)
	// Invalidate drops the cached catalog so the next GetCatalog rediscovers it.
	Invalidate(rootURL, proxyURL string)
}

// ServiceRef addresses a remote service and the proxy used to reach it. An
// empty ProxyURL falls back to the gateway's default proxy.
type ServiceRef struct {
	URL      string
	ProxyURL string
}

// ResultOptions selects how a job result is fetched.
type ResultOptions struct {
	Image bool
	OutSR int
}

// GatewayUseCase dispatches typed operations to remote services.
type GatewayUseCase interface {
	Catalog(ctx context.Context, rootURL, proxyURL string) (*arcgisDomain.Catalog, error)
	InvalidateCatalog(ctx context.Context, rootURL, proxyURL string) error
	Service(ctx context.Context, ref ServiceRef) (arcgisDomain.Service, error)
	Layer(ctx context.Context, ref ServiceRef, layerID int) (*arcgisDomain.LayerInfo, error)

	Query(
		ctx context.Context,
		ref ServiceRef,
		layerID int,
		params arcgisDomain.QueryParams,
	) (*arcgisDomain.FeatureSetQuery, error)
	Identify(
		ctx context.Context,
		ref ServiceRef,
		params arcgisDomain.IdentifyParams,
	) (*arcgisDomain.IdentifyResultCollection, error)
	FindAddressCandidates(
		ctx context.Context,
		ref ServiceRef,
		params arcgisDomain.FindAddressParams,
	) (*arcgisDomain.AddressCandidateCollection, error)
	ReverseGeocode(
		ctx context.Context,
		ref ServiceRef,
		location arcgisDomain.Geometry,
		distance float64,
		outSR int,
	) (*arcgisDomain.ReverseGeocodedAddress, error)
	Project(
		ctx context.Context,
		ref ServiceRef,
		geometries []arcgisDomain.Geometry,
		inSR, outSR int,
	) ([]arcgisDomain.Geometry, error)

	Execute(
		ctx context.Context,
		ref ServiceRef,
		task string,
		params []arcgisDomain.GPParameter,
	) (*arcgisDomain.GPExecuteResult, error)
	// SubmitJob starts a job and returns its initial status.
	SubmitJob(ctx context.Context, ref ServiceRef, task string, params []arcgisDomain.GPParameter) (*arcgisDomain.JobInfo, error)
	// RunJob starts a job and watches it until it reaches a terminal status or ctx is done.
	RunJob(ctx context.Context, ref ServiceRef, task string, params []arcgisDomain.GPParameter) (*arcgisDomain.JobInfo, error)
	JobStatus(ctx context.Context, ref ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error)
	CancelJob(ctx context.Context, ref ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error)
	JobResult(
		ctx context.Context,
		ref ServiceRef,
		task, jobID, param string,
		opts ResultOptions,
	) (*arcgisDomain.GPParameter, error)
}
