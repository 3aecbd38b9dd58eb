package usecase

import (
	"context"
	"time"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/metrics"
)

const metricsDomain = "arcgis"

// gatewayUseCaseWithMetrics decorates GatewayUseCase with metrics instrumentation.
type gatewayUseCaseWithMetrics struct {
	next    GatewayUseCase
	metrics metrics.BusinessMetrics
}

// NewGatewayUseCaseWithMetrics wraps a GatewayUseCase with metrics recording.
func NewGatewayUseCaseWithMetrics(useCase GatewayUseCase, m metrics.BusinessMetrics) GatewayUseCase {
	return &gatewayUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (g *gatewayUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	g.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	g.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Catalog records metrics for catalog lookups.
func (g *gatewayUseCaseWithMetrics) Catalog(
	ctx context.Context,
	rootURL, proxyURL string,
) (*arcgisDomain.Catalog, error) {
	start := time.Now()
	catalog, err := g.next.Catalog(ctx, rootURL, proxyURL)
	g.record(ctx, "catalog_get", start, err)
	return catalog, err
}

// InvalidateCatalog records metrics for catalog invalidations.
func (g *gatewayUseCaseWithMetrics) InvalidateCatalog(ctx context.Context, rootURL, proxyURL string) error {
	start := time.Now()
	err := g.next.InvalidateCatalog(ctx, rootURL, proxyURL)
	g.record(ctx, "catalog_invalidate", start, err)
	return err
}

// Service records metrics for service lookups.
func (g *gatewayUseCaseWithMetrics) Service(ctx context.Context, ref ServiceRef) (arcgisDomain.Service, error) {
	start := time.Now()
	s, err := g.next.Service(ctx, ref)
	g.record(ctx, "service_get", start, err)
	return s, err
}

// Layer records metrics for layer lookups.
func (g *gatewayUseCaseWithMetrics) Layer(
	ctx context.Context,
	ref ServiceRef,
	layerID int,
) (*arcgisDomain.LayerInfo, error) {
	start := time.Now()
	layer, err := g.next.Layer(ctx, ref, layerID)
	g.record(ctx, "layer_get", start, err)
	return layer, err
}

// Query records metrics for layer queries.
func (g *gatewayUseCaseWithMetrics) Query(
	ctx context.Context,
	ref ServiceRef,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	start := time.Now()
	result, err := g.next.Query(ctx, ref, layerID, params)
	g.record(ctx, "query", start, err)
	return result, err
}

// Identify records metrics for identify operations.
func (g *gatewayUseCaseWithMetrics) Identify(
	ctx context.Context,
	ref ServiceRef,
	params arcgisDomain.IdentifyParams,
) (*arcgisDomain.IdentifyResultCollection, error) {
	start := time.Now()
	result, err := g.next.Identify(ctx, ref, params)
	g.record(ctx, "identify", start, err)
	return result, err
}

// FindAddressCandidates records metrics for geocodes.
func (g *gatewayUseCaseWithMetrics) FindAddressCandidates(
	ctx context.Context,
	ref ServiceRef,
	params arcgisDomain.FindAddressParams,
) (*arcgisDomain.AddressCandidateCollection, error) {
	start := time.Now()
	result, err := g.next.FindAddressCandidates(ctx, ref, params)
	g.record(ctx, "geocode", start, err)
	return result, err
}

// ReverseGeocode records metrics for reverse geocodes.
func (g *gatewayUseCaseWithMetrics) ReverseGeocode(
	ctx context.Context,
	ref ServiceRef,
	location arcgisDomain.Geometry,
	distance float64,
	outSR int,
) (*arcgisDomain.ReverseGeocodedAddress, error) {
	start := time.Now()
	result, err := g.next.ReverseGeocode(ctx, ref, location, distance, outSR)
	g.record(ctx, "reverse_geocode", start, err)
	return result, err
}

// Project records metrics for projections.
func (g *gatewayUseCaseWithMetrics) Project(
	ctx context.Context,
	ref ServiceRef,
	geometries []arcgisDomain.Geometry,
	inSR, outSR int,
) ([]arcgisDomain.Geometry, error) {
	start := time.Now()
	result, err := g.next.Project(ctx, ref, geometries, inSR, outSR)
	g.record(ctx, "project", start, err)
	return result, err
}

// Execute records metrics for synchronous task runs.
func (g *gatewayUseCaseWithMetrics) Execute(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.GPExecuteResult, error) {
	start := time.Now()
	result, err := g.next.Execute(ctx, ref, task, params)
	g.record(ctx, "gp_execute", start, err)
	return result, err
}

// SubmitJob records metrics for job submissions.
func (g *gatewayUseCaseWithMetrics) SubmitJob(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	start := time.Now()
	info, err := g.next.SubmitJob(ctx, ref, task, params)
	g.record(ctx, "gp_job_submit", start, err)
	return info, err
}

// RunJob records metrics for watched job runs.
func (g *gatewayUseCaseWithMetrics) RunJob(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	start := time.Now()
	info, err := g.next.RunJob(ctx, ref, task, params)
	g.record(ctx, "gp_job_run", start, err)
	return info, err
}

// JobStatus records metrics for job status checks.
func (g *gatewayUseCaseWithMetrics) JobStatus(
	ctx context.Context,
	ref ServiceRef,
	task, jobID string,
) (*arcgisDomain.JobInfo, error) {
	start := time.Now()
	info, err := g.next.JobStatus(ctx, ref, task, jobID)
	g.record(ctx, "gp_job_status", start, err)
	return info, err
}

// CancelJob records metrics for job cancellations.
func (g *gatewayUseCaseWithMetrics) CancelJob(
	ctx context.Context,
	ref ServiceRef,
	task, jobID string,
) (*arcgisDomain.JobInfo, error) {
	start := time.Now()
	info, err := g.next.CancelJob(ctx, ref, task, jobID)
	g.record(ctx, "gp_job_cancel", start, err)
	return info, err
}

// JobResult records metrics for job result fetches.
func (g *gatewayUseCaseWithMetrics) JobResult(
	ctx context.Context,
	ref ServiceRef,
	task, jobID, param string,
	opts ResultOptions,
) (*arcgisDomain.GPParameter, error) {
	start := time.Now()
	result, err := g.next.JobResult(ctx, ref, task, jobID, param, opts)
	g.record(ctx, "gp_job_result", start, err)
	return result, err
}
