package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/arcgis/service"
	"github.com/geocrest/gateway/internal/metrics"
)

type mockServiceFactory struct {
	mock.Mock
}

func (m *mockServiceFactory) CreateCatalog(
	ctx context.Context,
	rootURL string,
	opts ...service.CatalogOption,
) (*arcgisDomain.Catalog, error) {
	args := m.Called(ctx, rootURL, opts)
	catalog, _ := args.Get(0).(*arcgisDomain.Catalog)
	return catalog, args.Error(1)
}

func (m *mockServiceFactory) CreateService(
	ctx context.Context,
	serviceURL string,
	opts ...service.ServiceOption,
) (arcgisDomain.Service, error) {
	args := m.Called(ctx, serviceURL, opts)
	s, _ := args.Get(0).(arcgisDomain.Service)
	return s, args.Error(1)
}

func (m *mockServiceFactory) RefreshToken(
	ctx context.Context,
	catalog *arcgisDomain.Catalog,
) (*arcgisDomain.Catalog, error) {
	args := m.Called(ctx, catalog)
	refreshed, _ := args.Get(0).(*arcgisDomain.Catalog)
	return refreshed, args.Error(1)
}

var _ ServiceFactory = (*mockServiceFactory)(nil)

type mockCatalogCache struct {
	mock.Mock
}

func (m *mockCatalogCache) GetCatalog(ctx context.Context, rootURL, proxyURL string) (*arcgisDomain.Catalog, error) {
	args := m.Called(ctx, rootURL, proxyURL)
	catalog, _ := args.Get(0).(*arcgisDomain.Catalog)
	return catalog, args.Error(1)
}

func (m *mockCatalogCache) Invalidate(rootURL, proxyURL string) {
	m.Called(rootURL, proxyURL)
}

var _ CatalogCache = (*mockCatalogCache)(nil)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

type mockGatewayUseCase struct {
	mock.Mock
}

func (m *mockGatewayUseCase) Catalog(ctx context.Context, rootURL, proxyURL string) (*arcgisDomain.Catalog, error) {
	args := m.Called(ctx, rootURL, proxyURL)
	catalog, _ := args.Get(0).(*arcgisDomain.Catalog)
	return catalog, args.Error(1)
}

func (m *mockGatewayUseCase) InvalidateCatalog(ctx context.Context, rootURL, proxyURL string) error {
	return m.Called(ctx, rootURL, proxyURL).Error(0)
}

func (m *mockGatewayUseCase) Service(ctx context.Context, ref ServiceRef) (arcgisDomain.Service, error) {
	args := m.Called(ctx, ref)
	s, _ := args.Get(0).(arcgisDomain.Service)
	return s, args.Error(1)
}

func (m *mockGatewayUseCase) Layer(ctx context.Context, ref ServiceRef, layerID int) (*arcgisDomain.LayerInfo, error) {
	args := m.Called(ctx, ref, layerID)
	layer, _ := args.Get(0).(*arcgisDomain.LayerInfo)
	return layer, args.Error(1)
}

func (m *mockGatewayUseCase) Query(
	ctx context.Context,
	ref ServiceRef,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	args := m.Called(ctx, ref, layerID, params)
	result, _ := args.Get(0).(*arcgisDomain.FeatureSetQuery)
	return result, args.Error(1)
}

func (m *mockGatewayUseCase) Identify(
	ctx context.Context,
	ref ServiceRef,
	params arcgisDomain.IdentifyParams,
) (*arcgisDomain.IdentifyResultCollection, error) {
	args := m.Called(ctx, ref, params)
	result, _ := args.Get(0).(*arcgisDomain.IdentifyResultCollection)
	return result, args.Error(1)
}

func (m *mockGatewayUseCase) FindAddressCandidates(
	ctx context.Context,
	ref ServiceRef,
	params arcgisDomain.FindAddressParams,
) (*arcgisDomain.AddressCandidateCollection, error) {
	args := m.Called(ctx, ref, params)
	result, _ := args.Get(0).(*arcgisDomain.AddressCandidateCollection)
	return result, args.Error(1)
}

func (m *mockGatewayUseCase) ReverseGeocode(
	ctx context.Context,
	ref ServiceRef,
	location arcgisDomain.Geometry,
	distance float64,
	outSR int,
) (*arcgisDomain.ReverseGeocodedAddress, error) {
	args := m.Called(ctx, ref, location, distance, outSR)
	result, _ := args.Get(0).(*arcgisDomain.ReverseGeocodedAddress)
	return result, args.Error(1)
}

func (m *mockGatewayUseCase) Project(
	ctx context.Context,
	ref ServiceRef,
	geometries []arcgisDomain.Geometry,
	inSR, outSR int,
) ([]arcgisDomain.Geometry, error) {
	args := m.Called(ctx, ref, geometries, inSR, outSR)
	result, _ := args.Get(0).([]arcgisDomain.Geometry)
	return result, args.Error(1)
}

func (m *mockGatewayUseCase) Execute(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.GPExecuteResult, error) {
	args := m.Called(ctx, ref, task, params)
	result, _ := args.Get(0).(*arcgisDomain.GPExecuteResult)
	return result, args.Error(1)
}

func (m *mockGatewayUseCase) SubmitJob(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, params)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *mockGatewayUseCase) RunJob(
	ctx context.Context,
	ref ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, params)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *mockGatewayUseCase) JobStatus(ctx context.Context, ref ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, jobID)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *mockGatewayUseCase) CancelJob(ctx context.Context, ref ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, jobID)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *mockGatewayUseCase) JobResult(
	ctx context.Context,
	ref ServiceRef,
	task, jobID, param string,
	opts ResultOptions,
) (*arcgisDomain.GPParameter, error) {
	args := m.Called(ctx, ref, task, jobID, param, opts)
	result, _ := args.Get(0).(*arcgisDomain.GPParameter)
	return result, args.Error(1)
}

var _ GatewayUseCase = (*mockGatewayUseCase)(nil)

// stubService is a metadata-only service.
type stubService struct {
	url         string
	serviceType arcgisDomain.ServiceType
	token       string
}

func (s *stubService) URL() string                    { return s.url }
func (s *stubService) Name() string                   { return "stub" }
func (s *stubService) Type() arcgisDomain.ServiceType { return s.serviceType }
func (s *stubService) Version() float64               { return 10.91 }

func (s *stubService) WithToken(token string) arcgisDomain.Service {
	clone := *s
	clone.token = token
	return &clone
}

// stubQuerier is a queryable service returning a fixed result.
type stubQuerier struct {
	stubService
	result *arcgisDomain.FeatureSetQuery
}

func (s *stubQuerier) Query(
	ctx context.Context,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	return s.result, nil
}
