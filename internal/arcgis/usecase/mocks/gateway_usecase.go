// Package mocks provides testify mocks of the gateway use cases.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/arcgis/usecase"
)

// MockGatewayUseCase is a testify mock of usecase.GatewayUseCase.
type MockGatewayUseCase struct {
	mock.Mock
}

// NewMockGatewayUseCase creates a mock whose expectations are asserted on test cleanup.
func NewMockGatewayUseCase(t *testing.T) *MockGatewayUseCase {
	m := &MockGatewayUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
func (m *MockGatewayUseCase) Catalog(ctx context.Context, rootURL, proxyURL string) (*arcgisDomain.Catalog, error) {
	args := m.Called(ctx, rootURL, proxyURL)
	catalog, _ := args.Get(0).(*arcgisDomain.Catalog)
	return catalog, args.Error(1)
}

func (m *MockGatewayUseCase) InvalidateCatalog(ctx context.Context, rootURL, proxyURL string) error {
	return m.Called(ctx, rootURL, proxyURL).Error(0)
}

func (m *MockGatewayUseCase) Service(ctx context.Context, ref usecase.ServiceRef) (arcgisDomain.Service, error) {
	args := m.Called(ctx, ref)
	s, _ := args.Get(0).(arcgisDomain.Service)
	return s, args.Error(1)
}

func (m *MockGatewayUseCase) Layer(ctx context.Context, ref usecase.ServiceRef, layerID int) (*arcgisDomain.LayerInfo, error) {
	args := m.Called(ctx, ref, layerID)
	layer, _ := args.Get(0).(*arcgisDomain.LayerInfo)
	return layer, args.Error(1)
}

func (m *MockGatewayUseCase) Query(
	ctx context.Context,
	ref usecase.ServiceRef,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	args := m.Called(ctx, ref, layerID, params)
	result, _ := args.Get(0).(*arcgisDomain.FeatureSetQuery)
	return result, args.Error(1)
}

func (m *MockGatewayUseCase) Identify(
	ctx context.Context,
	ref usecase.ServiceRef,
	params arcgisDomain.IdentifyParams,
) (*arcgisDomain.IdentifyResultCollection, error) {
	args := m.Called(ctx, ref, params)
	result, _ := args.Get(0).(*arcgisDomain.IdentifyResultCollection)
	return result, args.Error(1)
}

func (m *MockGatewayUseCase) FindAddressCandidates(
	ctx context.Context,
	ref usecase.ServiceRef,
	params arcgisDomain.FindAddressParams,
) (*arcgisDomain.AddressCandidateCollection, error) {
	args := m.Called(ctx, ref, params)
	result, _ := args.Get(0).(*arcgisDomain.AddressCandidateCollection)
	return result, args.Error(1)
}

func (m *MockGatewayUseCase) ReverseGeocode(
	ctx context.Context,
	ref usecase.ServiceRef,
	location arcgisDomain.Geometry,
	distance float64,
	outSR int,
) (*arcgisDomain.ReverseGeocodedAddress, error) {
	args := m.Called(ctx, ref, location, distance, outSR)
	result, _ := args.Get(0).(*arcgisDomain.ReverseGeocodedAddress)
	return result, args.Error(1)
}

func (m *MockGatewayUseCase) Project(
	ctx context.Context,
	ref usecase.ServiceRef,
	geometries []arcgisDomain.Geometry,
	inSR, outSR int,
) ([]arcgisDomain.Geometry, error) {
	args := m.Called(ctx, ref, geometries, inSR, outSR)
	result, _ := args.Get(0).([]arcgisDomain.Geometry)
	return result, args.Error(1)
}

func (m *MockGatewayUseCase) Execute(
	ctx context.Context,
	ref usecase.ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.GPExecuteResult, error) {
	args := m.Called(ctx, ref, task, params)
	result, _ := args.Get(0).(*arcgisDomain.GPExecuteResult)
	return result, args.Error(1)
}

func (m *MockGatewayUseCase) SubmitJob(
	ctx context.Context,
	ref usecase.ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, params)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *MockGatewayUseCase) RunJob(
	ctx context.Context,
	ref usecase.ServiceRef,
	task string,
	params []arcgisDomain.GPParameter,
) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, params)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *MockGatewayUseCase) JobStatus(ctx context.Context, ref usecase.ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, jobID)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *MockGatewayUseCase) CancelJob(ctx context.Context, ref usecase.ServiceRef, task, jobID string) (*arcgisDomain.JobInfo, error) {
	args := m.Called(ctx, ref, task, jobID)
	info, _ := args.Get(0).(*arcgisDomain.JobInfo)
	return info, args.Error(1)
}

func (m *MockGatewayUseCase) JobResult(
	ctx context.Context,
	ref usecase.ServiceRef,
	task, jobID, param string,
	opts usecase.ResultOptions,
) (*arcgisDomain.GPParameter, error) {
	args := m.Called(ctx, ref, task, jobID, param, opts)
	result, _ := args.Get(0).(*arcgisDomain.GPParameter)
	return result, args.Error(1)
}

var _ usecase.GatewayUseCase = (*MockGatewayUseCase)(nil)
