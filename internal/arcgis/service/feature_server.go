package service

import (
	"context"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/rest"
)

// FeatureServer is a hydrated feature service.
type FeatureServer struct {
	base
	Info arcgisDomain.FeatureServerInfo
}

func newFeatureServer(ctx context.Context, f *Factory, b base) (arcgisDomain.Service, error) {
	info, err := rest.Hydrate[arcgisDomain.FeatureServerInfo](ctx, b.client, b.target(b.endpoint(), nil), b.options()...)
	if err != nil {
		return nil, err
	}
	return &FeatureServer{base: b, Info: info}, nil
}

// WithToken returns a copy of the service that authenticates with token.
func (s *FeatureServer) WithToken(token string) arcgisDomain.Service {
	clone := *s
	clone.token = token
	return &clone
}

// Query runs a query against one layer of the feature service.
func (s *FeatureServer) Query(
	ctx context.Context,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	return queryLayer(ctx, &s.base, layerID, params)
}
