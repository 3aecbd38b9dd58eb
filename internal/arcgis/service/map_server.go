package service

import (
	"context"
	"strconv"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
	"github.com/geocrest/gateway/internal/rest"
)

// MapServer is a hydrated map service.
type MapServer struct {
	base
	Info arcgisDomain.MapServerInfo
}

func newMapServer(ctx context.Context, f *Factory, b base) (arcgisDomain.Service, error) {
	info, err := rest.Hydrate[arcgisDomain.MapServerInfo](ctx, b.client, b.target(b.endpoint(), nil), b.options()...)
	if err != nil {
		return nil, err
	}
	return &MapServer{base: b, Info: info}, nil
}

// WithToken returns a copy of the service that authenticates with token.
func (s *MapServer) WithToken(token string) arcgisDomain.Service {
	clone := *s
	clone.token = token
	return &clone
}

// Query runs a query against one layer of the map service.
func (s *MapServer) Query(
	ctx context.Context,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	return queryLayer(ctx, &s.base, layerID, params)
}

// Identify finds features at a location across the service's layers.
func (s *MapServer) Identify(
	ctx context.Context,
	params arcgisDomain.IdentifyParams,
) (*arcgisDomain.IdentifyResultCollection, error) {
	v, err := params.Values()
	if err != nil {
		return nil, err
	}

	result, err := rest.PostForm[arcgisDomain.IdentifyResultCollection](
		ctx, s.client, s.endpoint("identify"), s.authorize(v), s.options()...,
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Layer returns the full description of one layer or table.
func (s *MapServer) Layer(ctx context.Context, layerID int) (*arcgisDomain.LayerInfo, error) {
	if !s.hasLayer(layerID) {
		return nil, apperrors.Wrapf(arcgisDomain.ErrLayerNotFound, "layer %d of %s", layerID, s.name)
	}

	info, err := rest.Hydrate[arcgisDomain.LayerInfo](
		ctx, s.client, s.target(s.endpoint(strconv.Itoa(layerID)), nil), s.options()...,
	)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *MapServer) hasLayer(layerID int) bool {
	for _, l := range s.Info.Layers {
		if l.ID == layerID {
			return true
		}
	}
	for _, t := range s.Info.Tables {
		if t.ID == layerID {
			return true
		}
	}
	return false
}

// queryLayer runs a layer query shared by map and feature services.
func queryLayer(
	ctx context.Context,
	b *base,
	layerID int,
	params arcgisDomain.QueryParams,
) (*arcgisDomain.FeatureSetQuery, error) {
	if layerID < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "layer id must be non-negative")
	}

	v, err := params.Values()
	if err != nil {
		return nil, err
	}

	result, err := rest.Hydrate[arcgisDomain.FeatureSetQuery](
		ctx, b.client, b.target(b.endpoint(strconv.Itoa(layerID), "query"), v), b.options()...,
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
