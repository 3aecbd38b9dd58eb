package service

import (
	"context"
	"net/url"
	"strconv"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
	"github.com/geocrest/gateway/internal/rest"
)

// GeocodeServer is a hydrated geocode service.
type GeocodeServer struct {
	base
	Info arcgisDomain.GeocodeServerInfo
}

func newGeocodeServer(ctx context.Context, f *Factory, b base) (arcgisDomain.Service, error) {
	info, err := rest.Hydrate[arcgisDomain.GeocodeServerInfo](ctx, b.client, b.target(b.endpoint(), nil), b.options()...)
	if err != nil {
		return nil, err
	}
	return &GeocodeServer{base: b, Info: info}, nil
}

// WithToken returns a copy of the service that authenticates with token.
func (s *GeocodeServer) WithToken(token string) arcgisDomain.Service {
	clone := *s
	clone.token = token
	return &clone
}

// FindAddressCandidates geocodes an address. Candidates are returned best first.
func (s *GeocodeServer) FindAddressCandidates(
	ctx context.Context,
	params arcgisDomain.FindAddressParams,
) (*arcgisDomain.AddressCandidateCollection, error) {
	singleLineField := ""
	if s.Info.SingleLineAddressField != nil {
		singleLineField = s.Info.SingleLineAddressField.Name
	}

	v, err := params.Values(singleLineField)
	if err != nil {
		return nil, err
	}

	result, err := rest.Hydrate[arcgisDomain.AddressCandidateCollection](
		ctx, s.client, s.target(s.endpoint("findAddressCandidates"), v), s.options()...,
	)
	if err != nil {
		return nil, err
	}

	arcgisDomain.SortCandidates(result.Candidates)
	return &result, nil
}

// ReverseGeocode finds the address nearest to a point within distance meters.
func (s *GeocodeServer) ReverseGeocode(
	ctx context.Context,
	location arcgisDomain.Geometry,
	distance float64,
	outSR int,
) (*arcgisDomain.ReverseGeocodedAddress, error) {
	if location.Type != arcgisDomain.GeometryPoint {
		return nil, apperrors.Wrap(arcgisDomain.ErrInvalidGeometry, "reverse geocode location must be a point")
	}

	param, err := location.ToParam()
	if err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("location", param)
	if distance > 0 {
		v.Set("distance", strconv.FormatFloat(distance, 'f', -1, 64))
	}
	if outSR != 0 {
		v.Set("outSR", strconv.Itoa(outSR))
	}

	result, err := rest.Hydrate[arcgisDomain.ReverseGeocodedAddress](
		ctx, s.client, s.target(s.endpoint("reverseGeocode"), v), s.options()...,
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
