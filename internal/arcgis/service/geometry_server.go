package service

import (
	"context"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
	"github.com/geocrest/gateway/internal/rest"
)

// GeometryServer is a hydrated geometry service.
type GeometryServer struct {
	base
	Info arcgisDomain.GeometryServerInfo
}

func newGeometryServer(ctx context.Context, f *Factory, b base) (arcgisDomain.Service, error) {
	info, err := rest.Hydrate[arcgisDomain.GeometryServerInfo](ctx, b.client, b.target(b.endpoint(), nil), b.options()...)
	if err != nil {
		return nil, err
	}
	return &GeometryServer{base: b, Info: info}, nil
}

// WithToken returns a copy of the service that authenticates with token.
func (s *GeometryServer) WithToken(token string) arcgisDomain.Service {
	clone := *s
	clone.token = token
	return &clone
}

type geometryBatch struct {
	GeometryType arcgisDomain.GeometryType `json:"geometryType"`
	Geometries   []arcgisDomain.Geometry   `json:"geometries"`
}

type projectResponse struct {
	Geometries []arcgisDomain.Geometry `json:"geometries"`
}

// Project reprojects geometries from inSR to outSR. All geometries must share
// one type; the output order matches the input order.
func (s *GeometryServer) Project(
	ctx context.Context,
	geometries []arcgisDomain.Geometry,
	inSR, outSR int,
) ([]arcgisDomain.Geometry, error) {
	geometryType, err := arcgisDomain.CommonType(geometries)
	if err != nil {
		return nil, err
	}
	if inSR == 0 || outSR == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "inSR and outSR are required")
	}

	batch, err := json.Marshal(geometryBatch{GeometryType: geometryType, Geometries: geometries})
	if err != nil {
		return nil, apperrors.Wrap(arcgisDomain.ErrInvalidGeometry, err.Error())
	}

	v := url.Values{}
	v.Set("geometries", string(batch))
	v.Set("inSR", strconv.Itoa(inSR))
	v.Set("outSR", strconv.Itoa(outSR))

	result, err := rest.PostForm[projectResponse](ctx, s.client, s.endpoint("project"), s.authorize(v), s.options()...)
	if err != nil {
		return nil, err
	}
	if len(result.Geometries) != len(geometries) {
		return nil, apperrors.Wrapf(rest.ErrMalformedResponse,
			"project returned %d geometries for %d inputs", len(result.Geometries), len(geometries))
	}
	return result.Geometries, nil
}

// ProjectAsync runs Project on a new goroutine and invokes callback exactly once.
func (s *GeometryServer) ProjectAsync(
	ctx context.Context,
	geometries []arcgisDomain.Geometry,
	inSR, outSR int,
	callback func([]arcgisDomain.Geometry, error),
) {
	go func() {
		callback(s.Project(ctx, geometries, inSR, outSR))
	}()
}
