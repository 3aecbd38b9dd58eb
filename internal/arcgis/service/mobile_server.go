package service

import (
	"context"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/rest"
)

// MobileServer is a hydrated mobile service. It exposes metadata only.
type MobileServer struct {
	base
	Info arcgisDomain.MobileServerInfo
}

func newMobileServer(ctx context.Context, f *Factory, b base) (arcgisDomain.Service, error) {
	info, err := rest.Hydrate[arcgisDomain.MobileServerInfo](ctx, b.client, b.target(b.endpoint(), nil), b.options()...)
	if err != nil {
		return nil, err
	}
	return &MobileServer{base: b, Info: info}, nil
}

// WithToken returns a copy of the service that authenticates with token.
func (s *MobileServer) WithToken(token string) arcgisDomain.Service {
	clone := *s
	clone.token = token
	return &clone
}
