// Package service implements the ArcGIS service variants and the factory that
// discovers catalogs and builds services from their REST metadata.
package service

import (
	"context"
	"net/url"
	"strings"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/rest"
)

const servicesPath = "/rest/services"

// Querier is implemented by services whose layers can be queried.
type Querier interface {
	Query(ctx context.Context, layerID int, params arcgisDomain.QueryParams) (*arcgisDomain.FeatureSetQuery, error)
}

// Identifier is implemented by services that support identify.
type Identifier interface {
	Identify(ctx context.Context, params arcgisDomain.IdentifyParams) (*arcgisDomain.IdentifyResultCollection, error)
}

// Geocoder is implemented by geocode services.
type Geocoder interface {
	FindAddressCandidates(
		ctx context.Context,
		params arcgisDomain.FindAddressParams,
	) (*arcgisDomain.AddressCandidateCollection, error)
	ReverseGeocode(
		ctx context.Context,
		location arcgisDomain.Geometry,
		distance float64,
		outSR int,
	) (*arcgisDomain.ReverseGeocodedAddress, error)
}

// Projector is implemented by geometry services.
type Projector interface {
	Project(ctx context.Context, geometries []arcgisDomain.Geometry, inSR, outSR int) ([]arcgisDomain.Geometry, error)
}

// Geoprocessor is implemented by geoprocessing services.
type Geoprocessor interface {
	Task(ctx context.Context, name string) (*GPTask, error)
}

// base holds what every service variant shares. Variants embed it by value so
// WithToken can copy them.
type base struct {
	client      *rest.Client
	url         string
	name        string
	serviceType arcgisDomain.ServiceType
	proxyURL    string
	token       string
	version     float64
}

func newBase(client *rest.Client, serviceURL string, serviceType arcgisDomain.ServiceType, o serviceOptions) base {
	normalized := NormalizeURL(serviceURL)
	return base{
		client:      client,
		url:         normalized,
		name:        serviceName(normalized),
		serviceType: serviceType,
		proxyURL:    o.proxyURL,
		token:       o.token,
		version:     o.version,
	}
}

// URL returns the service URL.
func (b *base) URL() string { return b.url }

// Name returns the service name including its folder, e.g. "Utilities/Water".
func (b *base) Name() string { return b.name }

// Type returns the service type.
func (b *base) Type() arcgisDomain.ServiceType { return b.serviceType }

// Version returns the ArcGIS Server version the service was discovered under.
func (b *base) Version() float64 { return b.version }

// ProxyURL returns the proxy requests are routed through, if any.
func (b *base) ProxyURL() string { return b.proxyURL }

// endpoint joins path segments onto the service URL.
func (b *base) endpoint(parts ...string) string {
	if len(parts) == 0 {
		return b.url
	}
	return b.url + "/" + strings.Join(parts, "/")
}

// target returns endpoint with v and the service token as query string.
func (b *base) target(endpoint string, v url.Values) string {
	v = b.authorize(v)
	if len(v) == 0 {
		return endpoint
	}
	return endpoint + "?" + v.Encode()
}

// authorize adds the service token to v when one is held.
func (b *base) authorize(v url.Values) url.Values {
	if b.token == "" {
		return v
	}
	if v == nil {
		v = url.Values{}
	}
	v.Set("token", b.token)
	return v
}

func (b *base) options() []rest.RequestOption {
	return []rest.RequestOption{rest.WithProxy(b.proxyURL)}
}

// NormalizeURL drops the query string, fragment and trailing slashes.
func NormalizeURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimRight(raw, "/")
}

// serviceName extracts the path between the services root and the type segment.
func serviceName(serviceURL string) string {
	lower := strings.ToLower(serviceURL)
	i := strings.Index(lower, servicesPath+"/")
	if i < 0 {
		return ""
	}
	tail := serviceURL[i+len(servicesPath)+1:]
	if j := strings.LastIndex(tail, "/"); j >= 0 {
		return tail[:j]
	}
	return tail
}

// ServicesRoot returns the services root of a service or folder URL, or "" when
// the URL is not under /rest/services.
func ServicesRoot(serviceURL string) string {
	i := strings.Index(strings.ToLower(serviceURL), servicesPath)
	if i < 0 {
		return ""
	}
	return serviceURL[:i+len(servicesPath)]
}
