package service

// ServiceOption configures a service built by the factory.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	proxyURL string
	token    string
	version  float64
}

// WithProxy routes the service's requests through proxyURL.
func WithProxy(proxyURL string) ServiceOption {
	return func(o *serviceOptions) {
		o.proxyURL = proxyURL
	}
}

// WithToken authenticates the service's requests with an ArcGIS token.
func WithToken(token string) ServiceOption {
	return func(o *serviceOptions) {
		o.token = token
	}
}

// WithVersion sets the server version, skipping the version lookup.
func WithVersion(version float64) ServiceOption {
	return func(o *serviceOptions) {
		o.version = version
	}
}

// CatalogOption configures catalog discovery.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	proxyURL     string
	withServices bool
}

// WithCatalogProxy routes discovery requests through proxyURL.
func WithCatalogProxy(proxyURL string) CatalogOption {
	return func(o *catalogOptions) {
		o.proxyURL = proxyURL
	}
}

// WithServices crawls folders and builds every supported service.
func WithServices() CatalogOption {
	return func(o *catalogOptions) {
		o.withServices = true
	}
}
