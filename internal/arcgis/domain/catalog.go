package domain

import (
	"strings"
	"time"
)

// TokenSafetyMargin is how long before expiry a server token is treated as stale.
const TokenSafetyMargin = time.Minute

// Service is the common surface of every hydrated ArcGIS service variant.
type Service interface {
	URL() string
	Name() string
	Type() ServiceType
	Version() float64

	// WithToken returns a copy of the service that authenticates with token.
	WithToken(token string) Service
}

// ServiceInfo is a service entry listed by a catalog or folder document.
type ServiceInfo struct {
	Name string      `json:"name"`
	Type ServiceType `json:"type"`
}

// URL returns the service URL under rootURL. Folder services carry their folder
// in Name ("Utilities/Water").
func (s ServiceInfo) URL(rootURL string) string {
	return strings.TrimRight(rootURL, "/") + "/" + s.Name + "/" + string(s.Type)
}

// AuthInfo describes how a server is secured.
type AuthInfo struct {
	IsTokenBasedSecurity    bool   `json:"isTokenBasedSecurity"`
	TokenServicesURL        string `json:"tokenServicesUrl,omitempty"`
	ShortLivedTokenValidity int    `json:"shortLivedTokenValidity,omitempty"`
}

// CatalogInfo is the JSON document served at a services root or folder.
type CatalogInfo struct {
	CurrentVersion float64       `json:"currentVersion"`
	Folders        []string      `json:"folders"`
	Services       []ServiceInfo `json:"services"`
	AuthInfo       *AuthInfo     `json:"authInfo,omitempty"`
}

// ServerToken is a token issued by an ArcGIS token service.
// A placeholder (empty Value) marks a secured catalog with no token yet.
type ServerToken struct {
	Value   string
	Expires time.Time
}

// IsPlaceholder reports whether the token has not been acquired.
func (t *ServerToken) IsPlaceholder() bool {
	return t == nil || t.Value == ""
}

// TokenResponse is the generateToken response document.
type TokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
	SSL     bool   `json:"ssl"`
}

// ServerToken converts the response, whose expiry is epoch milliseconds.
func (r TokenResponse) ServerToken() *ServerToken {
	return &ServerToken{Value: r.Token, Expires: time.UnixMilli(r.Expires).UTC()}
}

// Catalog is an immutable snapshot of an ArcGIS server's services root.
// Refreshing produces a new snapshot; a Catalog is never mutated after creation.
type Catalog struct {
	RootURL        string
	ProxyURL       string
	CurrentVersion float64
	Folders        []string
	ServiceInfos   []ServiceInfo
	Services       []Service
	AuthInfo       *AuthInfo
	Token          *ServerToken
	FetchedAt      time.Time
}

// RequiresToken reports whether the server uses token-based security.
func (c *Catalog) RequiresToken() bool {
	return c.AuthInfo != nil && c.AuthInfo.IsTokenBasedSecurity
}

// IsTokenValid reports whether the catalog can be used as is at now: either no
// token is required, or the held token outlives now by TokenSafetyMargin.
func (c *Catalog) IsTokenValid(now time.Time) bool {
	if !c.RequiresToken() {
		return true
	}
	if c.Token.IsPlaceholder() {
		return false
	}
	return c.Token.Expires.After(now.Add(TokenSafetyMargin))
}

// TokenValue returns the held token value, or "" when none is held.
func (c *Catalog) TokenValue() string {
	if c.Token == nil {
		return ""
	}
	return c.Token.Value
}

// WithToken returns a copy of the catalog holding token.
func (c *Catalog) WithToken(token *ServerToken) *Catalog {
	clone := *c
	clone.Token = token
	return &clone
}

// WithServices returns a copy of the catalog holding services.
func (c *Catalog) WithServices(services []Service) *Catalog {
	clone := *c
	clone.Services = services
	return &clone
}
