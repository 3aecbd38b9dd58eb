package domain

import (
	"strings"

	json "github.com/goccy/go-json"
)

// ServiceType is the ArcGIS service kind, the last path segment of a service URL.
type ServiceType string

// Service types with a gateway implementation.
const (
	MapServer      ServiceType = "MapServer"
	FeatureServer  ServiceType = "FeatureServer"
	GeocodeServer  ServiceType = "GeocodeServer"
	GeometryServer ServiceType = "GeometryServer"
	GPServer       ServiceType = "GPServer"
	MobileServer   ServiceType = "MobileServer"
)

var serviceTypes = []ServiceType{
	MapServer, FeatureServer, GeocodeServer, GeometryServer, GPServer, MobileServer,
}

// enumKey normalizes an ArcGIS enum name for permissive matching:
// case-insensitive and with or without the "esri" prefix.
func enumKey(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(key, "esri")
}

// ParseServiceType resolves s to a supported service type.
func ParseServiceType(s string) (ServiceType, bool) {
	key := enumKey(s)
	for _, t := range serviceTypes {
		if strings.ToLower(string(t)) == key {
			return t, true
		}
	}
	return ServiceType(s), false
}

// IsSupported reports whether t has a gateway implementation.
func (t ServiceType) IsSupported() bool {
	_, ok := ParseServiceType(string(t))
	return ok
}

// UnmarshalJSON canonicalizes supported type names and keeps others verbatim
// (catalogs list ImageServer, SceneServer and others the gateway does not model).
func (t *ServiceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t, _ = ParseServiceType(s)
	return nil
}

// ServiceTypeFromURL returns the service type named by the last path segment of
// a service URL, ignoring query string and trailing slashes.
func ServiceTypeFromURL(serviceURL string) (ServiceType, bool) {
	path := serviceURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	segment := path[strings.LastIndex(path, "/")+1:]
	return ParseServiceType(segment)
}
