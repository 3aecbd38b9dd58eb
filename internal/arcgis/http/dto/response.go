package dto

import (
	"net/url"
	"time"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/arcgis/service"
)

// Link is a hypermedia link to a related gateway resource.
type Link struct {
	Href string `json:"href"`
}

// Links maps relation names to links.
type Links map[string]Link

// ServiceSummary is a service entry of a catalog listing.
type ServiceSummary struct {
	Name  string                   `json:"name"`
	Type  arcgisDomain.ServiceType `json:"type"`
	URL   string                   `json:"url"`
	Links Links                    `json:"_links"`
}

// CatalogResponse represents a discovered catalog in API responses.
// The server token is never included.
type CatalogResponse struct {
	URL            string           `json:"url"`
	Proxy          string           `json:"proxy,omitempty"`
	CurrentVersion float64          `json:"current_version"`
	Folders        []string         `json:"folders"`
	Secured        bool             `json:"secured"`
	FetchedAt      time.Time        `json:"fetched_at"`
	Services       []ServiceSummary `json:"services"`
	Total          int              `json:"total"`
	Offset         int              `json:"offset"`
	Limit          int              `json:"limit"`
	Links          Links            `json:"_links"`
}

// MapCatalogToResponse converts a catalog to an API response listing the
// services window [offset, offset+limit).
func MapCatalogToResponse(catalog *arcgisDomain.Catalog, services []arcgisDomain.ServiceInfo, offset, limit int) CatalogResponse {
	summaries := make([]ServiceSummary, 0, len(services))
	for _, info := range services {
		serviceURL := info.URL(catalog.RootURL)
		summaries = append(summaries, ServiceSummary{
			Name: info.Name,
			Type: info.Type,
			URL:  serviceURL,
			Links: Links{
				"self": {Href: ServiceHref(serviceURL, catalog.ProxyURL)},
			},
		})
	}

	folders := catalog.Folders
	if folders == nil {
		folders = []string{}
	}

	return CatalogResponse{
		URL:            catalog.RootURL,
		Proxy:          catalog.ProxyURL,
		CurrentVersion: catalog.CurrentVersion,
		Folders:        folders,
		Secured:        catalog.RequiresToken(),
		FetchedAt:      catalog.FetchedAt,
		Services:       summaries,
		Total:          len(catalog.ServiceInfos),
		Offset:         offset,
		Limit:          limit,
		Links: Links{
			"self": {Href: href("/v1/catalog", catalog.RootURL, catalog.ProxyURL, nil)},
		},
	}
}

// ServiceResponse represents a hydrated service in API responses.
type ServiceResponse struct {
	URL        string                   `json:"url"`
	Name       string                   `json:"name"`
	Type       arcgisDomain.ServiceType `json:"type"`
	Version    float64                  `json:"version"`
	Operations []string                 `json:"operations"`
	Metadata   any                      `json:"metadata,omitempty"`
	Links      Links                    `json:"_links"`
}

// MapServiceToResponse converts a service to an API response. Operations and
// links list what the gateway can dispatch to the service.
func MapServiceToResponse(s arcgisDomain.Service, proxyURL string) ServiceResponse {
	links := Links{
		"self":    {Href: ServiceHref(s.URL(), proxyURL)},
		"catalog": {Href: href("/v1/catalog", service.ServicesRoot(s.URL()), proxyURL, nil)},
	}
	operations := []string{}

	if _, ok := s.(service.Querier); ok {
		operations = append(operations, "query")
		links["query"] = Link{Href: href("/v1/service/query", s.URL(), proxyURL, nil)}
	}
	if _, ok := s.(service.Identifier); ok {
		operations = append(operations, "identify")
		links["identify"] = Link{Href: "/v1/service/identify"}
	}
	if _, ok := s.(service.Geocoder); ok {
		operations = append(operations, "geocode", "reverse_geocode")
		links["geocode"] = Link{Href: "/v1/service/geocode"}
		links["reverse_geocode"] = Link{Href: href("/v1/service/reverse-geocode", s.URL(), proxyURL, nil)}
	}
	if _, ok := s.(service.Projector); ok {
		operations = append(operations, "project")
		links["project"] = Link{Href: "/v1/service/project"}
	}
	if _, ok := s.(service.Geoprocessor); ok {
		operations = append(operations, "execute", "submit_job")
		links["execute"] = Link{Href: "/v1/tasks/execute"}
		links["jobs"] = Link{Href: "/v1/tasks/jobs"}
	}

	return ServiceResponse{
		URL:        s.URL(),
		Name:       s.Name(),
		Type:       s.Type(),
		Version:    s.Version(),
		Operations: operations,
		Metadata:   serviceMetadata(s),
		Links:      links,
	}
}

func serviceMetadata(s arcgisDomain.Service) any {
	switch v := s.(type) {
	case *service.MapServer:
		return v.Info
	case *service.FeatureServer:
		return v.Info
	case *service.GeocodeServer:
		return v.Info
	case *service.GeometryServer:
		return v.Info
	case *service.GPServer:
		return v.Info
	case *service.MobileServer:
		return v.Info
	}
	return nil
}

// ResultLink is a job result parameter with its gateway link.
type ResultLink struct {
	ParamURL string `json:"param_url"`
	Href     string `json:"href"`
}

// JobResponse represents a geoprocessing job in API responses.
type JobResponse struct {
	JobID    string                   `json:"job_id"`
	Status   string                   `json:"status"`
	Terminal bool                     `json:"terminal"`
	Messages []arcgisDomain.GPMessage `json:"messages"`
	Results  map[string]ResultLink    `json:"results,omitempty"`
	Links    Links                    `json:"_links"`
}

// MapJobToResponse converts a job status document to an API response.
func MapJobToResponse(job *arcgisDomain.JobInfo, serviceURL, proxyURL, task string) JobResponse {
	jobPath := "/v1/tasks/jobs/" + url.PathEscape(job.JobID)
	extra := url.Values{"task": {task}}

	var results map[string]ResultLink
	if len(job.Results) > 0 {
		results = make(map[string]ResultLink, len(job.Results))
		for name, ref := range job.Results {
			results[name] = ResultLink{
				ParamURL: ref.ParamURL,
				Href:     href(jobPath+"/results/"+url.PathEscape(name), serviceURL, proxyURL, extra),
			}
		}
	}

	messages := job.Messages
	if messages == nil {
		messages = []arcgisDomain.GPMessage{}
	}

	return JobResponse{
		JobID:    job.JobID,
		Status:   job.Status.String(),
		Terminal: job.Status.IsTerminal(),
		Messages: messages,
		Results:  results,
		Links: Links{
			"self": {Href: href(jobPath, serviceURL, proxyURL, extra)},
		},
	}
}

// GPResultResponse represents a geoprocessing result parameter in API responses.
type GPResultResponse struct {
	Name     string               `json:"name"`
	DataType string               `json:"data_type"`
	Value    arcgisDomain.GPValue `json:"value"`
}

// MapGPParameterToResponse converts a geoprocessing parameter to an API response.
func MapGPParameterToResponse(p arcgisDomain.GPParameter) GPResultResponse {
	return GPResultResponse{Name: p.Name, DataType: p.DataType, Value: p.Value}
}

// ExecuteResponse represents the outcome of a synchronous task execution.
type ExecuteResponse struct {
	Results  []GPResultResponse       `json:"results"`
	Messages []arcgisDomain.GPMessage `json:"messages"`
}

// MapExecuteResultToResponse converts an execute result to an API response.
func MapExecuteResultToResponse(result *arcgisDomain.GPExecuteResult) ExecuteResponse {
	response := ExecuteResponse{
		Results:  make([]GPResultResponse, 0, len(result.Results)),
		Messages: result.Messages,
	}
	for _, p := range result.Results {
		response.Results = append(response.Results, MapGPParameterToResponse(p))
	}
	if response.Messages == nil {
		response.Messages = []arcgisDomain.GPMessage{}
	}
	return response
}

// ProjectResponse holds projected geometries in input order.
type ProjectResponse struct {
	Geometries []arcgisDomain.Geometry `json:"geometries"`
}

// ServiceHref returns the gateway link of the service at serviceURL.
func ServiceHref(serviceURL, proxyURL string) string {
	return href("/v1/service", serviceURL, proxyURL, nil)
}

func href(path, target, proxyURL string, extra url.Values) string {
	v := url.Values{}
	for key, values := range extra {
		v[key] = values
	}
	v.Set("url", target)
	if proxyURL != "" {
		v.Set("proxy", proxyURL)
	}
	return path + "?" + v.Encode()
}
