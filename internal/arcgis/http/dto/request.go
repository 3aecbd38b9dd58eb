// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	validation "github.com/jellydator/validation"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
	customValidation "github.com/geocrest/gateway/internal/validation"
)

// CatalogRequest addresses a catalog by its services root url.
type CatalogRequest struct {
	URL   string `form:"url"`
	Proxy string `form:"proxy"`
}

// Validate checks if the catalog request is valid.
func (r *CatalogRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.URL, validation.Required, customValidation.ServicesURL),
		validation.Field(&r.Proxy, customValidation.AbsoluteURL),
	)
}

// ServiceRequest addresses a single service.
type ServiceRequest struct {
	URL   string `form:"url"   json:"url"`
	Proxy string `form:"proxy" json:"proxy"`
}

// Validate checks if the service request is valid.
func (r *ServiceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.URL, validation.Required, customValidation.ServicesURL),
		validation.Field(&r.Proxy, customValidation.AbsoluteURL),
	)
}

// QueryRequest contains the query string parameters of a layer query.
type QueryRequest struct {
	ServiceRequest
	Layer           int    `form:"layer"`
	Where           string `form:"where"`
	ObjectIDs       string `form:"objectIds"`
	Geometry        string `form:"geometry"`
	InSR            int    `form:"inSR"`
	SpatialRel      string `form:"spatialRel"`
	OutFields       string `form:"outFields"`
	OutSR           int    `form:"outSR"`
	OrderByFields   string `form:"orderByFields"`
	ReturnGeometry  *bool  `form:"returnGeometry"`
	ReturnIDsOnly   bool   `form:"returnIdsOnly"`
	ReturnCountOnly bool   `form:"returnCountOnly"`
}

// Validate checks if the query request is valid.
func (r *QueryRequest) Validate() error {
	if err := r.ServiceRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Layer, validation.Min(0)),
		validation.Field(&r.InSR, validation.Min(0)),
		validation.Field(&r.OutSR, validation.Min(0)),
	)
}

// ToParams converts the request to query parameters.
func (r *QueryRequest) ToParams() (arcgisDomain.QueryParams, error) {
	params := arcgisDomain.QueryParams{
		Where:           r.Where,
		InSR:            r.InSR,
		SpatialRel:      arcgisDomain.SpatialRel(r.SpatialRel),
		OutFields:       splitList(r.OutFields),
		ReturnGeometry:  r.ReturnGeometry == nil || *r.ReturnGeometry,
		ReturnIDsOnly:   r.ReturnIDsOnly,
		ReturnCountOnly: r.ReturnCountOnly,
		OutSR:           r.OutSR,
		OrderByFields:   r.OrderByFields,
	}

	for _, raw := range splitList(r.ObjectIDs) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return arcgisDomain.QueryParams{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid object id %q", raw)
		}
		params.ObjectIDs = append(params.ObjectIDs, id)
	}

	if r.Geometry != "" {
		var geometry arcgisDomain.Geometry
		if err := json.Unmarshal([]byte(r.Geometry), &geometry); err != nil {
			return arcgisDomain.QueryParams{}, apperrors.Wrap(arcgisDomain.ErrInvalidGeometry, err.Error())
		}
		if geometry.IsNull() {
			return arcgisDomain.QueryParams{}, apperrors.Wrap(arcgisDomain.ErrInvalidGeometry, "no coordinates")
		}
		params.Geometry = &geometry
	}

	return params, nil
}

// ImageDisplayRequest is the screen image of an identify.
type ImageDisplayRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	DPI    int `json:"dpi"`
}

// IdentifyRequest contains the parameters for an identify.
type IdentifyRequest struct {
	ServiceRequest
	Geometry       arcgisDomain.Geometry `json:"geometry"`
	SR             int                   `json:"sr"`
	Layers         string                `json:"layers"`
	LayerIDs       []int                 `json:"layer_ids"`
	LayerDefs      map[string]string     `json:"layer_defs"`
	Tolerance      int                   `json:"tolerance"`
	MapExtent      arcgisDomain.Geometry `json:"map_extent"`
	ImageDisplay   ImageDisplayRequest   `json:"image_display"`
	ReturnGeometry bool                  `json:"return_geometry"`
}

// Validate checks if the identify request is valid.
func (r *IdentifyRequest) Validate() error {
	if err := r.ServiceRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Geometry, validation.By(requireGeometry)),
		validation.Field(&r.MapExtent, validation.By(requireGeometry)),
		validation.Field(&r.Tolerance, validation.Min(0)),
	)
}

// ToParams converts the request to identify parameters.
func (r *IdentifyRequest) ToParams() (arcgisDomain.IdentifyParams, error) {
	option, err := arcgisDomain.ParseIdentifyOption(r.Layers)
	if err != nil {
		return arcgisDomain.IdentifyParams{}, err
	}

	var defs map[int]string
	if len(r.LayerDefs) > 0 {
		defs = make(map[int]string, len(r.LayerDefs))
		for key, expr := range r.LayerDefs {
			id, err := strconv.Atoi(key)
			if err != nil {
				return arcgisDomain.IdentifyParams{}, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid layer id %q in layerDefs", key)
			}
			defs[id] = expr
		}
	}

	return arcgisDomain.IdentifyParams{
		Geometry:  r.Geometry,
		SR:        r.SR,
		Layers:    option,
		LayerIDs:  r.LayerIDs,
		LayerDefs: defs,
		Tolerance: r.Tolerance,
		MapExtent: r.MapExtent,
		ImageDisplay: arcgisDomain.ImageDisplay{
			Width:  r.ImageDisplay.Width,
			Height: r.ImageDisplay.Height,
			DPI:    r.ImageDisplay.DPI,
		},
		ReturnGeometry: r.ReturnGeometry,
	}, nil
}

// GeocodeRequest contains the parameters for an address geocode.
type GeocodeRequest struct {
	ServiceRequest
	SingleLine   string            `json:"single_line"`
	Address      map[string]string `json:"address"`
	OutFields    []string          `json:"out_fields"`
	MaxLocations int               `json:"max_locations"`
	OutSR        int               `json:"out_sr"`
}

// Validate checks if the geocode request is valid.
func (r *GeocodeRequest) Validate() error {
	if err := r.ServiceRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.SingleLine, validation.When(len(r.Address) == 0, validation.Required, customValidation.NotBlank)),
		validation.Field(&r.MaxLocations, validation.Min(0)),
		validation.Field(&r.OutSR, validation.Min(0)),
	)
}

// ToParams converts the request to geocode parameters.
func (r *GeocodeRequest) ToParams() arcgisDomain.FindAddressParams {
	return arcgisDomain.FindAddressParams{
		SingleLine:   r.SingleLine,
		Address:      r.Address,
		OutFields:    r.OutFields,
		MaxLocations: r.MaxLocations,
		OutSR:        r.OutSR,
	}
}

// ReverseGeocodeRequest contains the query string parameters of a reverse geocode.
type ReverseGeocodeRequest struct {
	ServiceRequest
	X        *float64 `form:"x"`
	Y        *float64 `form:"y"`
	WKID     int      `form:"wkid"`
	Distance float64  `form:"distance"`
	OutSR    int      `form:"outSR"`
}

// Validate checks if the reverse geocode request is valid.
func (r *ReverseGeocodeRequest) Validate() error {
	if err := r.ServiceRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.X, validation.NotNil),
		validation.Field(&r.Y, validation.NotNil),
		validation.Field(&r.WKID, validation.Min(0)),
		validation.Field(&r.Distance, validation.Min(0.0)),
		validation.Field(&r.OutSR, validation.Min(0)),
	)
}

// Location returns the point to reverse geocode.
func (r *ReverseGeocodeRequest) Location() arcgisDomain.Geometry {
	var sr *arcgisDomain.SpatialReference
	if r.WKID != 0 {
		sr = arcgisDomain.NewSpatialReference(r.WKID)
	}
	return arcgisDomain.NewPoint(*r.X, *r.Y, sr)
}

// ProjectRequest contains the parameters for a projection.
type ProjectRequest struct {
	ServiceRequest
	Geometries []arcgisDomain.Geometry `json:"geometries"`
	InSR       int                     `json:"in_sr"`
	OutSR      int                     `json:"out_sr"`
}

// Validate checks if the project request is valid.
func (r *ProjectRequest) Validate() error {
	if err := r.ServiceRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Geometries, validation.Required),
		validation.Field(&r.InSR, validation.Required, validation.Min(1)),
		validation.Field(&r.OutSR, validation.Required, validation.Min(1)),
	)
}

// ParameterRequest is one geoprocessing input. Value is decoded according to DataType.
type ParameterRequest struct {
	Name     string          `json:"name"`
	DataType string          `json:"data_type"`
	Value    json.RawMessage `json:"value"`
}

// Validate checks if the parameter is valid.
func (p ParameterRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&p.DataType, validation.Required),
		validation.Field(&p.Value, validation.Required),
	)
}

// ExecuteRequest contains the parameters for running a geoprocessing task.
// Wait is only honored by job submission: the response is sent once the job
// reaches a terminal status.
type ExecuteRequest struct {
	ServiceRequest
	Task       string             `json:"task"`
	Parameters []ParameterRequest `json:"parameters"`
	Wait       bool               `json:"wait"`
}

// Validate checks if the execute request is valid.
func (r *ExecuteRequest) Validate() error {
	if err := r.ServiceRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Task, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Parameters),
	)
}

// ToParams decodes the parameters into geoprocessing values.
func (r *ExecuteRequest) ToParams() ([]arcgisDomain.GPParameter, error) {
	params := make([]arcgisDomain.GPParameter, 0, len(r.Parameters))
	for _, p := range r.Parameters {
		value, err := arcgisDomain.ParseGPValue(p.DataType, p.Value)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "parameter %s: %v", p.Name, err)
		}
		if value == nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "parameter %s: value is null", p.Name)
		}
		params = append(params, arcgisDomain.GPParameter{Name: p.Name, DataType: p.DataType, Value: value})
	}
	return params, nil
}

// JobRequest addresses a job of a geoprocessing task.
type JobRequest struct {
	ServiceRequest
	Task  string `form:"task"`
	Image bool   `form:"image"`
	OutSR int    `form:"outSR"`
}

// Validate checks if the job request is valid.
func (r *JobRequest) Validate() error {
	if err := r.ServiceRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Task, validation.Required, customValidation.NotBlank),
		validation.Field(&r.OutSR, validation.Min(0)),
	)
}

func requireGeometry(value interface{}) error {
	g, ok := value.(arcgisDomain.Geometry)
	if !ok || g.IsNull() {
		return validation.NewError("validation_geometry", "must be a point, envelope, polyline or polygon")
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
