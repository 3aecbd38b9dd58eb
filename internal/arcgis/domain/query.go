package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// SpatialRel is the spatial relationship applied by a geometry filter.
type SpatialRel string

// Spatial relationships.
const (
	SpatialRelIntersects SpatialRel = "esriSpatialRelIntersects"
	SpatialRelContains   SpatialRel = "esriSpatialRelContains"
	SpatialRelWithin     SpatialRel = "esriSpatialRelWithin"
	SpatialRelCrosses    SpatialRel = "esriSpatialRelCrosses"
	SpatialRelTouches    SpatialRel = "esriSpatialRelTouches"
	SpatialRelOverlaps   SpatialRel = "esriSpatialRelOverlaps"
	SpatialRelEnvelope   SpatialRel = "esriSpatialRelEnvelopeIntersects"
)

// QueryParams are the inputs of a layer query.
type QueryParams struct {
	Where           string
	ObjectIDs       []int64
	Geometry        *Geometry
	InSR            int
	SpatialRel      SpatialRel
	OutFields       []string
	ReturnGeometry  bool
	ReturnIDsOnly   bool
	ReturnCountOnly bool
	OutSR           int
	OrderByFields   string
}

// Values encodes the query as ArcGIS REST parameters.
//
// When both ReturnCountOnly and ReturnIDsOnly are set, the count wins and
// returnIdsOnly is omitted.
func (p QueryParams) Values() (url.Values, error) {
	v := url.Values{}

	where := p.Where
	if where == "" && len(p.ObjectIDs) == 0 && p.Geometry == nil {
		where = "1=1"
	}
	if where != "" {
		v.Set("where", where)
	}

	if len(p.ObjectIDs) > 0 {
		v.Set("objectIds", joinInt64(p.ObjectIDs))
	}

	if p.Geometry != nil {
		geometry, err := p.Geometry.ToParam()
		if err != nil {
			return nil, err
		}
		v.Set("geometry", geometry)
		v.Set("geometryType", string(p.Geometry.Type))

		rel := p.SpatialRel
		if rel == "" {
			rel = SpatialRelIntersects
		}
		v.Set("spatialRel", string(rel))
	}
	if p.InSR != 0 {
		v.Set("inSR", strconv.Itoa(p.InSR))
	}

	if len(p.OutFields) > 0 {
		v.Set("outFields", strings.Join(p.OutFields, ","))
	} else {
		v.Set("outFields", "*")
	}

	v.Set("returnGeometry", strconv.FormatBool(p.ReturnGeometry))

	switch {
	case p.ReturnCountOnly:
		v.Set("returnCountOnly", "true")
	case p.ReturnIDsOnly:
		v.Set("returnIdsOnly", "true")
	}

	if p.OutSR != 0 {
		v.Set("outSR", strconv.Itoa(p.OutSR))
	}
	if p.OrderByFields != "" {
		v.Set("orderByFields", p.OrderByFields)
	}

	return v, nil
}

func joinInt64(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func joinInt(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
