// Package domain defines the ArcGIS service model shared by the gateway:
// geometries and feature sets, service metadata, catalogs and geoprocessing types.
package domain

import (
	json "github.com/goccy/go-json"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// GeometryType is the ArcGIS geometry type name.
type GeometryType string

// Supported geometry types. The empty type is the null geometry.
const (
	GeometryNull     GeometryType = ""
	GeometryPoint    GeometryType = "esriGeometryPoint"
	GeometryEnvelope GeometryType = "esriGeometryEnvelope"
	GeometryPolyline GeometryType = "esriGeometryPolyline"
	GeometryPolygon  GeometryType = "esriGeometryPolygon"
)

// SpatialReference identifies a coordinate system by well-known id or text.
type SpatialReference struct {
	WKID       int    `json:"wkid,omitempty"`
	LatestWKID int    `json:"latestWkid,omitempty"`
	WKT        string `json:"wkt,omitempty"`
}

// NewSpatialReference returns a reference to the given well-known id.
func NewSpatialReference(wkid int) *SpatialReference {
	return &SpatialReference{WKID: wkid}
}

// Geometry is an ArcGIS point, envelope, polyline or polygon.
//
// The type is inferred from which coordinate group is present when decoding:
// x/y, xmin/ymin/xmax/ymax, paths or rings. Exactly one group may be present;
// an empty object is the null geometry.
type Geometry struct {
	Type GeometryType

	X, Y float64

	XMin, YMin, XMax, YMax float64

	Paths [][][]float64
	Rings [][][]float64

	SpatialReference *SpatialReference
}

// NewPoint returns a point geometry.
func NewPoint(x, y float64, sr *SpatialReference) Geometry {
	return Geometry{Type: GeometryPoint, X: x, Y: y, SpatialReference: sr}
}

// NewEnvelope returns an envelope geometry.
func NewEnvelope(xmin, ymin, xmax, ymax float64, sr *SpatialReference) Geometry {
	return Geometry{Type: GeometryEnvelope, XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax, SpatialReference: sr}
}

// NewPolyline returns a polyline geometry.
func NewPolyline(paths [][][]float64, sr *SpatialReference) Geometry {
	return Geometry{Type: GeometryPolyline, Paths: paths, SpatialReference: sr}
}

// NewPolygon returns a polygon geometry.
func NewPolygon(rings [][][]float64, sr *SpatialReference) Geometry {
	return Geometry{Type: GeometryPolygon, Rings: rings, SpatialReference: sr}
}

// IsNull reports whether g carries no coordinates.
func (g Geometry) IsNull() bool {
	return g.Type == GeometryNull
}

type geometryJSON struct {
	X                *float64          `json:"x,omitempty"`
	Y                *float64          `json:"y,omitempty"`
	XMin             *float64          `json:"xmin,omitempty"`
	YMin             *float64          `json:"ymin,omitempty"`
	XMax             *float64          `json:"xmax,omitempty"`
	YMax             *float64          `json:"ymax,omitempty"`
	Paths            [][][]float64     `json:"paths,omitempty"`
	Rings            [][][]float64     `json:"rings,omitempty"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// MarshalJSON writes only the coordinate group of g's type.
func (g Geometry) MarshalJSON() ([]byte, error) {
	out := geometryJSON{SpatialReference: g.SpatialReference}
	switch g.Type {
	case GeometryPoint:
		out.X, out.Y = &g.X, &g.Y
	case GeometryEnvelope:
		out.XMin, out.YMin, out.XMax, out.YMax = &g.XMin, &g.YMin, &g.XMax, &g.YMax
	case GeometryPolyline:
		out.Paths = g.Paths
	case GeometryPolygon:
		out.Rings = g.Rings
	}
	return json.Marshal(out)
}

// UnmarshalJSON infers the geometry type from the populated coordinate group.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var in geometryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return apperrors.Wrap(ErrInvalidGeometry, err.Error())
	}

	hasPoint := in.X != nil || in.Y != nil
	hasEnvelope := in.XMin != nil || in.YMin != nil || in.XMax != nil || in.YMax != nil

	groups := 0
	for _, present := range []bool{hasPoint, hasEnvelope, in.Paths != nil, in.Rings != nil} {
		if present {
			groups++
		}
	}
	if groups > 1 {
		return apperrors.Wrap(ErrInvalidGeometry, "more than one coordinate group present")
	}

	*g = Geometry{SpatialReference: in.SpatialReference}
	switch {
	case hasPoint:
		if in.X == nil || in.Y == nil {
			return apperrors.Wrap(ErrInvalidGeometry, "point requires x and y")
		}
		g.Type, g.X, g.Y = GeometryPoint, *in.X, *in.Y
	case hasEnvelope:
		if in.XMin == nil || in.YMin == nil || in.XMax == nil || in.YMax == nil {
			return apperrors.Wrap(ErrInvalidGeometry, "envelope requires xmin, ymin, xmax and ymax")
		}
		g.Type = GeometryEnvelope
		g.XMin, g.YMin, g.XMax, g.YMax = *in.XMin, *in.YMin, *in.XMax, *in.YMax
	case in.Paths != nil:
		g.Type, g.Paths = GeometryPolyline, in.Paths
	case in.Rings != nil:
		g.Type, g.Rings = GeometryPolygon, in.Rings
	}
	return nil
}

// ToParam encodes g for an ArcGIS "geometry" query parameter.
func (g Geometry) ToParam() (string, error) {
	if g.IsNull() {
		return "", apperrors.Wrap(ErrInvalidGeometry, "null geometry")
	}
	data, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CommonType returns the type shared by all geometries, or ErrMixedGeometryTypes.
func CommonType(geometries []Geometry) (GeometryType, error) {
	if len(geometries) == 0 {
		return GeometryNull, apperrors.Wrap(apperrors.ErrInvalidInput, "no geometries")
	}
	first := geometries[0].Type
	if first == GeometryNull {
		return GeometryNull, apperrors.Wrap(ErrInvalidGeometry, "null geometry")
	}
	for _, g := range geometries[1:] {
		if g.Type != first {
			return GeometryNull, ErrMixedGeometryTypes
		}
	}
	return first, nil
}
