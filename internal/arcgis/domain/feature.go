package domain

// Field describes an attribute column of a layer, table or feature set.
type Field struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Alias  string `json:"alias,omitempty"`
	Length int    `json:"length,omitempty"`
}

// Feature is a geometry with attributes. Geometry is nil for table rows.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
}

// FeatureSet is a homogeneous collection of features.
type FeatureSet struct {
	DisplayFieldName      string            `json:"displayFieldName,omitempty"`
	GeometryType          GeometryType      `json:"geometryType,omitempty"`
	SpatialReference      *SpatialReference `json:"spatialReference,omitempty"`
	Fields                []Field           `json:"fields,omitempty"`
	Features              []Feature         `json:"features"`
	ExceededTransferLimit bool              `json:"exceededTransferLimit,omitempty"`
}

// FeatureSetQuery is the result of a layer query. Depending on the request it
// carries features, only object ids, or only a count.
type FeatureSetQuery struct {
	FeatureSet
	ObjectIDFieldName string  `json:"objectIdFieldName,omitempty"`
	ObjectIDs         []int64 `json:"objectIds,omitempty"`
	Count             *int64  `json:"count,omitempty"`
}
