package domain

// LayerRef is a reference to a layer by id and name.
type LayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MapLayerInfo is a layer entry of a map service root document.
type MapLayerInfo struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	ParentLayerID     int     `json:"parentLayerId"`
	DefaultVisibility bool    `json:"defaultVisibility"`
	SubLayerIDs       []int   `json:"subLayerIds,omitempty"`
	MinScale          float64 `json:"minScale,omitempty"`
	MaxScale          float64 `json:"maxScale,omitempty"`
}

// LayerInfo is the full description of a single layer or table.
type LayerInfo struct {
	ID                   int          `json:"id"`
	Name                 string       `json:"name"`
	Type                 string       `json:"type"`
	Description          string       `json:"description,omitempty"`
	GeometryType         GeometryType `json:"geometryType,omitempty"`
	CopyrightText        string       `json:"copyrightText,omitempty"`
	ParentLayer          *LayerRef    `json:"parentLayer,omitempty"`
	SubLayers            []LayerRef   `json:"subLayers,omitempty"`
	MinScale             float64      `json:"minScale,omitempty"`
	MaxScale             float64      `json:"maxScale,omitempty"`
	DefaultVisibility    bool         `json:"defaultVisibility"`
	Extent               *Geometry    `json:"extent,omitempty"`
	DisplayField         string       `json:"displayField,omitempty"`
	DefinitionExpression string       `json:"definitionExpression,omitempty"`
	Fields               []Field      `json:"fields,omitempty"`
	DrawingInfo          *DrawingInfo `json:"drawingInfo,omitempty"`
	Capabilities         string       `json:"capabilities,omitempty"`
	MaxRecordCount       int          `json:"maxRecordCount,omitempty"`
}

// LOD is a tile cache level of detail.
type LOD struct {
	Level      int     `json:"level"`
	Resolution float64 `json:"resolution"`
	Scale      float64 `json:"scale"`
}

// TileOrigin is the upper-left corner of a tiling scheme.
type TileOrigin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TileInfo describes the tiling scheme of a cached map service.
type TileInfo struct {
	Rows               int               `json:"rows"`
	Cols               int               `json:"cols"`
	DPI                int               `json:"dpi"`
	Format             string            `json:"format"`
	CompressionQuality int               `json:"compressionQuality,omitempty"`
	Origin             TileOrigin        `json:"origin"`
	SpatialReference   *SpatialReference `json:"spatialReference,omitempty"`
	LODs               []LOD             `json:"lods"`
}
