package domain

// Symbol is an ArcGIS symbol (simple marker/line/fill, picture marker/fill or text).
type Symbol struct {
	Type        string  `json:"type"`
	Style       string  `json:"style,omitempty"`
	Color       []int   `json:"color,omitempty"`
	Size        float64 `json:"size,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Angle       float64 `json:"angle,omitempty"`
	XOffset     float64 `json:"xoffset,omitempty"`
	YOffset     float64 `json:"yoffset,omitempty"`
	Outline     *Symbol `json:"outline,omitempty"`
	URL         string  `json:"url,omitempty"`
	ImageData   string  `json:"imageData,omitempty"`
	ContentType string  `json:"contentType,omitempty"`
	Height      float64 `json:"height,omitempty"`
}

// UniqueValueInfo maps one attribute value to a symbol.
type UniqueValueInfo struct {
	Value       string  `json:"value"`
	Label       string  `json:"label,omitempty"`
	Description string  `json:"description,omitempty"`
	Symbol      *Symbol `json:"symbol,omitempty"`
}

// ClassBreakInfo maps a value range to a symbol.
type ClassBreakInfo struct {
	ClassMinValue float64 `json:"classMinValue,omitempty"`
	ClassMaxValue float64 `json:"classMaxValue"`
	Label         string  `json:"label,omitempty"`
	Description   string  `json:"description,omitempty"`
	Symbol        *Symbol `json:"symbol,omitempty"`
}

// Renderer is a simple, unique value or class breaks renderer.
type Renderer struct {
	Type             string            `json:"type"`
	Symbol           *Symbol           `json:"symbol,omitempty"`
	Label            string            `json:"label,omitempty"`
	Description      string            `json:"description,omitempty"`
	Field1           string            `json:"field1,omitempty"`
	Field2           string            `json:"field2,omitempty"`
	Field3           string            `json:"field3,omitempty"`
	FieldDelimiter   string            `json:"fieldDelimiter,omitempty"`
	DefaultSymbol    *Symbol           `json:"defaultSymbol,omitempty"`
	DefaultLabel     string            `json:"defaultLabel,omitempty"`
	UniqueValueInfos []UniqueValueInfo `json:"uniqueValueInfos,omitempty"`
	Field            string            `json:"field,omitempty"`
	MinValue         float64           `json:"minValue,omitempty"`
	ClassBreakInfos  []ClassBreakInfo  `json:"classBreakInfos,omitempty"`
}

// DrawingInfo is a layer's rendering description.
type DrawingInfo struct {
	Renderer     *Renderer `json:"renderer,omitempty"`
	Transparency int       `json:"transparency,omitempty"`
	LabelingInfo []any     `json:"labelingInfo,omitempty"`
}
