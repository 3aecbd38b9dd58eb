package domain

import (
	json "github.com/goccy/go-json"
)

// TableInfo is a layer or table entry listed by a service root document.
type TableInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DocumentInfo is the descriptive metadata ArcGIS attaches to services.
type DocumentInfo struct {
	Title    string `json:"Title,omitempty"`
	Author   string `json:"Author,omitempty"`
	Comments string `json:"Comments,omitempty"`
	Subject  string `json:"Subject,omitempty"`
	Category string `json:"Category,omitempty"`
	Keywords string `json:"Keywords,omitempty"`
}

// MapServerInfo is the root document of a map service.
type MapServerInfo struct {
	CurrentVersion            float64           `json:"currentVersion"`
	ServiceDescription        string            `json:"serviceDescription,omitempty"`
	MapName                   string            `json:"mapName,omitempty"`
	Description               string            `json:"description,omitempty"`
	CopyrightText             string            `json:"copyrightText,omitempty"`
	Layers                    []MapLayerInfo    `json:"layers"`
	Tables                    []TableInfo       `json:"tables,omitempty"`
	SpatialReference          *SpatialReference `json:"spatialReference,omitempty"`
	SingleFusedMapCache       bool              `json:"singleFusedMapCache"`
	TileInfo                  *TileInfo         `json:"tileInfo,omitempty"`
	InitialExtent             *Geometry         `json:"initialExtent,omitempty"`
	FullExtent                *Geometry         `json:"fullExtent,omitempty"`
	Units                     string            `json:"units,omitempty"`
	SupportedImageFormatTypes string            `json:"supportedImageFormatTypes,omitempty"`
	DocumentInfo              *DocumentInfo     `json:"documentInfo,omitempty"`
	Capabilities              string            `json:"capabilities,omitempty"`
}

// FeatureServerInfo is the root document of a feature service.
type FeatureServerInfo struct {
	CurrentVersion              float64           `json:"currentVersion"`
	ServiceDescription          string            `json:"serviceDescription,omitempty"`
	HasVersionedData            bool              `json:"hasVersionedData"`
	SupportsDisconnectedEditing bool              `json:"supportsDisconnectedEditing"`
	MaxRecordCount              int               `json:"maxRecordCount,omitempty"`
	Capabilities                string            `json:"capabilities,omitempty"`
	Description                 string            `json:"description,omitempty"`
	CopyrightText               string            `json:"copyrightText,omitempty"`
	SpatialReference            *SpatialReference `json:"spatialReference,omitempty"`
	InitialExtent               *Geometry         `json:"initialExtent,omitempty"`
	FullExtent                  *Geometry         `json:"fullExtent,omitempty"`
	Units                       string            `json:"units,omitempty"`
	Layers                      []TableInfo       `json:"layers"`
	Tables                      []TableInfo       `json:"tables,omitempty"`
}

// GeocodeServerInfo is the root document of a geocode service.
type GeocodeServerInfo struct {
	CurrentVersion              float64           `json:"currentVersion"`
	ServiceDescription          string            `json:"serviceDescription,omitempty"`
	AddressFields               []Field           `json:"addressFields"`
	SingleLineAddressField      *Field            `json:"singleLineAddressField,omitempty"`
	CandidateFields             []Field           `json:"candidateFields"`
	IntersectionCandidateFields []Field           `json:"intersectionCandidateFields,omitempty"`
	SpatialReference            *SpatialReference `json:"spatialReference,omitempty"`
	LocatorProperties           map[string]any    `json:"locatorProperties,omitempty"`
	Capabilities                string            `json:"capabilities,omitempty"`
}

// GeometryServerInfo is the root document of a geometry service.
type GeometryServerInfo struct {
	CurrentVersion     float64 `json:"currentVersion"`
	ServiceDescription string  `json:"serviceDescription,omitempty"`
}

// ExecutionType is how a geoprocessing service runs its tasks.
type ExecutionType string

// Execution types.
const (
	ExecutionSynchronous  ExecutionType = "esriExecutionTypeSynchronous"
	ExecutionAsynchronous ExecutionType = "esriExecutionTypeAsynchronous"
)

// GPServerInfo is the root document of a geoprocessing service.
type GPServerInfo struct {
	CurrentVersion      float64       `json:"currentVersion"`
	ServiceDescription  string        `json:"serviceDescription,omitempty"`
	Tasks               []string      `json:"tasks"`
	ExecutionType       ExecutionType `json:"executionType,omitempty"`
	ResultMapServerName string        `json:"resultMapServerName,omitempty"`
	MaximumRecords      int           `json:"maximumRecords,omitempty"`
}

// GPParameterInfo describes one parameter of a geoprocessing task.
type GPParameterInfo struct {
	Name          string          `json:"name"`
	DataType      string          `json:"dataType"`
	DisplayName   string          `json:"displayName,omitempty"`
	Description   string          `json:"description,omitempty"`
	Direction     string          `json:"direction"`
	ParameterType string          `json:"parameterType,omitempty"`
	Category      string          `json:"category,omitempty"`
	DefaultValue  json.RawMessage `json:"defaultValue,omitempty"`
	ChoiceList    []string        `json:"choiceList,omitempty"`
}

// GPTaskInfo is the description document of a geoprocessing task.
type GPTaskInfo struct {
	Name          string            `json:"name"`
	DisplayName   string            `json:"displayName,omitempty"`
	Description   string            `json:"description,omitempty"`
	Category      string            `json:"category,omitempty"`
	HelpURL       string            `json:"helpUrl,omitempty"`
	ExecutionType ExecutionType     `json:"executionType,omitempty"`
	Parameters    []GPParameterInfo `json:"parameters"`
}

// MobileServerInfo is the root document of a mobile service.
type MobileServerInfo struct {
	CurrentVersion   float64           `json:"currentVersion"`
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	Layers           []TableInfo       `json:"layers"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
	InitialExtent    *Geometry         `json:"initialExtent,omitempty"`
	FullExtent       *Geometry         `json:"fullExtent,omitempty"`
}
