package domain

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// IdentifyOption selects which layers an identify searches.
type IdentifyOption string

// Identify layer options.
const (
	IdentifyAll     IdentifyOption = "all"
	IdentifyVisible IdentifyOption = "visible"
	IdentifyTop     IdentifyOption = "top"
)

// ParseIdentifyOption resolves s case-insensitively, with or without the
// "esriIdentify" prefix. Empty means IdentifyAll.
func ParseIdentifyOption(s string) (IdentifyOption, error) {
	key := strings.TrimPrefix(enumKey(s), "identify")
	switch key {
	case "", "all":
		return IdentifyAll, nil
	case "visible":
		return IdentifyVisible, nil
	case "top":
		return IdentifyTop, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown identify option %q", s)
}

// ImageDisplay is the screen image size and resolution of an identify request.
type ImageDisplay struct {
	Width  int
	Height int
	DPI    int
}

func (d ImageDisplay) String() string {
	return fmt.Sprintf("%d,%d,%d", d.Width, d.Height, d.DPI)
}

// IdentifyParams are the inputs of a map service identify.
type IdentifyParams struct {
	Geometry       Geometry
	SR             int
	Layers         IdentifyOption
	LayerIDs       []int
	LayerDefs      map[int]string
	Tolerance      int
	MapExtent      Geometry
	ImageDisplay   ImageDisplay
	ReturnGeometry bool
}

// LayersParam returns the "layers" parameter: option[:id,id,...].
func (p IdentifyParams) LayersParam() string {
	option := p.Layers
	if option == "" {
		option = IdentifyAll
	}
	if len(p.LayerIDs) == 0 {
		return string(option)
	}
	return string(option) + ":" + joinInt(p.LayerIDs)
}

// LayerDefsParam returns the "layerDefs" parameter as "id:expr;id:expr" in id order.
// Only layers present in LayerDefs are emitted and, when LayerIDs is set, only
// those among them.
func (p IdentifyParams) LayerDefsParam() string {
	ids := make([]int, 0, len(p.LayerDefs))
	for id := range p.LayerDefs {
		if len(p.LayerIDs) > 0 && !slices.Contains(p.LayerIDs, id) {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	defs := make([]string, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, strconv.Itoa(id)+":"+p.LayerDefs[id])
	}
	return strings.Join(defs, ";")
}

// Values encodes the identify as ArcGIS REST parameters.
func (p IdentifyParams) Values() (url.Values, error) {
	geometry, err := p.Geometry.ToParam()
	if err != nil {
		return nil, err
	}
	if p.MapExtent.Type != GeometryEnvelope {
		return nil, apperrors.Wrap(ErrInvalidGeometry, "mapExtent must be an envelope")
	}
	extent := fmt.Sprintf("%g,%g,%g,%g", p.MapExtent.XMin, p.MapExtent.YMin, p.MapExtent.XMax, p.MapExtent.YMax)

	v := url.Values{}
	v.Set("geometry", geometry)
	v.Set("geometryType", string(p.Geometry.Type))
	if p.SR != 0 {
		v.Set("sr", strconv.Itoa(p.SR))
	}
	v.Set("layers", p.LayersParam())
	if defs := p.LayerDefsParam(); defs != "" {
		v.Set("layerDefs", defs)
	}
	v.Set("tolerance", strconv.Itoa(p.Tolerance))
	v.Set("mapExtent", extent)
	v.Set("imageDisplay", p.ImageDisplay.String())
	v.Set("returnGeometry", strconv.FormatBool(p.ReturnGeometry))
	return v, nil
}

// IdentifyResult is one feature found by an identify.
type IdentifyResult struct {
	LayerID          int            `json:"layerId"`
	LayerName        string         `json:"layerName"`
	DisplayFieldName string         `json:"displayFieldName,omitempty"`
	Value            string         `json:"value"`
	Attributes       map[string]any `json:"attributes"`
	GeometryType     GeometryType   `json:"geometryType,omitempty"`
	Geometry         *Geometry      `json:"geometry,omitempty"`
}

// UnmarshalJSON tolerates numeric "value" fields, which some servers emit.
func (r *IdentifyResult) UnmarshalJSON(data []byte) error {
	var aux struct {
		LayerID          int            `json:"layerId"`
		LayerName        string         `json:"layerName"`
		DisplayFieldName string         `json:"displayFieldName"`
		Value            any            `json:"value"`
		Attributes       map[string]any `json:"attributes"`
		GeometryType     GeometryType   `json:"geometryType"`
		Geometry         *Geometry      `json:"geometry"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = IdentifyResult{
		LayerID:          aux.LayerID,
		LayerName:        aux.LayerName,
		DisplayFieldName: aux.DisplayFieldName,
		Attributes:       aux.Attributes,
		GeometryType:     aux.GeometryType,
		Geometry:         aux.Geometry,
	}
	switch v := aux.Value.(type) {
	case nil:
	case string:
		r.Value = v
	default:
		r.Value = fmt.Sprint(v)
	}
	return nil
}

// IdentifyResultCollection is the identify response document.
type IdentifyResultCollection struct {
	Results []IdentifyResult `json:"results"`
}
