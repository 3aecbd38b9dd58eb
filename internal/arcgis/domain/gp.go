package domain

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// Geoprocessing data type names.
const (
	GPTypeLong                  = "GPLong"
	GPTypeDouble                = "GPDouble"
	GPTypeString                = "GPString"
	GPTypeBoolean               = "GPBoolean"
	GPTypeDate                  = "GPDate"
	GPTypeLinearUnit            = "GPLinearUnit"
	GPTypeRecordSet             = "GPRecordSet"
	GPTypeFeatureRecordSetLayer = "GPFeatureRecordSetLayer"
	GPTypeDataFile              = "GPDataFile"
	GPTypeRasterData            = "GPRasterData"
	GPTypeRasterDataLayer       = "GPRasterDataLayer"
	GPTypeMultiValue            = "GPMultiValue"
	GPTypeMapImage              = "GPMapImage"
)

// GPValue is a geoprocessing parameter value. The set of implementations is closed.
type GPValue interface {
	DataType() string
	formValue() (string, error)
}

// GPLong is an integer value.
type GPLong int64

// GPDouble is a floating point value.
type GPDouble float64

// GPString is a string value.
type GPString string

// GPBoolean is a boolean value.
type GPBoolean bool

// GPDate is a date value, encoded as epoch milliseconds.
type GPDate struct {
	Time time.Time
}

// GPLinearUnit is a distance with units, such as 5 esriMiles.
type GPLinearUnit struct {
	Distance float64 `json:"distance"`
	Units    string  `json:"units"`
}

// GPRecordSet is a table of rows without geometry.
type GPRecordSet struct {
	Fields   []Field   `json:"fields,omitempty"`
	Features []Feature `json:"features"`
}

// GPFeatureRecordSetLayer is a feature set.
type GPFeatureRecordSetLayer struct {
	FeatureSet
}

// GPDataFile is a file referenced by URL.
type GPDataFile struct {
	URL string `json:"url"`
}

// GPRasterData is a raster referenced by URL.
type GPRasterData struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

// GPMultiValue is a list of values of one element type.
type GPMultiValue struct {
	ElementType string
	Values      []GPValue
}

// GPMapImage is a result rendered by the result map service.
type GPMapImage struct {
	Href   string    `json:"href"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
	Scale  float64   `json:"scale,omitempty"`
	Extent *Geometry `json:"extent,omitempty"`
}

func (GPLong) DataType() string                  { return GPTypeLong }
func (GPDouble) DataType() string                { return GPTypeDouble }
func (GPString) DataType() string                { return GPTypeString }
func (GPBoolean) DataType() string               { return GPTypeBoolean }
func (GPDate) DataType() string                  { return GPTypeDate }
func (GPLinearUnit) DataType() string            { return GPTypeLinearUnit }
func (GPRecordSet) DataType() string             { return GPTypeRecordSet }
func (GPFeatureRecordSetLayer) DataType() string { return GPTypeFeatureRecordSetLayer }
func (GPDataFile) DataType() string              { return GPTypeDataFile }
func (GPRasterData) DataType() string            { return GPTypeRasterData }
func (GPMapImage) DataType() string              { return GPTypeMapImage }

// DataType returns "GPMultiValue:<element type>".
func (v GPMultiValue) DataType() string {
	return GPTypeMultiValue + ":" + v.ElementType
}

func (v GPLong) formValue() (string, error)    { return strconv.FormatInt(int64(v), 10), nil }
func (v GPDouble) formValue() (string, error)  { return strconv.FormatFloat(float64(v), 'f', -1, 64), nil }
func (v GPString) formValue() (string, error)  { return string(v), nil }
func (v GPBoolean) formValue() (string, error) { return strconv.FormatBool(bool(v)), nil }
func (v GPDate) formValue() (string, error)    { return strconv.FormatInt(v.Time.UnixMilli(), 10), nil }

func (v GPLinearUnit) formValue() (string, error)            { return marshalString(v) }
func (v GPRecordSet) formValue() (string, error)             { return marshalString(v) }
func (v GPFeatureRecordSetLayer) formValue() (string, error) { return marshalString(v) }
func (v GPDataFile) formValue() (string, error)              { return marshalString(v) }
func (v GPRasterData) formValue() (string, error)            { return marshalString(v) }
func (v GPMultiValue) formValue() (string, error)            { return marshalString(v) }
func (v GPMapImage) formValue() (string, error)              { return marshalString(v) }

// MarshalJSON writes the date as epoch milliseconds.
func (v GPDate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(v.Time.UnixMilli(), 10)), nil
}

// MarshalJSON writes the values as a plain array.
func (v GPMultiValue) MarshalJSON() ([]byte, error) {
	values := v.Values
	if values == nil {
		values = []GPValue{}
	}
	return json.Marshal(values)
}

func marshalString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GPParameter is a named geoprocessing value, used both for task inputs and results.
type GPParameter struct {
	Name     string  `json:"paramName"`
	DataType string  `json:"dataType"`
	Value    GPValue `json:"value"`
}

// UnmarshalJSON resolves the value to its GP variant. See DecodeGPResult.
func (p *GPParameter) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeGPResult(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// DecodeGPResult decodes a {"paramName", "dataType", "value"} document.
//
// A value holding a mapImage object is a GPMapImage regardless of dataType.
// Otherwise the value is decoded by dataType, falling back to the data file
// and record set shapes when the type is unknown.
func DecodeGPResult(data []byte) (GPParameter, error) {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return GPParameter{}, apperrors.Wrap(ErrUnsupportedGPType, "result is not an object")
	}

	param := GPParameter{
		Name:     doc.Get("paramName").String(),
		DataType: doc.Get("dataType").String(),
	}

	raw := doc.Get("value")
	if image := raw.Get("mapImage"); image.IsObject() {
		var mapImage GPMapImage
		if err := json.Unmarshal([]byte(image.Raw), &mapImage); err != nil {
			return GPParameter{}, apperrors.Wrap(ErrUnsupportedGPType, err.Error())
		}
		param.Value = mapImage
		if param.DataType == "" {
			param.DataType = GPTypeMapImage
		}
		return param, nil
	}

	value, err := decodeGPValue(param.DataType, raw)
	if err != nil {
		return GPParameter{}, err
	}
	param.Value = value
	if param.DataType == "" && value != nil {
		param.DataType = value.DataType()
	}
	return param, nil
}

// ParseGPValue decodes raw JSON as a value of dataType. A JSON null yields a nil value.
func ParseGPValue(dataType string, raw []byte) (GPValue, error) {
	return decodeGPValue(dataType, gjson.ParseBytes(raw))
}

func decodeGPValue(dataType string, raw gjson.Result) (GPValue, error) {
	if !raw.Exists() {
		return nil, apperrors.Wrapf(ErrUnsupportedGPType, "%s: missing value", dataType)
	}
	// An output the task left unset is reported as null.
	if raw.Type == gjson.Null {
		return nil, nil
	}

	if strings.HasPrefix(dataType, GPTypeMultiValue) {
		element := strings.TrimPrefix(strings.TrimPrefix(dataType, GPTypeMultiValue), ":")
		if !raw.IsArray() {
			return nil, apperrors.Wrapf(ErrUnsupportedGPType, "%s: value is not an array", dataType)
		}
		multi := GPMultiValue{ElementType: element, Values: []GPValue{}}
		for _, item := range raw.Array() {
			v, err := decodeGPValue(element, item)
			if err != nil {
				return nil, err
			}
			multi.Values = append(multi.Values, v)
		}
		return multi, nil
	}

	switch dataType {
	case GPTypeLong:
		if raw.Type != gjson.Number {
			return nil, shapeMismatch(dataType)
		}
		return GPLong(raw.Int()), nil
	case GPTypeDouble:
		if raw.Type != gjson.Number {
			return nil, shapeMismatch(dataType)
		}
		return GPDouble(raw.Float()), nil
	case GPTypeString:
		return GPString(raw.String()), nil
	case GPTypeBoolean:
		if !raw.IsBool() {
			return nil, shapeMismatch(dataType)
		}
		return GPBoolean(raw.Bool()), nil
	case GPTypeDate:
		if raw.Type != gjson.Number {
			return nil, shapeMismatch(dataType)
		}
		return GPDate{Time: time.UnixMilli(raw.Int()).UTC()}, nil
	case GPTypeLinearUnit:
		return unmarshalGP[GPLinearUnit](dataType, raw)
	case GPTypeRecordSet:
		return unmarshalGP[GPRecordSet](dataType, raw)
	case GPTypeFeatureRecordSetLayer:
		return unmarshalGP[GPFeatureRecordSetLayer](dataType, raw)
	case GPTypeDataFile:
		return unmarshalGP[GPDataFile](dataType, raw)
	case GPTypeRasterData, GPTypeRasterDataLayer:
		return unmarshalGP[GPRasterData](dataType, raw)
	}

	switch {
	case raw.Get("url").Exists():
		if raw.Get("format").Exists() {
			return unmarshalGP[GPRasterData](dataType, raw)
		}
		return unmarshalGP[GPDataFile](dataType, raw)
	case raw.Get("features").IsArray():
		if raw.Get("geometryType").Exists() {
			return unmarshalGP[GPFeatureRecordSetLayer](dataType, raw)
		}
		return unmarshalGP[GPRecordSet](dataType, raw)
	}

	return nil, apperrors.Wrapf(ErrUnsupportedGPType, "%q", dataType)
}

func unmarshalGP[T GPValue](dataType string, raw gjson.Result) (GPValue, error) {
	if !raw.IsObject() {
		return nil, shapeMismatch(dataType)
	}
	var v T
	if err := json.Unmarshal([]byte(raw.Raw), &v); err != nil {
		return nil, apperrors.Wrapf(ErrUnsupportedGPType, "%s: %v", dataType, err)
	}
	return v, nil
}

func shapeMismatch(dataType string) error {
	return apperrors.Wrapf(ErrUnsupportedGPType, "%s: value has the wrong shape", dataType)
}

// EncodeGPInputs encodes task inputs as form values keyed by parameter name.
func EncodeGPInputs(params []GPParameter) (url.Values, error) {
	v := url.Values{}
	for _, p := range params {
		if p.Name == "" || p.Value == nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "geoprocessing parameter requires a name and a value")
		}
		encoded, err := p.Value.formValue()
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "parameter %s: %v", p.Name, err)
		}
		v.Set(p.Name, encoded)
	}
	return v, nil
}

// GPMessage is a message emitted by a geoprocessing task.
type GPMessage struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// GPExecuteResult is the response document of a synchronous execute.
type GPExecuteResult struct {
	Results  []GPParameter `json:"results"`
	Messages []GPMessage   `json:"messages,omitempty"`
}
