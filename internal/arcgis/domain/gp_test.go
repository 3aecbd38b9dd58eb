package domain

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGPResult_Variants(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected GPValue
	}{
		{"long", `{"paramName":"Count","dataType":"GPLong","value":42}`, GPLong(42)},
		{"double", `{"paramName":"Area","dataType":"GPDouble","value":12.5}`, GPDouble(12.5)},
		{"string", `{"paramName":"Status","dataType":"GPString","value":"done"}`, GPString("done")},
		{"boolean", `{"paramName":"Ok","dataType":"GPBoolean","value":true}`, GPBoolean(true)},
		{
			"date",
			`{"paramName":"When","dataType":"GPDate","value":1700000000000}`,
			GPDate{Time: time.UnixMilli(1700000000000).UTC()},
		},
		{
			"linear unit",
			`{"paramName":"Dist","dataType":"GPLinearUnit","value":{"distance":5,"units":"esriMiles"}}`,
			GPLinearUnit{Distance: 5, Units: "esriMiles"},
		},
		{
			"data file",
			`{"paramName":"Out","dataType":"GPDataFile","value":{"url":"https://gis.example.com/out.zip"}}`,
			GPDataFile{URL: "https://gis.example.com/out.zip"},
		},
		{
			"raster",
			`{"paramName":"Out","dataType":"GPRasterDataLayer","value":{"url":"https://gis.example.com/r.tif","format":"tif"}}`,
			GPRasterData{URL: "https://gis.example.com/r.tif", Format: "tif"},
		},
		{
			"multi value",
			`{"paramName":"Names","dataType":"GPMultiValue:GPString","value":["a","b"]}`,
			GPMultiValue{ElementType: "GPString", Values: []GPValue{GPString("a"), GPString("b")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param, err := DecodeGPResult([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, param.Value)
			assert.NotEmpty(t, param.Name)
		})
	}
}

func TestDecodeGPResult_MapImageFirst(t *testing.T) {
	input := `{"paramName":"Output","dataType":"GPFeatureRecordSetLayer","value":{"mapImage":{"href":"https://gis.example.com/img.png","width":400,"height":300,"scale":5000,"extent":{"xmin":0,"ymin":0,"xmax":10,"ymax":10}}}}`

	param, err := DecodeGPResult([]byte(input))
	require.NoError(t, err)

	image, ok := param.Value.(GPMapImage)
	require.True(t, ok)
	assert.Equal(t, "https://gis.example.com/img.png", image.Href)
	assert.Equal(t, 400, image.Width)
	require.NotNil(t, image.Extent)
	assert.Equal(t, GeometryEnvelope, image.Extent.Type)
}

func TestDecodeGPResult_FeatureSet(t *testing.T) {
	input := `{"paramName":"Output","dataType":"GPFeatureRecordSetLayer","value":{"geometryType":"esriGeometryPoint","spatialReference":{"wkid":4326},"fields":[{"name":"ID","type":"esriFieldTypeOID"}],"features":[{"attributes":{"ID":1},"geometry":{"x":1,"y":2}}]}}`

	param, err := DecodeGPResult([]byte(input))
	require.NoError(t, err)

	layer, ok := param.Value.(GPFeatureRecordSetLayer)
	require.True(t, ok)
	assert.Equal(t, GeometryPoint, layer.GeometryType)
	require.Len(t, layer.Features, 1)
	assert.Equal(t, GeometryPoint, layer.Features[0].Geometry.Type)
}

func TestDecodeGPResult_FallbackByShape(t *testing.T) {
	param, err := DecodeGPResult([]byte(`{"paramName":"Out","dataType":"GPZipFile","value":{"url":"https://x/out.zip"}}`))
	require.NoError(t, err)
	assert.Equal(t, GPDataFile{URL: "https://x/out.zip"}, param.Value)

	param, err = DecodeGPResult([]byte(`{"paramName":"Rows","dataType":"GPTableView","value":{"fields":[],"features":[{"attributes":{"A":1}}]}}`))
	require.NoError(t, err)
	_, ok := param.Value.(GPRecordSet)
	assert.True(t, ok)
}

func TestDecodeGPResult_Unsupported(t *testing.T) {
	inputs := []string{
		`{"paramName":"X","dataType":"GPSomething","value":{"a":1}}`,
		`{"paramName":"X","dataType":"GPLong","value":"not a number"}`,
		`{"paramName":"X","dataType":"GPLong"}`,
		`[1,2]`,
	}
	for _, input := range inputs {
		_, err := DecodeGPResult([]byte(input))
		assert.ErrorIs(t, err, ErrUnsupportedGPType, input)
	}
}

func TestGPExecuteResult_Unmarshal(t *testing.T) {
	input := `{"results":[{"paramName":"Count","dataType":"GPLong","value":3}],"messages":[{"type":"esriJobMessageTypeInformative","description":"Done"}]}`

	var result GPExecuteResult
	require.NoError(t, json.Unmarshal([]byte(input), &result))

	require.Len(t, result.Results, 1)
	assert.Equal(t, GPLong(3), result.Results[0].Value)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "Done", result.Messages[0].Description)
}

func TestGPExecuteResult_UnmarshalNullValue(t *testing.T) {
	input := `{"results":[{"paramName":"Count","dataType":"GPLong","value":null},{"paramName":"Note","value":null}],"messages":[]}`

	var result GPExecuteResult
	require.NoError(t, json.Unmarshal([]byte(input), &result))

	require.Len(t, result.Results, 2)
	assert.Equal(t, "Count", result.Results[0].Name)
	assert.Equal(t, GPTypeLong, result.Results[0].DataType)
	assert.Nil(t, result.Results[0].Value)
	assert.Empty(t, result.Results[1].DataType)
	assert.Nil(t, result.Results[1].Value)

	multi, err := ParseGPValue("GPMultiValue:GPLong", []byte(`[1,null]`))
	require.NoError(t, err)
	assert.Equal(t, GPMultiValue{ElementType: GPTypeLong, Values: []GPValue{GPLong(1), nil}}, multi)
}

func TestEncodeGPInputs(t *testing.T) {
	v, err := EncodeGPInputs([]GPParameter{
		{Name: "Count", Value: GPLong(7)},
		{Name: "Ratio", Value: GPDouble(0.25)},
		{Name: "Name", Value: GPString("Redlands")},
		{Name: "When", Value: GPDate{Time: time.UnixMilli(1700000000000)}},
		{Name: "Dist", Value: GPLinearUnit{Distance: 1, Units: "esriKilometers"}},
		{Name: "Names", Value: GPMultiValue{ElementType: GPTypeString, Values: []GPValue{GPString("a")}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "7", v.Get("Count"))
	assert.Equal(t, "0.25", v.Get("Ratio"))
	assert.Equal(t, "Redlands", v.Get("Name"))
	assert.Equal(t, "1700000000000", v.Get("When"))
	assert.JSONEq(t, `{"distance":1,"units":"esriKilometers"}`, v.Get("Dist"))
	assert.JSONEq(t, `["a"]`, v.Get("Names"))

	_, err = EncodeGPInputs([]GPParameter{{Name: "", Value: GPLong(1)}})
	assert.Error(t, err)
}

func TestParseGPValue(t *testing.T) {
	v, err := ParseGPValue(GPTypeLong, []byte(`12`))
	require.NoError(t, err)
	assert.Equal(t, GPLong(12), v)
	assert.Equal(t, GPTypeLong, v.DataType())

	multi, err := ParseGPValue("GPMultiValue:GPLong", []byte(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, "GPMultiValue:GPLong", multi.DataType())
}
