package domain

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// AddressCandidate is a geocoding match.
type AddressCandidate struct {
	Address    string         `json:"address"`
	Location   Geometry       `json:"location"`
	Score      float64        `json:"score"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Extent     *Geometry      `json:"extent,omitempty"`
}

// CompareCandidates orders candidates by descending score.
func CompareCandidates(a, b AddressCandidate) int {
	return -cmp.Compare(a.Score, b.Score)
}

// SortCandidates sorts candidates best first. Equal scores keep their order.
func SortCandidates(candidates []AddressCandidate) {
	slices.SortStableFunc(candidates, CompareCandidates)
}

// AddressCandidateCollection is the findAddressCandidates response document.
type AddressCandidateCollection struct {
	SpatialReference *SpatialReference  `json:"spatialReference,omitempty"`
	Candidates       []AddressCandidate `json:"candidates"`
}

// FindAddressParams are the inputs of a geocode.
//
// SingleLine is sent as the locator's single line field; Address holds
// multi-field input keyed by address field name. At least one is required.
type FindAddressParams struct {
	SingleLine   string
	Address      map[string]string
	OutFields    []string
	MaxLocations int
	OutSR        int
	SearchExtent *Geometry
}

// Values encodes the geocode as ArcGIS REST parameters. singleLineField is the
// locator's single line field name; "SingleLine" is used when empty.
func (p FindAddressParams) Values(singleLineField string) (url.Values, error) {
	if p.SingleLine == "" && len(p.Address) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "an address or single line input is required")
	}

	v := url.Values{}
	for field, value := range p.Address {
		v.Set(field, value)
	}
	if p.SingleLine != "" {
		if singleLineField == "" {
			singleLineField = "SingleLine"
		}
		v.Set(singleLineField, p.SingleLine)
	}
	if len(p.OutFields) > 0 {
		v.Set("outFields", strings.Join(p.OutFields, ","))
	}
	if p.MaxLocations > 0 {
		v.Set("maxLocations", strconv.Itoa(p.MaxLocations))
	}
	if p.OutSR != 0 {
		v.Set("outSR", strconv.Itoa(p.OutSR))
	}
	if p.SearchExtent != nil {
		extent, err := p.SearchExtent.ToParam()
		if err != nil {
			return nil, err
		}
		v.Set("searchExtent", extent)
	}
	return v, nil
}

// ReverseGeocodedAddress is the reverseGeocode response document.
type ReverseGeocodedAddress struct {
	Address  map[string]any `json:"address"`
	Location Geometry       `json:"location"`
}
