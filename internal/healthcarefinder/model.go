package healthcarefinder

import (
	"strings"

	"github.com/zorgadres/register/internal/addressing"
)

type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Address struct {
	Active      bool         `json:"active"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	Country     string       `json:"country"`
	Lines       []string     `json:"lines,omitempty"`
	Geolocation *GeoLocation `json:"geolocation,omitempty"`
	PostalCode  string       `json:"postalcode"`
	State       string       `json:"state,omitempty"`
}

// CType is an organisation type coding (for instance a Vektis zorgsoort).
type CType struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

// Identification renders as "type:value" in responses.
type Identification struct {
	Type  string
	Value string
}

func (i Identification) String() string {
	return i.Type + ":" + i.Value
}

// Organization is a hydrated search result: directory data from the remote
// registry combined with the data services known locally.
type Organization struct {
	MedmijID     *string                       `json:"medmij_id"`
	DisplayName  string                        `json:"display_name"`
	Identifier   string                        `json:"identification"`
	Addresses    []Address                     `json:"addresses"`
	Types        []CType                       `json:"types"`
	DataServices []addressing.DataServiceEntry `json:"data_services"`
}

type SearchRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}

// Normalized returns the request with surrounding whitespace stripped.
func (r SearchRequest) Normalized() SearchRequest {
	return SearchRequest{
		Name: strings.TrimSpace(r.Name),
		City: strings.TrimSpace(r.City),
	}
}

type SearchResponse struct {
	Organizations []Organization `json:"organizations"`
}
