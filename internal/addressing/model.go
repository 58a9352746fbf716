package addressing

import "fmt"

// IdentificationType enumerates the identifier schemes a search request can
// use. The values are wire values, stable across the public API.
type IdentificationType string

const (
	IdentificationMedmij IdentificationType = "medmij"
	IdentificationURA    IdentificationType = "ura"
	IdentificationAGB    IdentificationType = "agb-z"
	IdentificationHRN    IdentificationType = "htn"
	IdentificationKVK    IdentificationType = "kvk"
)

func ParseIdentificationType(s string) (IdentificationType, error) {
	switch IdentificationType(s) {
	case IdentificationMedmij, IdentificationURA, IdentificationAGB, IdentificationHRN, IdentificationKVK:
		return IdentificationType(s), nil
	}
	return "", fmt.Errorf("unknown identification type %q", s)
}

// RoleEntry is one system role of a data service in a search response.
type RoleEntry struct {
	Code             string `json:"code"`
	ResourceEndpoint string `json:"resource_endpoint"`
}

// DataServiceEntry is one data service of an organisation in a search
// response. Endpoint URLs carry a signature query parameter when endpoint
// signing is enabled.
type DataServiceEntry struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	InterfaceVersions []string    `json:"interface_versions"`
	AuthEndpoint      string      `json:"auth_endpoint"`
	TokenEndpoint     string      `json:"token_endpoint"`
	Roles             []RoleEntry `json:"roles"`
}

// SearchEntry is the search result for a single organisation.
type SearchEntry struct {
	MedmijID         string             `json:"medmij_id"`
	OrganizationType string             `json:"organization_type"`
	IDType           IdentificationType `json:"id_type"`
	IDValue          string             `json:"id_value"`
	DataServices     []DataServiceEntry `json:"dataservices"`
}

// SearchRequest identifies an organisation by one identifier.
type SearchRequest struct {
	IDType  IdentificationType `json:"id_type"`
	IDValue string             `json:"id_value"`
}
