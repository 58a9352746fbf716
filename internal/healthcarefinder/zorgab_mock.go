package healthcarefinder

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zorgadres/register/internal/addressing"
)

//go:embed zorgab_response.json
var zorgABResponse []byte

// zorgABOrganization is a captured, already-hydrated registry record.
type zorgABOrganization struct {
	DisplayName string                `json:"displayName"`
	Addresses   []Address             `json:"addresses"`
	Types       []zorgABOrganizationType `json:"types"`
}

type zorgABOrganizationType struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

// ZorgABMockHydrationAdapter replays a captured ZorgAB response without
// touching the network or the local directory.
type ZorgABMockHydrationAdapter struct {
	log zerolog.Logger
}

func NewZorgABMockHydrationAdapter(log zerolog.Logger) *ZorgABMockHydrationAdapter {
	return &ZorgABMockHydrationAdapter{log: log}
}

func (a *ZorgABMockHydrationAdapter) SearchOrganizations(ctx context.Context, search SearchRequest) (*SearchResponse, error) {
	a.log.Info().Str("name", search.Name).Str("city", search.City).
		Msg("searching with captured registry response")

	var records []zorgABOrganization
	if err := json.Unmarshal(zorgABResponse, &records); err != nil {
		return nil, fmt.Errorf("parse captured response: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	orgs := make([]Organization, 0, len(records))
	for _, record := range records {
		org := Organization{
			DisplayName:  record.DisplayName,
			Identifier:   "ura:1234567890",
			Addresses:    []Address{},
			Types:        []CType{},
			DataServices: []addressing.DataServiceEntry{},
		}
		if len(record.Addresses) > 0 {
			org.Addresses = append(org.Addresses, record.Addresses[0])
		}
		for _, typ := range record.Types {
			org.Types = append(org.Types, CType{
				Code:        typ.Code,
				DisplayName: typ.DisplayName,
				Type:        typ.Type,
			})
		}
		orgs = append(orgs, org)
	}

	return &SearchResponse{Organizations: orgs}, nil
}
