package healthcarefinder

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zorgadres/register/internal/addressing"
)

//go:embed fixtures.json
var mockOrganizations []byte

const mockURLPlaceholder = "{{MOCK_URL}}"

// MockAdapter serves a fixed set of organisations for development and
// qualification runs. Fixture endpoints pointing at the mock DVA are rebased
// onto the configured base URL and signed when a signer is present.
type MockAdapter struct {
	signer      addressing.EndpointSigner
	mockBaseURL string
	log         zerolog.Logger
}

func NewMockAdapter(signer addressing.EndpointSigner, mockBaseURL string, log zerolog.Logger) *MockAdapter {
	return &MockAdapter{signer: signer, mockBaseURL: mockBaseURL, log: log}
}

func (a *MockAdapter) SearchOrganizations(ctx context.Context, search SearchRequest) (*SearchResponse, error) {
	a.log.Info().Str("name", search.Name).Str("city", search.City).
		Msg("searching with fixture adapter")

	var orgs []Organization
	if err := json.Unmarshal(mockOrganizations, &orgs); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	for i := range orgs {
		if err := a.prepareDataServices(orgs[i].DataServices); err != nil {
			return nil, err
		}
	}

	return &SearchResponse{Organizations: orgs}, nil
}

func (a *MockAdapter) prepareDataServices(services []addressing.DataServiceEntry) error {
	for i := range services {
		ds := &services[i]

		var err error
		if ds.AuthEndpoint, err = a.prepareEndpoint(ds.AuthEndpoint); err != nil {
			return err
		}
		if ds.TokenEndpoint, err = a.prepareEndpoint(ds.TokenEndpoint); err != nil {
			return err
		}
		for j := range ds.Roles {
			if ds.Roles[j].ResourceEndpoint, err = a.prepareEndpoint(ds.Roles[j].ResourceEndpoint); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *MockAdapter) prepareEndpoint(endpoint string) (string, error) {
	endpoint = strings.ReplaceAll(endpoint, mockURLPlaceholder, a.mockBaseURL)
	if a.signer == nil || endpoint == "" {
		return endpoint, nil
	}
	return a.signer.SignEndpoint(endpoint)
}
