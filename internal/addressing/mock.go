package addressing

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed response.json
var mockResponse []byte

// EndpointSigner signs a URL by appending a signature query parameter.
type EndpointSigner interface {
	SignEndpoint(endpoint string) (string, error)
}

// MockAdapter answers every search with a fixture entry, echoing back the
// requested identifier. With a signer configured the fixture's endpoints are
// signed on every call.
type MockAdapter struct {
	signer EndpointSigner
}

// NewMockAdapter returns a fixture-backed adapter. A nil signer leaves the
// fixture URLs unsigned.
func NewMockAdapter(signer EndpointSigner) *MockAdapter {
	return &MockAdapter{signer: signer}
}

func (a *MockAdapter) SearchByMedmijName(ctx context.Context, name string) (*SearchEntry, error) {
	return a.search(IdentificationMedmij, name)
}

func (a *MockAdapter) SearchByURA(ctx context.Context, ura string) (*SearchEntry, error) {
	return a.search(IdentificationURA, ura)
}

func (a *MockAdapter) SearchByAGB(ctx context.Context, agb string) (*SearchEntry, error) {
	return a.search(IdentificationAGB, agb)
}

func (a *MockAdapter) SearchByHRN(ctx context.Context, hrn string) (*SearchEntry, error) {
	return a.search(IdentificationHRN, hrn)
}

func (a *MockAdapter) SearchByKVK(ctx context.Context, kvk string) (*SearchEntry, error) {
	return a.search(IdentificationKVK, kvk)
}

func (a *MockAdapter) search(idType IdentificationType, value string) (*SearchEntry, error) {
	var entry SearchEntry
	if err := json.Unmarshal(mockResponse, &entry); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	entry.IDType = idType
	entry.IDValue = value

	if a.signer == nil {
		return &entry, nil
	}
	if err := a.signEndpoints(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (a *MockAdapter) signEndpoints(entry *SearchEntry) error {
	for i := range entry.DataServices {
		ds := &entry.DataServices[i]

		var err error
		if ds.AuthEndpoint, err = a.signer.SignEndpoint(ds.AuthEndpoint); err != nil {
			return err
		}
		if ds.TokenEndpoint, err = a.signer.SignEndpoint(ds.TokenEndpoint); err != nil {
			return err
		}
		for j := range ds.Roles {
			if ds.Roles[j].ResourceEndpoint, err = a.signer.SignEndpoint(ds.Roles[j].ResourceEndpoint); err != nil {
				return err
			}
		}
	}
	return nil
}
