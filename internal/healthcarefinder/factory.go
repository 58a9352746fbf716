package healthcarefinder

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zorgadres/register/internal/addressing"
)

// AdapterType selects the directory backing the healthcare finder.
type AdapterType string

const (
	AdapterMock              AdapterType = "mock"
	AdapterZorgAB            AdapterType = "zorgab"
	AdapterMockZorgABHydrate AdapterType = "mock_zorgab_hydrated"
)

// AdapterDeps carries the inputs any adapter implementation may need.
type AdapterDeps struct {
	ZorgAB      ZorgABConfig
	Addressing  *addressing.Service
	Signer      addressing.EndpointSigner
	MockBaseURL string
	Log         zerolog.Logger
}

// NewAdapter selects the adapter implementation once at startup.
func NewAdapter(typ AdapterType, deps AdapterDeps) (Adapter, error) {
	switch typ {
	case AdapterZorgAB:
		hydrator := NewHydrator(deps.Addressing, deps.Log)
		return NewZorgABAdapter(deps.ZorgAB, hydrator, deps.Log)
	case AdapterMockZorgABHydrate:
		return NewZorgABMockHydrationAdapter(deps.Log), nil
	case AdapterMock:
		return NewMockAdapter(deps.Signer, deps.MockBaseURL, deps.Log), nil
	}
	return nil, fmt.Errorf("unknown healthcare finder adapter %q", typ)
}
