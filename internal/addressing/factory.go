package addressing

import "fmt"

// AdapterType selects the directory backing the addressing service.
type AdapterType string

const (
	AdapterZal  AdapterType = "zal"
	AdapterMock AdapterType = "mock"
)

// AdapterDeps carries everything any adapter implementation may need; the
// factory picks what applies.
type AdapterDeps struct {
	Zal    *ZalAdapter
	Signer EndpointSigner
}

// NewAdapter selects the adapter implementation once at startup.
func NewAdapter(typ AdapterType, deps AdapterDeps) (Adapter, error) {
	switch typ {
	case AdapterZal:
		if deps.Zal == nil {
			return nil, fmt.Errorf("zal adapter not configured")
		}
		return deps.Zal, nil
	case AdapterMock:
		return NewMockAdapter(deps.Signer), nil
	}
	return nil, fmt.Errorf("unknown addressing adapter %q", typ)
}
