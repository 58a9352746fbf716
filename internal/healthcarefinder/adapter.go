package healthcarefinder

import (
	"context"
	"errors"
)

var (
	// ErrBadSearchParams signals that the request cannot be turned into a
	// remote registry query.
	ErrBadSearchParams = errors.New("no usable search parameters")

	// ErrUpstream signals a failure talking to the remote registry.
	ErrUpstream = errors.New("remote registry failure")

	// ErrHydration signals a failure enriching a registry result with
	// local addressing data.
	ErrHydration = errors.New("hydration failure")
)

// Adapter searches a directory of healthcare organisations by name and city.
// Implementations return (nil, nil) when the directory yields nothing at all.
type Adapter interface {
	SearchOrganizations(ctx context.Context, search SearchRequest) (*SearchResponse, error)
}

// ConnectionVerifier is implemented by adapters that can probe their remote
// registry; local adapters have nothing to probe and omit it.
type ConnectionVerifier interface {
	VerifyConnection(ctx context.Context) bool
}
