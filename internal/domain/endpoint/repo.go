package endpoint

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to endpoints.
type Repository interface {
	Create(ctx context.Context, e *Endpoint) error
	// FindOneByURL returns (nil, nil) when no endpoint matches the exact
	// URL string.
	FindOneByURL(ctx context.Context, url string) (*Endpoint, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Endpoint, error)
	FindAll(ctx context.Context) ([]*Endpoint, error)
	// UpdateSignature overwrites the stored signature; nil clears it.
	UpdateSignature(ctx context.Context, id uuid.UUID, signature *string) error
}
