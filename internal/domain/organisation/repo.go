package organisation

import "context"

// Repository provides access to organisations. Lookups by name or
// identifying feature are implicitly scoped to the latest import
// generation; older generations stay queryable only for audit and cleanup.
type Repository interface {
	Create(ctx context.Context, o *Organisation) error
	// FindOneByName returns (nil, nil) when no organisation with that name
	// exists in the latest import generation.
	FindOneByName(ctx context.Context, name string) (*Organisation, error)
	// FindOneByFeature returns the organisation in the latest generation
	// carrying the given identifying feature, or (nil, nil).
	FindOneByFeature(ctx context.Context, typ FeatureType, value string) (*Organisation, error)
	HasImportRef(ctx context.Context, importRef string) (bool, error)
	// ImportRefs returns every distinct import reference, newest first.
	ImportRefs(ctx context.Context) ([]string, error)
	CountByImportRef(ctx context.Context, importRef string) (int, error)
	// DeleteByImportRefs removes all organisations for the given references;
	// features, data services and system roles cascade.
	DeleteByImportRefs(ctx context.Context, importRefs []string) error
}

// FeatureRepository provides access to identifying features.
type FeatureRepository interface {
	Create(ctx context.Context, f *IdentifyingFeature) error
	HasImportRef(ctx context.Context, importRef string) (bool, error)
}
