package addressing

import "context"

// Adapter resolves a single identifier to an organisation's search entry.
// Implementations return (nil, nil) when no organisation matches.
type Adapter interface {
	SearchByMedmijName(ctx context.Context, name string) (*SearchEntry, error)
	SearchByURA(ctx context.Context, ura string) (*SearchEntry, error)
	SearchByAGB(ctx context.Context, agb string) (*SearchEntry, error)
	SearchByHRN(ctx context.Context, hrn string) (*SearchEntry, error)
	SearchByKVK(ctx context.Context, kvk string) (*SearchEntry, error)
}
