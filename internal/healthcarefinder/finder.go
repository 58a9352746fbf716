package healthcarefinder

import "context"

// bypassKeyword routes a search to the mock adapter when both fields match
// and the bypass is enabled, so acceptance environments can exercise the
// full flow without the live registry.
const bypassKeyword = "test"

// Finder fronts the configured directory adapter.
type Finder struct {
	adapter     Adapter
	mock        Adapter
	allowBypass bool
}

func NewFinder(adapter, mock Adapter, allowBypass bool) *Finder {
	return &Finder{adapter: adapter, mock: mock, allowBypass: allowBypass}
}

func (f *Finder) SearchOrganizations(ctx context.Context, search SearchRequest) (*SearchResponse, error) {
	if f.allowBypass && isBypassRequested(search) {
		return f.mock.SearchOrganizations(ctx, search)
	}
	return f.adapter.SearchOrganizations(ctx, search)
}

func isBypassRequested(search SearchRequest) bool {
	return search.Name == bypassKeyword && search.City == bypassKeyword
}
