package addressing

import (
	"context"
	"fmt"
)

// Service fronts the configured directory adapter and dispatches a search
// request to the lookup matching its identification type.
type Service struct {
	adapter Adapter
}

func NewService(adapter Adapter) *Service {
	return &Service{adapter: adapter}
}

func (s *Service) SearchByMedmijName(ctx context.Context, name string) (*SearchEntry, error) {
	return s.adapter.SearchByMedmijName(ctx, name)
}

func (s *Service) SearchByURA(ctx context.Context, ura string) (*SearchEntry, error) {
	return s.adapter.SearchByURA(ctx, ura)
}

func (s *Service) SearchByAGB(ctx context.Context, agb string) (*SearchEntry, error) {
	return s.adapter.SearchByAGB(ctx, agb)
}

func (s *Service) SearchByHRN(ctx context.Context, hrn string) (*SearchEntry, error) {
	return s.adapter.SearchByHRN(ctx, hrn)
}

func (s *Service) SearchByKVK(ctx context.Context, kvk string) (*SearchEntry, error) {
	return s.adapter.SearchByKVK(ctx, kvk)
}

// Search dispatches on the request's identification type.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchEntry, error) {
	switch req.IDType {
	case IdentificationMedmij:
		return s.SearchByMedmijName(ctx, req.IDValue)
	case IdentificationURA:
		return s.SearchByURA(ctx, req.IDValue)
	case IdentificationAGB:
		return s.SearchByAGB(ctx, req.IDValue)
	case IdentificationHRN:
		return s.SearchByHRN(ctx, req.IDValue)
	case IdentificationKVK:
		return s.SearchByKVK(ctx, req.IDValue)
	}
	return nil, fmt.Errorf("unknown identification type %q", req.IDType)
}
