package service

import (
	"context"

	"cms-backend/internal/model"
)

// AnalyticsStore is the read surface the overview needs: aggregate counts
// over one company's inventory.
type AnalyticsStore interface {
	CountItems(ctx context.Context, companyID int64) (int64, error)
	CountItemsByCategory(ctx context.Context, companyID int64) (map[string]int64, error)
}

// AnalyticsService computes the company dashboard rollup. It reads only the
// caller's active company; memberships the session is not bound to stay
// invisible.
type AnalyticsService struct {
	store AnalyticsStore
	guard *CompanyScopeGuard
}

func NewAnalyticsService(store AnalyticsStore, guard *CompanyScopeGuard) *AnalyticsService {
	return &AnalyticsService{store: store, guard: guard}
}

func (s *AnalyticsService) Overview(ctx context.Context, p model.Principal) (model.AnalyticsOverview, error) {
	company, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.AnalyticsOverview{}, err
	}

	total, err := s.store.CountItems(ctx, company.ID)
	if err != nil {
		return model.AnalyticsOverview{}, err
	}
	byCategory, err := s.store.CountItemsByCategory(ctx, company.ID)
	if err != nil {
		return model.AnalyticsOverview{}, err
	}

	return model.AnalyticsOverview{
		CompanyID:           company.ID,
		TotalCompanies:      len(p.User.Companies),
		TotalInventoryItems: total,
		InventoryByCategory: byCategory,
	}, nil
}
