package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cms-backend/internal/model"
)

type fakeAnalyticsStore struct {
	countsByCompany map[int64]int64
	rollupByCompany map[int64]map[string]int64
	queriedCompany  int64
}

func (s *fakeAnalyticsStore) CountItems(_ context.Context, companyID int64) (int64, error) {
	s.queriedCompany = companyID
	return s.countsByCompany[companyID], nil
}

func (s *fakeAnalyticsStore) CountItemsByCategory(_ context.Context, companyID int64) (map[string]int64, error) {
	return s.rollupByCompany[companyID], nil
}

func TestAnalyticsOverview(t *testing.T) {
	t.Parallel()

	newFixture := func() (*AnalyticsService, *fakeAnalyticsStore) {
		store := &fakeAnalyticsStore{
			countsByCompany: map[int64]int64{1: 7, 2: 99},
			rollupByCompany: map[int64]map[string]int64{
				1: {"Tools": 4, "Paint": 3},
				2: {"Other": 99},
			},
		}
		return NewAnalyticsService(store, NewCompanyScopeGuard()), store
	}

	t.Run("rolls up only the active company", func(t *testing.T) {
		svc, store := newFixture()

		overview, err := svc.Overview(context.Background(), principalFor(1))
		require.NoError(t, err)
		require.Equal(t, int64(1), overview.CompanyID)
		require.Equal(t, int64(7), overview.TotalInventoryItems)
		require.Equal(t, map[string]int64{"Tools": 4, "Paint": 3}, overview.InventoryByCategory)
		require.Equal(t, 2, overview.TotalCompanies)
		require.Equal(t, int64(1), store.queriedCompany)
	})

	t.Run("session bound to a non-membership is rejected", func(t *testing.T) {
		svc, _ := newFixture()

		_, err := svc.Overview(context.Background(), principalFor(99))
		require.ErrorIs(t, err, model.ErrCompanyMismatch)
	})

	t.Run("missing company binding is rejected", func(t *testing.T) {
		svc, _ := newFixture()
		p := principalFor(1)
		p.Claims = nil

		_, err := svc.Overview(context.Background(), p)
		require.ErrorIs(t, err, model.ErrNoCompanyBinding)
	})
}
