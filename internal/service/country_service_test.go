package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cms-backend/internal/model"
)

type fakeCountryStore struct {
	mu        sync.Mutex
	nextID    int64
	countries map[int64]model.Country
}

func newFakeCountryStore() *fakeCountryStore {
	return &fakeCountryStore{countries: map[int64]model.Country{}}
}

func (s *fakeCountryStore) Create(_ context.Context, c model.Country) (model.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.countries[c.ID] = c
	return c, nil
}

func (s *fakeCountryStore) FindByID(_ context.Context, id int64) (model.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.countries[id]
	if !ok {
		return model.Country{}, model.ErrCountryNotFound
	}
	return c, nil
}

func (s *fakeCountryStore) List(_ context.Context) ([]model.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Country, 0, len(s.countries))
	for _, c := range s.countries {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeCountryStore) Update(_ context.Context, c model.Country) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.countries[c.ID]; !ok {
		return model.ErrCountryNotFound
	}
	s.countries[c.ID] = c
	return nil
}

func (s *fakeCountryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.countries[id]; !ok {
		return model.ErrCountryNotFound
	}
	delete(s.countries, id)
	return nil
}

func TestCountryService(t *testing.T) {
	t.Parallel()

	t.Run("normalizes the code to upper case", func(t *testing.T) {
		svc := NewCountryService(newFakeCountryStore())

		country, err := svc.Create(context.Background(), model.CountryRequest{Name: "Germany", Code: "de"})
		require.NoError(t, err)
		require.Equal(t, "DE", country.Code)
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		svc := NewCountryService(newFakeCountryStore())

		for _, code := range []string{"", "D", "DEUT", "D1"} {
			_, err := svc.Create(context.Background(), model.CountryRequest{Name: "Germany", Code: code})
			require.ErrorIs(t, err, model.ErrInvalidInput, "code %q", code)
		}
	})

	t.Run("update keeps identity and creation time", func(t *testing.T) {
		svc := NewCountryService(newFakeCountryStore())

		created, err := svc.Create(context.Background(), model.CountryRequest{Name: "Germany", Code: "DE"})
		require.NoError(t, err)

		updated, err := svc.Update(context.Background(), created.ID, model.CountryRequest{Name: "Deutschland", Code: "deu"})
		require.NoError(t, err)
		require.Equal(t, created.ID, updated.ID)
		require.Equal(t, "DEU", updated.Code)
		require.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewCountryService(newFakeCountryStore())

		_, err := svc.Get(context.Background(), 404)
		require.ErrorIs(t, err, model.ErrCountryNotFound)
		require.ErrorIs(t, svc.Delete(context.Background(), 404), model.ErrCountryNotFound)
	})
}
