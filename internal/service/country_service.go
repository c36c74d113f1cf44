package service

import (
	"context"
	"fmt"
	"strings"

	"cms-backend/internal/model"
)

// CountryStore persists the shared country reference table.
type CountryStore interface {
	Create(ctx context.Context, c model.Country) (model.Country, error)
	FindByID(ctx context.Context, id int64) (model.Country, error)
	List(ctx context.Context) ([]model.Country, error)
	Update(ctx context.Context, c model.Country) error
	Delete(ctx context.Context, id int64) error
}

// CountryService manages global reference data. Reads are open to any
// authenticated user; writes are admin only, enforced at the router.
type CountryService struct {
	store CountryStore
}

func NewCountryService(store CountryStore) *CountryService {
	return &CountryService{store: store}
}

func (s *CountryService) Create(ctx context.Context, req model.CountryRequest) (model.Country, error) {
	country, err := normalizeCountry(req)
	if err != nil {
		return model.Country{}, err
	}
	return s.store.Create(ctx, country)
}

func (s *CountryService) Get(ctx context.Context, id int64) (model.Country, error) {
	return s.store.FindByID(ctx, id)
}

func (s *CountryService) List(ctx context.Context) ([]model.Country, error) {
	return s.store.List(ctx)
}

func (s *CountryService) Update(ctx context.Context, id int64, req model.CountryRequest) (model.Country, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Country{}, err
	}

	country, err := normalizeCountry(req)
	if err != nil {
		return model.Country{}, err
	}
	country.ID = existing.ID
	country.CreatedAt = existing.CreatedAt
	if err := s.store.Update(ctx, country); err != nil {
		return model.Country{}, err
	}
	return country, nil
}

func (s *CountryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func normalizeCountry(req model.CountryRequest) (model.Country, error) {
	name := strings.TrimSpace(req.Name)
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if name == "" {
		return model.Country{}, fmt.Errorf("%w: country name is required", model.ErrInvalidInput)
	}
	if len(code) < 2 || len(code) > 3 {
		return model.Country{}, fmt.Errorf("%w: country code must be 2 or 3 letters", model.ErrInvalidInput)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return model.Country{}, fmt.Errorf("%w: country code must be letters only", model.ErrInvalidInput)
		}
	}
	return model.Country{Name: name, Code: code}, nil
}
