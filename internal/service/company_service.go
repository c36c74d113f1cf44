package service

import (
	"context"
	"fmt"
	"strings"

	"cms-backend/internal/model"
)

// CompanyAdminStore is the full company persistence surface, used by the
// administrative CRUD operations.
type CompanyAdminStore interface {
	CompanyStore
	Create(ctx context.Context, c model.Company) (model.Company, error)
	Update(ctx context.Context, c model.Company) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Company, error)
}

// CompanyService covers company administration. Companies sit above the
// per-company scope, so these operations are restricted by role instead.
type CompanyService struct {
	store CompanyAdminStore
}

func NewCompanyService(store CompanyAdminStore) *CompanyService {
	return &CompanyService{store: store}
}

func (s *CompanyService) Create(ctx context.Context, req model.CompanyRequest) (model.Company, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.Company{}, fmt.Errorf("%w: company name is required", model.ErrInvalidInput)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	return s.store.Create(ctx, model.Company{
		Name:         strings.TrimSpace(req.Name),
		PrimaryEmail: strings.TrimSpace(req.PrimaryEmail),
		Enabled:      enabled,
	})
}

func (s *CompanyService) Get(ctx context.Context, id int64) (model.Company, error) {
	return s.store.FindByID(ctx, id)
}

func (s *CompanyService) List(ctx context.Context) ([]model.Company, error) {
	return s.store.List(ctx)
}

func (s *CompanyService) Update(ctx context.Context, id int64, req model.CompanyRequest) (model.Company, error) {
	company, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Company{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return model.Company{}, fmt.Errorf("%w: company name is required", model.ErrInvalidInput)
	}

	company.Name = strings.TrimSpace(req.Name)
	company.PrimaryEmail = strings.TrimSpace(req.PrimaryEmail)
	if req.Enabled != nil {
		company.Enabled = *req.Enabled
	}
	if err := s.store.Update(ctx, company); err != nil {
		return model.Company{}, err
	}
	return company, nil
}

// Delete removes the company. Memberships, resources and settings go with it
// through the schema's cascades; sessions bound to it die at refresh time.
func (s *CompanyService) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
