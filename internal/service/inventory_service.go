package service

import (
	"context"
	"fmt"
	"strings"

	"cms-backend/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// InventoryStore is the persistence surface for items and categories.
type InventoryStore interface {
	CreateCategory(ctx context.Context, c model.ItemCategory) (model.ItemCategory, error)
	FindCategory(ctx context.Context, id int64) (model.ItemCategory, error)
	ListCategories(ctx context.Context, companyID int64) ([]model.ItemCategory, error)
	UpdateCategory(ctx context.Context, c model.ItemCategory) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error)
	FindItem(ctx context.Context, id int64) (model.InventoryItem, error)
	ListItems(ctx context.Context, companyID int64, limit int, offset int) ([]model.InventoryItem, int, error)
	UpdateItem(ctx context.Context, item model.InventoryItem) error
	DeleteItem(ctx context.Context, id int64) error
}

// InventoryService manages items and their categories. Every operation runs
// inside the caller's active company; cross-company access fails for every
// role, administrators included.
type InventoryService struct {
	store InventoryStore
	guard *CompanyScopeGuard
}

func NewInventoryService(store InventoryStore, guard *CompanyScopeGuard) *InventoryService {
	return &InventoryService{store: store, guard: guard}
}

func (s *InventoryService) CreateCategory(ctx context.Context, p model.Principal, req model.ItemCategoryRequest) (model.ItemCategory, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.ItemCategory{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return model.ItemCategory{}, fmt.Errorf("%w: category name is required", model.ErrInvalidInput)
	}

	return s.store.CreateCategory(ctx, model.ItemCategory{
		CompanyID:   active.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
}

func (s *InventoryService) GetCategory(ctx context.Context, p model.Principal, id int64) (model.ItemCategory, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.ItemCategory{}, err
	}
	category, err := s.store.FindCategory(ctx, id)
	if err != nil {
		return model.ItemCategory{}, err
	}
	if err := s.guard.AssertOwnedBy(category, active); err != nil {
		return model.ItemCategory{}, err
	}
	return category, nil
}

func (s *InventoryService) ListCategories(ctx context.Context, p model.Principal) ([]model.ItemCategory, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, active.ID)
}

func (s *InventoryService) UpdateCategory(ctx context.Context, p model.Principal, id int64, req model.ItemCategoryRequest) (model.ItemCategory, error) {
	category, err := s.GetCategory(ctx, p, id)
	if err != nil {
		return model.ItemCategory{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return model.ItemCategory{}, fmt.Errorf("%w: category name is required", model.ErrInvalidInput)
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return model.ItemCategory{}, err
	}
	return category, nil
}

func (s *InventoryService) DeleteCategory(ctx context.Context, p model.Principal, id int64) error {
	if _, err := s.GetCategory(ctx, p, id); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, id)
}

func (s *InventoryService) CreateItem(ctx context.Context, p model.Principal, req model.InventoryItemRequest) (model.InventoryItem, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.InventoryItem{}, err
	}
	if err := validateItemRequest(req); err != nil {
		return model.InventoryItem{}, err
	}

	// The category must live in the same company as the item.
	category, err := s.store.FindCategory(ctx, req.CategoryID)
	if err != nil {
		return model.InventoryItem{}, err
	}
	if err := s.guard.AssertOwnedBy(category, active); err != nil {
		return model.InventoryItem{}, err
	}

	return s.store.CreateItem(ctx, model.InventoryItem{
		CompanyID:   active.ID,
		CategoryID:  category.ID,
		Name:        strings.TrimSpace(req.Name),
		Quantity:    req.Quantity,
		Price:       req.Price,
		Description: req.Description,
	})
}

func (s *InventoryService) GetItem(ctx context.Context, p model.Principal, id int64) (model.InventoryItem, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.InventoryItem{}, err
	}
	item, err := s.store.FindItem(ctx, id)
	if err != nil {
		return model.InventoryItem{}, err
	}
	if err := s.guard.AssertOwnedBy(item, active); err != nil {
		return model.InventoryItem{}, err
	}
	return item, nil
}

func (s *InventoryService) ListItems(ctx context.Context, p model.Principal, page int, size int) ([]model.InventoryItem, int, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return s.store.ListItems(ctx, active.ID, size, (page-1)*size)
}

func (s *InventoryService) UpdateItem(ctx context.Context, p model.Principal, id int64, req model.InventoryItemRequest) (model.InventoryItem, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.InventoryItem{}, err
	}
	item, err := s.store.FindItem(ctx, id)
	if err != nil {
		return model.InventoryItem{}, err
	}
	if err := s.guard.AssertOwnedBy(item, active); err != nil {
		return model.InventoryItem{}, err
	}
	if err := validateItemRequest(req); err != nil {
		return model.InventoryItem{}, err
	}

	category, err := s.store.FindCategory(ctx, req.CategoryID)
	if err != nil {
		return model.InventoryItem{}, err
	}
	if err := s.guard.AssertOwnedBy(category, active); err != nil {
		return model.InventoryItem{}, err
	}

	item.CategoryID = category.ID
	item.Name = strings.TrimSpace(req.Name)
	item.Quantity = req.Quantity
	item.Price = req.Price
	item.Description = req.Description
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return model.InventoryItem{}, err
	}
	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, p model.Principal, id int64) error {
	if _, err := s.GetItem(ctx, p, id); err != nil {
		return err
	}
	return s.store.DeleteItem(ctx, id)
}

func validateItemRequest(req model.InventoryItemRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("%w: item name is required", model.ErrInvalidInput)
	case req.Quantity < 0:
		return fmt.Errorf("%w: quantity cannot be negative", model.ErrInvalidInput)
	case req.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", model.ErrInvalidInput)
	case req.CategoryID == 0:
		return fmt.Errorf("%w: category_id is required", model.ErrInvalidInput)
	}
	return nil
}
