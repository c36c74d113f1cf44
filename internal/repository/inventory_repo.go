package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cms-backend/internal/model"
)

// InventoryRepository persists items and categories. Lookups are by primary
// key only; company ownership is enforced above, in the scope guard.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) CreateCategory(ctx context.Context, c model.ItemCategory) (model.ItemCategory, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO item_categories (company_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id`,
		c.CompanyID, c.Name, c.Description, now).Scan(&c.ID)
	if err != nil {
		return model.ItemCategory{}, fmt.Errorf("create item category: %w", err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *InventoryRepository) FindCategory(ctx context.Context, id int64) (model.ItemCategory, error) {
	var c model.ItemCategory
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, description, created_at, updated_at
		 FROM item_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ItemCategory{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.ItemCategory{}, fmt.Errorf("find item category: %w", err)
	}
	return c, nil
}

func (r *InventoryRepository) ListCategories(ctx context.Context, companyID int64) ([]model.ItemCategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name, description, created_at, updated_at
		 FROM item_categories WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list item categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.ItemCategory, 0)
	for rows.Next() {
		var c model.ItemCategory
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *InventoryRepository) UpdateCategory(ctx context.Context, c model.ItemCategory) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE item_categories SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Name, c.Description, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update item category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *InventoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM item_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO inventory_items (company_id, category_id, name, quantity, price, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id`,
		item.CompanyID, item.CategoryID, item.Name, item.Quantity, item.Price, item.Description, now).Scan(&item.ID)
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("create inventory item: %w", err)
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (r *InventoryRepository) FindItem(ctx context.Context, id int64) (model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, category_id, name, quantity, price, description, created_at, updated_at
		 FROM inventory_items WHERE id = $1`, id).
		Scan(&item.ID, &item.CompanyID, &item.CategoryID, &item.Name, &item.Quantity,
			&item.Price, &item.Description, &item.CreatedAt, &item.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.InventoryItem{}, model.ErrItemNotFound
	}
	if err != nil {
		return model.InventoryItem{}, fmt.Errorf("find inventory item: %w", err)
	}
	return item, nil
}

func (r *InventoryRepository) ListItems(ctx context.Context, companyID int64, limit int, offset int) ([]model.InventoryItem, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory items: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, category_id, name, quantity, price, description, created_at, updated_at
		 FROM inventory_items WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	items := make([]model.InventoryItem, 0, limit)
	for rows.Next() {
		var item model.InventoryItem
		if err := rows.Scan(&item.ID, &item.CompanyID, &item.CategoryID, &item.Name, &item.Quantity,
			&item.Price, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *InventoryRepository) CountItems(ctx context.Context, companyID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE company_id = $1`, companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count inventory items: %w", err)
	}
	return count, nil
}

func (r *InventoryRepository) CountItemsByCategory(ctx context.Context, companyID int64) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cat.name, COUNT(i.id)
		 FROM inventory_items i
		 JOIN item_categories cat ON cat.id = i.category_id
		 WHERE i.company_id = $1
		 GROUP BY cat.name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("count items by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

func (r *InventoryRepository) UpdateItem(ctx context.Context, item model.InventoryItem) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inventory_items
		 SET category_id = $2, name = $3, quantity = $4, price = $5, description = $6, updated_at = $7
		 WHERE id = $1`,
		item.ID, item.CategoryID, item.Name, item.Quantity, item.Price, item.Description, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

func (r *InventoryRepository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}
