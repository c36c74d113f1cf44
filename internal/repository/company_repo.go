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

type CompanyRepository struct {
	pool *pgxpool.Pool
}

func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func (r *CompanyRepository) Create(ctx context.Context, c model.Company) (model.Company, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO companies (name, primary_email, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id`,
		c.Name, c.PrimaryEmail, c.Enabled, now).Scan(&c.ID)
	if err != nil {
		return model.Company{}, fmt.Errorf("create company: %w", err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *CompanyRepository) FindByID(ctx context.Context, id int64) (model.Company, error) {
	var c model.Company
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, primary_email, enabled, created_at, updated_at
		 FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.PrimaryEmail, &c.Enabled, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Company{}, model.ErrCompanyNotFound
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("find company by id: %w", err)
	}
	return c, nil
}

func (r *CompanyRepository) Update(ctx context.Context, c model.Company) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET name = $2, primary_email = $3, enabled = $4, updated_at = $5 WHERE id = $1`,
		c.ID, c.Name, c.PrimaryEmail, c.Enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, primary_email, enabled, created_at, updated_at
		 FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.PrimaryEmail, &c.Enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
