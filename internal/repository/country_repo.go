package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cms-backend/internal/model"
)

type CountryRepository struct {
	pool *pgxpool.Pool
}

func NewCountryRepository(pool *pgxpool.Pool) *CountryRepository {
	return &CountryRepository{pool: pool}
}

func (r *CountryRepository) Create(ctx context.Context, c model.Country) (model.Country, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO countries (name, code, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 RETURNING id`,
		c.Name, strings.ToUpper(c.Code), now).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Country{}, fmt.Errorf("%w: code %s", model.ErrInvalidInput, c.Code)
		}
		return model.Country{}, fmt.Errorf("create country: %w", err)
	}
	c.Code = strings.ToUpper(c.Code)
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *CountryRepository) FindByID(ctx context.Context, id int64) (model.Country, error) {
	var c model.Country
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, created_at, updated_at FROM countries WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Country{}, model.ErrCountryNotFound
	}
	if err != nil {
		return model.Country{}, fmt.Errorf("find country: %w", err)
	}
	return c, nil
}

func (r *CountryRepository) List(ctx context.Context) ([]model.Country, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, created_at, updated_at FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	countries := make([]model.Country, 0)
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *CountryRepository) Update(ctx context.Context, c model.Country) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE countries SET name = $2, code = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Name, strings.ToUpper(c.Code), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update country: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCountryNotFound
	}
	return nil
}

func (r *CountryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM countries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete country: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCountryNotFound
	}
	return nil
}
