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

type EmailConfigRepository struct {
	pool *pgxpool.Pool
}

func NewEmailConfigRepository(pool *pgxpool.Pool) *EmailConfigRepository {
	return &EmailConfigRepository{pool: pool}
}

func (r *EmailConfigRepository) Upsert(ctx context.Context, c model.EmailConfig) (model.EmailConfig, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO email_settings (company_id, smtp_host, smtp_port, username, password, from_address, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 ON CONFLICT (company_id) DO UPDATE SET
		   smtp_host = EXCLUDED.smtp_host,
		   smtp_port = EXCLUDED.smtp_port,
		   username = EXCLUDED.username,
		   password = EXCLUDED.password,
		   from_address = EXCLUDED.from_address,
		   enabled = EXCLUDED.enabled,
		   updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		c.CompanyID, c.SMTPHost, c.SMTPPort, c.Username, c.Password, c.FromAddress, c.Enabled, now).Scan(&c.ID)
	if err != nil {
		return model.EmailConfig{}, fmt.Errorf("upsert email settings: %w", err)
	}
	c.UpdatedAt = now
	return c, nil
}

func (r *EmailConfigRepository) FindByCompany(ctx context.Context, companyID int64) (model.EmailConfig, error) {
	var c model.EmailConfig
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, smtp_host, smtp_port, username, password, from_address, enabled, created_at, updated_at
		 FROM email_settings WHERE company_id = $1`, companyID).
		Scan(&c.ID, &c.CompanyID, &c.SMTPHost, &c.SMTPPort, &c.Username, &c.Password,
			&c.FromAddress, &c.Enabled, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.EmailConfig{}, model.ErrEmailConfigNotFound
	}
	if err != nil {
		return model.EmailConfig{}, fmt.Errorf("find email settings: %w", err)
	}
	return c, nil
}

func (r *EmailConfigRepository) Delete(ctx context.Context, companyID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_settings WHERE company_id = $1`, companyID)
	if err != nil {
		return fmt.Errorf("delete email settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEmailConfigNotFound
	}
	return nil
}
