package model

import "time"

// EmailConfig holds per-company outbound mail settings.
type EmailConfig struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	SMTPHost    string    `json:"smtp_host"`
	SMTPPort    int       `json:"smtp_port"`
	Username    string    `json:"username"`
	Password    string    `json:"-"`
	FromAddress string    `json:"from_address"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c EmailConfig) OwnerCompanyID() int64 { return c.CompanyID }
