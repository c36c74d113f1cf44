package model

import "time"

// Company is the unit of isolation. A user may belong to several companies
// but every session is bound to exactly one.
type Company struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PrimaryEmail string    `json:"primary_email,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompanySummary is the compact shape embedded in auth responses.
type CompanySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c Company) Summary() CompanySummary {
	return CompanySummary{ID: c.ID, Name: c.Name}
}

// CompanyScoped is implemented by every resource owned by a company.
// Ownership checks go through the scope guard, never ad hoc.
type CompanyScoped interface {
	OwnerCompanyID() int64
}
