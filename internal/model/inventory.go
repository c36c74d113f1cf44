package model

import "time"

type ItemCategory struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c ItemCategory) OwnerCompanyID() int64 { return c.CompanyID }

type InventoryItem struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i InventoryItem) OwnerCompanyID() int64 { return i.CompanyID }
