package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
}

func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{Name: p.Name, ImageURL: p.ImageURL}
}

type ProductQuery struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

type ProductPage struct {
	Items []Product
	Total int
	Page  int
}

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	ImageURL    *string
	Stock       *int
}
