package domain

import "time"

// Product represents a product in the catalog.
// Optional text fields are nil when the column is NULL.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Stock       int       `json:"stock" db:"stock"`
	Category    *string   `json:"category" db:"category"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductFields holds the six mutable product attributes. It is used for
// both create and full-replace update; a nil Stock is stored as 0.
type ProductFields struct {
	Name        string
	Description *string
	Price       float64
	Stock       *int
	Category    *string
	ImageURL    *string
}

// StockOrDefault returns the stock to persist
func (f ProductFields) StockOrDefault() int {
	if f.Stock == nil {
		return 0
	}
	return *f.Stock
}
