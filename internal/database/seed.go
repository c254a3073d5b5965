package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type seedProduct struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	ImageURL    string
}

var baselineCatalog = []seedProduct{
	{
		Name:        "Laptop",
		Description: "High-performance laptop for work and gaming",
		Price:       999.99,
		Stock:       15,
		Category:    "Electronics",
		ImageURL:    "https://via.placeholder.com/300x200?text=Laptop",
	},
	{
		Name:        "Wireless Mouse",
		Description: "Ergonomic wireless mouse with precision tracking",
		Price:       29.99,
		Stock:       50,
		Category:    "Electronics",
		ImageURL:    "https://via.placeholder.com/300x200?text=Mouse",
	},
	{
		Name:        "Coffee Maker",
		Description: "Automatic coffee maker with timer",
		Price:       79.99,
		Stock:       20,
		Category:    "Home Appliances",
		ImageURL:    "https://via.placeholder.com/300x200?text=Coffee+Maker",
	},
	{
		Name:        "Running Shoes",
		Description: "Comfortable running shoes for all terrains",
		Price:       89.99,
		Stock:       30,
		Category:    "Sports",
		ImageURL:    "https://via.placeholder.com/300x200?text=Shoes",
	},
	{
		Name:        "Backpack",
		Description: "Durable backpack with multiple compartments",
		Price:       49.99,
		Stock:       25,
		Category:    "Accessories",
		ImageURL:    "https://via.placeholder.com/300x200?text=Backpack",
	},
}

// BaselineCatalogSize is the number of products SeedCatalog inserts
var BaselineCatalogSize = len(baselineCatalog)

// SeedCatalog inserts the baseline catalog when the products table is empty.
// All rows go in one transaction so a failure leaves the table empty.
func SeedCatalog(ctx context.Context, ex Executor, logger *zap.Logger) error {
	// COUNT(*) is read into int64 on both backends
	var count int64
	_, err := ex.FetchOne(ctx, func(row RowScanner) error {
		return row.Scan(&count)
	}, `SELECT COUNT(*) FROM products`)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	if count != 0 {
		logger.Debug("Catalog already populated, skipping seed", zap.Int64("count", count))
		return nil
	}

	err = ex.WithTx(ctx, func(ctx context.Context, tx Executor) error {
		for _, p := range baselineCatalog {
			_, err := tx.Execute(ctx, `
				INSERT INTO products (name, description, price, stock, category, image_url)
				VALUES (?, ?, ?, ?, ?, ?)
			`, p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL)
			if err != nil {
				return fmt.Errorf("failed to insert %q: %w", p.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Sample products inserted", zap.Int("count", len(baselineCatalog)))
	return nil
}
