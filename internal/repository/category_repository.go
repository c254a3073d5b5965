package repository

import (
	"context"
	"fmt"

	"shop-api/internal/database"
)

// CategoryRepository exposes the category labels in use. Categories are
// free-text product attributes, not rows of their own.
type CategoryRepository interface {
	List(ctx context.Context) ([]string, error)
}

type categoryRepository struct {
	ex database.Executor
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(ex database.Executor) CategoryRepository {
	return &categoryRepository{ex: ex}
}

// List returns the distinct non-empty category labels in alphabetical order
func (r *categoryRepository) List(ctx context.Context) ([]string, error) {
	categories := []string{}

	err := r.ex.FetchMany(ctx, func(row database.RowScanner) error {
		var name string
		if err := row.Scan(&name); err != nil {
			return err
		}
		categories = append(categories, name)
		return nil
	}, `
		SELECT DISTINCT category
		FROM products
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}
