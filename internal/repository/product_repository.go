package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shop-api/internal/database"
	"shop-api/internal/domain"
)

// ProductRepository defines the interface for product data access.
// Absent rows are reported as nil results, never as errors.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	Search(ctx context.Context, term string) ([]*domain.Product, error)
	Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error)
	Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type productRepository struct {
	ex database.Executor
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(ex database.Executor) ProductRepository {
	return &productRepository{ex: ex}
}

const productColumns = `id, name, description, price, stock, category, image_url, created_at`

// Ties on created_at are broken by id so listings are deterministic
const newestFirst = ` ORDER BY created_at DESC, id DESC`

// productScanner accumulates rows into a slice
type productScanner struct {
	products []*domain.Product
}

func (s *productScanner) scan(row database.RowScanner) error {
	p, err := scanProduct(row)
	if err != nil {
		return err
	}
	s.products = append(s.products, p)
	return nil
}

func scanProduct(row database.RowScanner) (*domain.Product, error) {
	var (
		product                         domain.Product
		description, category, imageURL sql.NullString
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.Price,
		&product.Stock,
		&category,
		&imageURL,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Description = nullableString(description)
	product.Category = nullableString(category)
	product.ImageURL = nullableString(imageURL)

	return &product, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *productRepository) list(ctx context.Context, where string, args ...any) ([]*domain.Product, error) {
	s := &productScanner{products: []*domain.Product{}}
	err := r.ex.FetchMany(ctx, s.scan, `SELECT `+productColumns+` FROM products`+where+newestFirst, args...)
	if err != nil {
		return nil, err
	}
	return s.products, nil
}

// GetAll returns every product, newest first
func (r *productRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	products, err := r.list(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product *domain.Product
	found, err := r.ex.FetchOne(ctx, func(row database.RowScanner) error {
		p, err := scanProduct(row)
		product = p
		return err
	}, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	if !found {
		return nil, nil
	}
	return product, nil
}

// GetByCategory returns products whose category matches exactly
func (r *productRepository) GetByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	products, err := r.list(ctx, ` WHERE category = ?`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

// Search matches term case-insensitively as a substring of name or
// description. An empty term matches every product.
func (r *productRepository) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	pattern := "%" + strings.ToLower(term) + "%"

	products, err := r.list(ctx,
		` WHERE LOWER(name) LIKE LOWER(?) OR LOWER(COALESCE(description, '')) LIKE LOWER(?)`,
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// Create inserts a product and returns the stored row
func (r *productRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	res, err := r.ex.Execute(ctx, `
		INSERT INTO products (name, description, price, stock, category, image_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		fields.Name,
		fields.Description,
		fields.Price,
		fields.StockOrDefault(),
		fields.Category,
		fields.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return r.FindByID(ctx, res.ID)
}

// Update overwrites all six mutable fields. A nil result means no product
// has the given id.
func (r *productRepository) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	res, err := r.ex.Execute(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, stock = ?, category = ?, image_url = ?
		WHERE id = ?
	`,
		fields.Name,
		fields.Description,
		fields.Price,
		fields.StockOrDefault(),
		fields.Category,
		fields.ImageURL,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if res.RowsAffected == 0 {
		return nil, nil
	}

	return r.FindByID(ctx, id)
}

// Delete removes a product and reports whether anything was deleted
func (r *productRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.ex.Execute(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return res.RowsAffected > 0, nil
}

// DeleteAll empties the catalog
func (r *productRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.ex.Execute(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	return res.RowsAffected, nil
}
