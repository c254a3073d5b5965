package repository

import (
	"context"
	"testing"

	"shop-api/internal/database"
	"shop-api/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productFieldsGen() gopter.Gen {
	return gopter.CombineGens(
		gen.RegexMatch(`[A-Z][a-z]{2,15}( [A-Za-z]{2,10})?`),
		gen.PtrOf(gen.AlphaString()),
		gen.Float64Range(0, 10000),
		gen.PtrOf(gen.IntRange(0, 1000)),
		gen.PtrOf(gen.OneConstOf("Electronics", "Sports", "Books")),
		gen.PtrOf(gen.RegexMatch(`https://img\.example\.com/[a-z]{3,10}\.png`)),
	).Map(func(values []interface{}) domain.ProductFields {
		return domain.ProductFields{
			Name:        values[0].(string),
			Description: values[1].(*string),
			Price:       values[2].(float64),
			Stock:       values[3].(*int),
			Category:    values[4].(*string),
			ImageURL:    values[5].(*string),
		}
	})
}

func fieldsMatch(t *testing.T, fields domain.ProductFields, p *domain.Product) bool {
	if p.Name != fields.Name {
		t.Logf("FAIL: Name mismatch. Expected %s, got %s", fields.Name, p.Name)
		return false
	}
	if !equalStrPtr(p.Description, fields.Description) {
		t.Logf("FAIL: Description mismatch")
		return false
	}
	// Compare prices with small tolerance for floating point
	if p.Price < fields.Price-0.01 || p.Price > fields.Price+0.01 {
		t.Logf("FAIL: Price mismatch. Expected %f, got %f", fields.Price, p.Price)
		return false
	}
	if p.Stock != fields.StockOrDefault() {
		t.Logf("FAIL: Stock mismatch. Expected %d, got %d", fields.StockOrDefault(), p.Stock)
		return false
	}
	if !equalStrPtr(p.Category, fields.Category) {
		t.Logf("FAIL: Category mismatch")
		return false
	}
	if !equalStrPtr(p.ImageURL, fields.ImageURL) {
		t.Logf("FAIL: ImageURL mismatch")
		return false
	}
	return true
}

// Property: create followed by find returns the row create returned
func TestProperty_ProductCreationRoundTrips(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	properties := gopter.NewProperties(testParameters(50))

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(fields domain.ProductFields) bool {
			created, err := repo.Create(ctx, fields)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			if !fieldsMatch(t, fields, created) {
				return false
			}

			retrieved, err := repo.FindByID(ctx, created.ID)
			if err != nil || retrieved == nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.CreatedAt.IsZero() {
				t.Logf("FAIL: CreatedAt is zero")
				return false
			}

			return assert.ObjectsAreEqual(created, retrieved)
		},
		productFieldsGen(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: update replaces every mutable field, including clearing ones
// that were previously set
func TestProperty_ProductUpdatesAreReflected(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	properties := gopter.NewProperties(testParameters(50))

	properties.Property("updating a product and retrieving it shows the updated values", prop.ForAll(
		func(initial, updated domain.ProductFields) bool {
			created, err := repo.Create(ctx, initial)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			result, err := repo.Update(ctx, created.ID, updated)
			if err != nil || result == nil {
				t.Logf("FAIL: Failed to update product: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, created.ID)
			if err != nil || retrieved == nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			return fieldsMatch(t, updated, retrieved) && retrieved.ID == created.ID
		},
		productFieldsGen(),
		productFieldsGen(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: a second delete of the same id reports false, not an error
func TestProperty_ProductDeletionIsIdempotent(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	properties := gopter.NewProperties(testParameters(30))

	properties.Property("deleting a product makes it not retrievable", prop.ForAll(
		func(fields domain.ProductFields) bool {
			created, err := repo.Create(ctx, fields)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			deleted, err := repo.Delete(ctx, created.ID)
			if err != nil || !deleted {
				t.Logf("FAIL: First delete should report true: %v", err)
				return false
			}

			deleted, err = repo.Delete(ctx, created.ID)
			if err != nil || deleted {
				t.Logf("FAIL: Second delete should report false without error: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, created.ID)
			return err == nil && retrieved == nil
		},
		productFieldsGen(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: an empty search term lists the same products as GetAll
func TestProperty_EmptySearchMatchesGetAll(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	properties := gopter.NewProperties(testParameters(20))

	properties.Property("search(\"\") equals get_all()", prop.ForAll(
		func(batch []domain.ProductFields) bool {
			for _, fields := range batch {
				if _, err := repo.Create(ctx, fields); err != nil {
					t.Logf("FAIL: Failed to create product: %v", err)
					return false
				}
			}

			all, err := repo.GetAll(ctx)
			if err != nil {
				return false
			}
			searched, err := repo.Search(ctx, "")
			if err != nil {
				return false
			}

			return assert.ObjectsAreEqual(all, searched)
		},
		gen.SliceOfN(3, productFieldsGen()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_SearchIsCaseInsensitive(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.ProductFields{Name: "Wireless Mouse", Price: 29.99})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.ProductFields{
		Name:        "Pad",
		Description: strPtr("Fits any MOUSE"),
		Price:       5,
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.ProductFields{Name: "Keyboard", Price: 50})
	require.NoError(t, err)

	found, err := repo.Search(ctx, "mOuSe")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Pad", found[0].Name, "newest first")
	assert.Equal(t, "Wireless Mouse", found[1].Name)

	none, err := repo.Search(ctx, "toaster")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestProductRepository_SearchFoldsNonASCIICase(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.ProductFields{Name: "ÉCLAIR Deluxe", Price: 4.5})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.ProductFields{
		Name:        "Tart",
		Description: strPtr("Crème brûlée flavour"),
		Price:       3,
	})
	require.NoError(t, err)

	found, err := repo.Search(ctx, "éclair")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ÉCLAIR Deluxe", found[0].Name)

	found, err = repo.Search(ctx, "CRÈME BRÛLÉE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Tart", found[0].Name)
}

func TestProductRepository_EmptyCatalog(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	found, err := repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, found)

	p, err := repo.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductRepository_GetByCategoryIsExactMatch(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	for _, c := range []string{"Sports", "sports", "Sportswear"} {
		_, err := repo.Create(ctx, domain.ProductFields{Name: "Item " + c, Price: 1, Category: strPtr(c)})
		require.NoError(t, err)
	}

	products, err := repo.GetByCategory(ctx, "Sports")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Item Sports", products[0].Name)
}

func TestProductRepository_StockDefaultsToZero(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.ProductFields{Name: "Widget", Price: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, created.Stock)
	assert.Nil(t, created.Description)
	assert.Nil(t, created.Category)

	updated, err := repo.Update(ctx, created.ID, domain.ProductFields{Name: "Widget", Price: 3, Stock: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
}

func TestProductRepository_UpdateAbsentReturnsNil(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))

	p, err := repo.Update(context.Background(), 999, domain.ProductFields{Name: "Ghost", Price: 1})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductRepository_NegativePriceIsConstraintViolation(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))

	_, err := repo.Create(context.Background(), domain.ProductFields{Name: "Broken", Price: -1})
	require.Error(t, err)
	assert.ErrorIs(t, database.Classify(err), database.ErrConstraintViolation)
}

func TestProductRepository_DeleteAll(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, domain.ProductFields{Name: "Thing", Price: 1})
		require.NoError(t, err)
	}

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCategoryRepository_ListDistinctSorted(t *testing.T) {
	ex := setupTestDB(t)
	products := NewProductRepository(ex)
	categories := NewCategoryRepository(ex)
	ctx := context.Background()

	for _, c := range []*string{strPtr("Sports"), strPtr("Books"), strPtr("Sports"), nil, strPtr("")} {
		_, err := products.Create(ctx, domain.ProductFields{Name: "Item", Price: 1, Category: c})
		require.NoError(t, err)
	}

	list, err := categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Sports"}, list)
}
