package repository

import (
	"context"
	"path/filepath"
	"testing"

	"shop-api/internal/database"

	"github.com/leanovate/gopter"
	"go.uber.org/zap"
)

// setupTestDB opens a fresh SQLite store with the schema applied and the
// baseline catalog removed.
func setupTestDB(t *testing.T) database.Executor {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Initialize(ctx, zap.NewNop()); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	if _, err := db.Execute(ctx, `DELETE FROM products`); err != nil {
		t.Fatalf("Failed to clear baseline catalog: %v", err)
	}

	return db
}

func testParameters(minSuccessful int) *gopter.TestParameters {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = minSuccessful
	return params
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
