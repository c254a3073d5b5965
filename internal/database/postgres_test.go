package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupPostgres(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	ctx := context.Background()
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = dbContainer.Terminate(context.Background()) })

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	d, err := NewPostgres(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func TestPostgres_InitializeAndExecute(t *testing.T) {
	d := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, d.Initialize(ctx, zap.NewNop()))
	require.NoError(t, d.Initialize(ctx, zap.NewNop()))
	assert.EqualValues(t, BaselineCatalogSize, countProducts(t, d))

	res, err := d.Execute(ctx, `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		"carol", "c@x.com", "hash")
	require.NoError(t, err)
	assert.True(t, res.HasID)
	assert.Positive(t, res.ID)

	_, err = d.Execute(ctx, `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		"carol2", "c@x.com", "hash")
	require.Error(t, err)
	assert.ErrorIs(t, Classify(err), ErrUniqueViolation)

	res, err = d.Execute(ctx, `UPDATE products SET stock = ? WHERE category = ?`, 1, "Electronics")
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.RowsAffected)

	health := d.Health(ctx)
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, "postgres", health["backend"])
}

func TestPostgres_InsertWithoutSingleRowHasNoID(t *testing.T) {
	d := setupPostgres(t)
	ctx := context.Background()
	require.NoError(t, d.Initialize(ctx, zap.NewNop()))

	res, err := d.Execute(ctx, `-- two accounts
INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?), (?, ?, ?)`,
		"u1", "u1@x.com", "hash", "u2", "u2@x.com", "hash")
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.RowsAffected)
	assert.False(t, res.HasID)

	res, err = d.Execute(ctx, `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		"u1", "u1@x.com", "hash")
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.RowsAffected)
	assert.False(t, res.HasID)
}

func TestPostgres_WithTxRollsBack(t *testing.T) {
	d := setupPostgres(t)
	ctx := context.Background()
	require.NoError(t, d.Initialize(ctx, zap.NewNop()))

	err := d.WithTx(ctx, func(ctx context.Context, tx Executor) error {
		if _, err := tx.Execute(ctx, `DELETE FROM products`); err != nil {
			return err
		}
		_, err := tx.Execute(ctx, `INSERT INTO products (name, price) VALUES (?, ?)`, "Bad", -5)
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, Classify(err), ErrConstraintViolation)
	assert.EqualValues(t, BaselineCatalogSize, countProducts(t, d))
}
