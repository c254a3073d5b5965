package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// SchemaError reports a failure to create the schema. It is fatal to startup.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema initialization failed: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func newProvider(db *sql.DB, backend Backend) (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		dir     string
	)

	switch backend {
	case BackendPostgres:
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	case BackendSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	default:
		return nil, fmt.Errorf("no migrations for backend %q", backend)
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations dir: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}

	return provider, nil
}

// RunMigrations executes all pending migrations for the given backend
func RunMigrations(ctx context.Context, db *sql.DB, backend Backend, logger *zap.Logger) error {
	provider, err := newProvider(db, backend)
	if err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("backend", string(backend)))

	results, err := provider.Up(ctx)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("Applied migration",
			zap.Int64("version", r.Source.Version),
			zap.String("file", r.Source.Path),
			zap.Duration("duration", r.Duration),
		)
	}

	logger.Info("Migrations completed successfully", zap.Int("applied", len(results)))
	return nil
}

// SchemaVersion returns the highest applied migration version
func SchemaVersion(ctx context.Context, db *sql.DB, backend Backend) (int64, error) {
	provider, err := newProvider(db, backend)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// Initialize creates the schema and seeds the baseline catalog. It is safe
// to call on every start: tables are created only if absent and the catalog
// is seeded only while the products table is empty. Seeding errors are
// logged and swallowed since an empty catalog is a valid state.
func (d *Database) Initialize(ctx context.Context, logger *zap.Logger) error {
	if err := RunMigrations(ctx, d.db, d.Backend(), logger); err != nil {
		return &SchemaError{Err: err}
	}

	if err := SeedCatalog(ctx, d, logger); err != nil {
		logger.Warn("Failed to seed baseline catalog", zap.Error(err))
	}

	return nil
}
