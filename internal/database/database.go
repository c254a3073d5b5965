package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"shop-api/internal/config"

	"go.uber.org/zap"
)

// Database owns the process-wide connection pool and the Executor bound to it
type Database struct {
	Executor
	db *sql.DB
}

// Open connects to the backend named by cfg.Backend. It is called once at
// startup; the rest of the service only sees the Executor.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	var (
		d   *Database
		err error
	)

	switch Backend(cfg.Backend) {
	case BackendPostgres:
		d, err = NewPostgres(ctx, cfg.DSN())
	case BackendSQLite:
		d, err = NewSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if d.Backend() == BackendPostgres {
		if cfg.MaxOpenConns > 0 {
			d.db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			d.db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	logger.Info("Connected to database", zap.String("backend", string(d.Backend())))
	return d, nil
}

// DB returns the underlying pool
func (d *Database) DB() *sql.DB {
	return d.db
}

// Health reports connectivity, pool statistics and the applied schema version
func (d *Database) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := map[string]string{"backend": string(d.Backend())}

	if err := d.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	stats["status"] = "up"

	poolStats := d.db.Stats()
	stats["open_connections"] = strconv.Itoa(poolStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(poolStats.InUse)
	stats["idle"] = strconv.Itoa(poolStats.Idle)

	if version, err := SchemaVersion(ctx, d.db, d.Backend()); err == nil {
		stats["schema_version"] = strconv.FormatInt(version, 10)
	}

	return stats
}

// Close releases the pool
func (d *Database) Close() error {
	return d.db.Close()
}
