package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
)

// SQLite's built-in lower() only folds ASCII. Replacing it keeps
// case-insensitive search consistent with PostgreSQL for non-ASCII text.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type sqliteExecutor struct {
	baseExecutor
}

// NewSQLiteExecutor wraps a modernc sqlite handle. The driver understands
// "?" natively, so templates pass through untouched.
func NewSQLiteExecutor(db *sql.DB) Executor {
	return &sqliteExecutor{baseExecutor{db: db, conn: db, rebind: noRebind}}
}

func (e *sqliteExecutor) Backend() Backend {
	return BackendSQLite
}

func (e *sqliteExecutor) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := e.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, err
	}

	result := Result{RowsAffected: affected}
	if affected == 1 && isInsert(query) {
		id, err := res.LastInsertId()
		if err != nil {
			return Result{}, err
		}
		result.ID = id
		result.HasID = true
	}

	return result, nil
}

func (e *sqliteExecutor) WithTx(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error {
	return e.withTx(ctx, e, func(tx DBTX) Executor {
		return &sqliteExecutor{baseExecutor{conn: tx, rebind: e.rebind}}
	}, fn)
}

// NewSQLite opens (and creates if needed) a single-file SQLite database.
// A single connection is used so writers never contend for the file lock.
func NewSQLite(ctx context.Context, path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{Executor: NewSQLiteExecutor(db), db: db}, nil
}
