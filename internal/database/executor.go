package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Backend identifies the relational store behind an Executor
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// RowScanner is implemented by *sql.Row and *sql.Rows
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads the current row into caller-owned values
type ScanFunc func(row RowScanner) error

// Result describes the outcome of Execute. HasID is true only when an
// INSERT stored exactly one row; ID is then its generated key. Multi-row
// inserts and inserts that skipped their row report RowsAffected alone.
type Result struct {
	ID           int64
	HasID        bool
	RowsAffected int64
}

// Executor runs dialect-neutral queries against the active backend.
//
// Query templates use sequential "?" markers; each implementation rewrites
// them into the syntax its driver expects. Backend errors are returned as-is:
// there are no retries and no recovery at this layer.
type Executor interface {
	// FetchMany calls scan once per result row.
	FetchMany(ctx context.Context, scan ScanFunc, query string, args ...any) error
	// FetchOne scans the first result row. found is false when there is none.
	FetchOne(ctx context.Context, scan ScanFunc, query string, args ...any) (found bool, err error)
	// Execute runs a statement that does not return rows. For a single-row
	// INSERT the generated surrogate key is reported in Result.ID.
	Execute(ctx context.Context, query string, args ...any) (Result, error)
	// WithTx runs fn inside a transaction. Calling it on an executor that is
	// already transactional runs fn in the same transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error
	Backend() Backend
}

// baseExecutor holds what both backends share: fetching rows and
// transaction handling. Only statement execution differs.
type baseExecutor struct {
	db     *sql.DB // nil inside a transaction
	conn   DBTX
	rebind func(string) string
}

func (e *baseExecutor) FetchMany(ctx context.Context, scan ScanFunc, query string, args ...any) error {
	rows, err := e.conn.QueryContext(ctx, e.rebind(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (e *baseExecutor) FetchOne(ctx context.Context, scan ScanFunc, query string, args ...any) (bool, error) {
	row := e.conn.QueryRowContext(ctx, e.rebind(query), args...)
	if err := scan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (e *baseExecutor) withTx(ctx context.Context, self Executor, wrap func(DBTX) Executor, fn func(ctx context.Context, tx Executor) error) error {
	if e.db == nil {
		return fn(ctx, self)
	}
	return withTx(ctx, e.db, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, wrap(tx))
	})
}

func isInsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(skipLeadingComments(query)), "INSERT")
}

// skipLeadingComments drops whitespace and "--" / "/* */" comments that
// precede the first keyword
func skipLeadingComments(query string) string {
	for {
		query = strings.TrimSpace(query)
		switch {
		case strings.HasPrefix(query, "--"):
			end := strings.IndexByte(query, '\n')
			if end < 0 {
				return ""
			}
			query = query[end+1:]
		case strings.HasPrefix(query, "/*"):
			end := strings.Index(query, "*/")
			if end < 0 {
				return ""
			}
			query = query[end+2:]
		default:
			return query
		}
	}
}

func noRebind(query string) string {
	return query
}
