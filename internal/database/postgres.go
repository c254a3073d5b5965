package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type postgresExecutor struct {
	baseExecutor
}

// NewPostgresExecutor wraps a pgx-backed handle. Inserts get "RETURNING id"
// appended so the generated key comes back in the same round trip.
func NewPostgresExecutor(db *sql.DB) Executor {
	return &postgresExecutor{baseExecutor{db: db, conn: db, rebind: rebindDollar}}
}

func (e *postgresExecutor) Backend() Backend {
	return BackendPostgres
}

func (e *postgresExecutor) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	query = strings.TrimRight(strings.TrimSpace(e.rebind(query)), ";")

	if isInsert(query) && !strings.Contains(strings.ToUpper(query), "RETURNING") {
		return e.insertReturning(ctx, query, args...)
	}

	res, err := e.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, err
	}

	return Result{RowsAffected: affected}, nil
}

// insertReturning counts the ids the insert hands back. An insert that
// skipped every row (ON CONFLICT DO NOTHING) affects zero rows.
func (e *postgresExecutor) insertReturning(ctx context.Context, query string, args ...any) (Result, error) {
	rows, err := e.conn.QueryContext(ctx, query+" RETURNING id", args...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	var result Result
	for rows.Next() {
		if err := rows.Scan(&result.ID); err != nil {
			return Result{}, err
		}
		result.RowsAffected++
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	result.HasID = result.RowsAffected == 1
	if !result.HasID {
		result.ID = 0
	}
	return result, nil
}

func (e *postgresExecutor) WithTx(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error {
	return e.withTx(ctx, e, func(tx DBTX) Executor {
		return &postgresExecutor{baseExecutor{conn: tx, rebind: e.rebind}}
	}, fn)
}

// rebindDollar rewrites sequential "?" markers into numbered "$n" markers.
// Markers inside quoted literals or identifiers are left alone.
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inSingle, inDouble := false, false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '?' && !inSingle && !inDouble:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// NewPostgres opens a PostgreSQL pool through the pgx stdlib driver and
// verifies connectivity.
func NewPostgres(ctx context.Context, dsn string) (*Database, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{Executor: NewPostgresExecutor(db), db: db}, nil
}
