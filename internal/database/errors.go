package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// ConstraintKind names the kind of integrity rule a statement broke
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintOther      ConstraintKind = "other"
)

// ConstraintError wraps a backend integrity failure. It matches
// ErrConstraintViolation and, depending on Kind, ErrUniqueViolation or
// ErrForeignKeyViolation.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint violation: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

func (e *ConstraintError) Is(target error) bool {
	switch target {
	case ErrConstraintViolation:
		return true
	case ErrUniqueViolation:
		return e.Kind == ConstraintUnique
	case ErrForeignKeyViolation:
		return e.Kind == ConstraintForeignKey
	}
	return false
}

// UnavailableError wraps a connectivity or backend fault
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// Classify maps a raw driver error onto the error taxonomy. Errors that fit
// no category are returned unchanged; the original error always stays
// reachable through errors.Unwrap.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}

	if kind, name, ok := constraintOf(err); ok {
		return &ConstraintError{Kind: kind, Constraint: name, Err: err}
	}

	if unavailable(err) {
		return &UnavailableError{Err: err}
	}

	return err
}

func constraintOf(err error) (ConstraintKind, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ConstraintUnique, pgErr.ConstraintName, true
		case "23503":
			return ConstraintForeignKey, pgErr.ConstraintName, true
		case "23514":
			return ConstraintCheck, pgErr.ConstraintName, true
		case "23502":
			return ConstraintNotNull, pgErr.ColumnName, true
		}
		if strings.HasPrefix(pgErr.Code, "23") {
			return ConstraintOther, pgErr.ConstraintName, true
		}
		return "", "", false
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code()
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ConstraintUnique, "", true
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ConstraintForeignKey, "", true
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ConstraintCheck, "", true
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return ConstraintNotNull, "", true
		}

		// Without extended result codes only the message tells the kinds apart
		if code&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := sqErr.Error()
			switch {
			case strings.Contains(msg, "UNIQUE constraint failed"):
				return ConstraintUnique, "", true
			case strings.Contains(msg, "FOREIGN KEY constraint failed"):
				return ConstraintForeignKey, "", true
			case strings.Contains(msg, "CHECK constraint failed"):
				return ConstraintCheck, "", true
			case strings.Contains(msg, "NOT NULL constraint failed"):
				return ConstraintNotNull, "", true
			}
			return ConstraintOther, "", true
		}
	}

	return "", "", false
}

func unavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception, class 57: operator intervention
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57")
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return true
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
