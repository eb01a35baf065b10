// Package repository provides shared database access helpers built on
// database/sql with the pgx stdlib driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Scanner abstracts row scanning for both sql.Row and sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Executor is the subset of sql.DB and sql.Tx used by repositories, so a
// query can run either standalone or inside a transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QueryOne executes a query expected to return a single row and scans it
// with the provided scan function.
func QueryOne[T any](ctx context.Context, ex Executor, query string, args []any, scan func(Scanner) (T, error)) (T, error) {
	return scan(ex.QueryRowContext(ctx, query, args...))
}

// QueryMany executes a query and scans every returned row with the provided
// scan function.
func QueryMany[T any](ctx context.Context, ex Executor, query string, args []any, scan func(Scanner) (T, error)) ([]T, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	return results, rows.Err()
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit tx: %w", err)
	}

	return result, nil
}

// ExecExpectOne executes a statement and returns sql.ErrNoRows when no row
// was affected, so callers can map it to their not-found sentinel.
func ExecExpectOne(ctx context.Context, ex Executor, query string, args ...any) error {
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

const pgUniqueViolation = "23505"

// MapError translates low-level database errors to domain sentinels.
// sql.ErrNoRows maps to notFound and a Postgres unique violation maps to
// duplicate; all other errors pass through unchanged.
func MapError(err, notFound, duplicate error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", notFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %v", duplicate, err)
	}

	return err
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
