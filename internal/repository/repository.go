// Package repository is the illustrative persistence boundary
// callers sit the engine behind: a Postgres-backed store for
// scenarios and the schedules the engine produced for them. The
// engine itself is stateless and never imports this package (spec
// §1 Non-goals: persistence is the caller's concern).
package repository

import (
	"context"
	"database/sql"
)

// DB is the subset of *sql.DB the stores need. Its query methods
// return *sql.Rows and *sql.Row, so tests pass a *sql.DB opened on
// go-sqlmock's mock driver.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx extends DB with transaction control.
type Tx interface {
	DB
	Commit() error
	Rollback() error
}

// ListFilter paginates and filters a store's List call.
type ListFilter struct {
	Search   string
	Offset   int
	Limit    int
	OrderBy  string
	OrderDir string // asc/desc
}

// DefaultListFilter returns the filter's documented defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:    20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// WithLimit sets the page size.
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset sets the page offset.
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}
