// Package runner executes aggregate metric queries against a single bound
// table. It is driver-agnostic database/sql: DuckDB in production, SQLite in
// tests.
package runner

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// QueryRunner is bound to one table of a warehouse connection. It exposes the
// table's column metadata for lookup and executes one aggregate expression at
// a time, returning the first result row. Safe for concurrent use.
type QueryRunner struct {
	db      *sql.DB
	table   string
	limiter *rate.Limiter
}

// Option configures a QueryRunner.
type Option func(*QueryRunner)

// WithLimiter attaches a token-bucket limiter to query dispatch. The limiter
// is typically shared across runners so that all of a suite's metric queries
// draw from one bucket and scheduled suites cannot saturate the warehouse.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *QueryRunner) {
		r.limiter = l
	}
}

// New creates a QueryRunner bound to the given table.
func New(db *sql.DB, table string, opts ...Option) *QueryRunner {
	r := &QueryRunner{db: db, table: table}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the bound table name.
func (r *QueryRunner) Table() string { return r.table }

// Columns returns the column names of the bound table.
func (r *QueryRunner) Columns(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", quoteIdent(r.table)))
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", r.table, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", r.table, err)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// SelectFirst executes SELECT <exprs> FROM <table> and returns the first row
// as a name-to-value map keyed by the result column names. A query yielding
// no rows is an error; aggregate queries always produce exactly one.
func (r *QueryRunner) SelectFirst(ctx context.Context, exprs ...string) (map[string]interface{}, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("select first on %s: no expressions given", r.table)
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), quoteIdent(r.table))
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("query on %s returned no rows", r.table)
	}

	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan result row: %w", err)
	}

	row := make(map[string]interface{}, len(cols))
	for i, name := range cols {
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[name] = v
	}
	return row, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
