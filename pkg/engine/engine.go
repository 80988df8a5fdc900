// Package engine executes validated SQL against an in-process DuckDB
// instance and classifies the raw tabular output into a result shape.
//
// Every execution gets a fresh in-memory engine with the dataset
// registered as the only reachable table; nothing persists across
// calls, so concurrent requests are fully isolated.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Constraints bound a single query execution.
type Constraints struct {
	// MaxRows caps the result size; excess rows are truncated, never
	// an error.
	MaxRows int
	// Timeout is the wall-clock limit for the engine call.
	Timeout time.Duration
}

// DefaultConstraints returns the standard execution limits.
func DefaultConstraints() Constraints {
	return Constraints{MaxRows: 10000, Timeout: 2 * time.Second}
}

// Dataset locates the tabular source a query runs against.
type Dataset struct {
	// TableName is the single table name the dataset is registered
	// under (conventionally "data").
	TableName string
	// CSVPath is the materialized dataset file.
	CSVPath string
	// TotalRows is the dataset's row count, used for the count-bound
	// invariant check.
	TotalRows int64
}

// openDataset opens a fresh in-memory DuckDB connection and registers
// the dataset as a view. The connection reaches no other tables or
// external data.
func openDataset(ctx context.Context, ds Dataset) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	register := fmt.Sprintf(
		`CREATE VIEW %s AS SELECT * FROM read_csv_auto(%s)`,
		quoteIdentifier(ds.TableName), quoteLiteral(ds.CSVPath))
	if _, err := db.ExecContext(ctx, register); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register dataset: %w", err)
	}

	return db, nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
