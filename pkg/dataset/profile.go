package dataset

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/models"
)

// Thresholds for the categorical-vs-text heuristic on string columns.
const (
	categoricalMaxUnique   = 100
	categoricalUniqueRatio = 0.5
)

var booleanIndicators = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"1": true, "0": true,
	"y": true, "n": true,
}

// Profiler derives dataset profiles from CSV files.
type Profiler struct {
	logger *zap.Logger
}

// NewProfiler creates a profiler.
func NewProfiler(logger *zap.Logger) *Profiler {
	return &Profiler{logger: logger.Named("profiler")}
}

// Profile loads a CSV into an in-memory DuckDB instance and derives
// per-column semantic types and statistics. The profile is the only
// dataset description the rest of the pipeline ever sees.
func (p *Profiler) Profile(ctx context.Context, csvPath, datasetID, filename string) (*models.DatasetProfile, error) {
	db, err := stdsql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("opening engine: %w", err)
	}
	defer db.Close()

	createView := fmt.Sprintf(
		"CREATE VIEW data AS SELECT * FROM read_csv_auto(%s)",
		quoteLiteral(csvPath))
	if _, err := db.ExecContext(ctx, createView); err != nil {
		return nil, fmt.Errorf("loading csv: %w", err)
	}

	var totalRows int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data").Scan(&totalRows); err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	columns, err := describeColumns(ctx, db)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.ColumnProfile, 0, len(columns))
	for _, col := range columns {
		prof, err := p.profileColumn(ctx, db, col, totalRows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, prof)
	}

	p.logger.Info("dataset profiled",
		zap.String("dataset_id", datasetID),
		zap.Int64("total_rows", totalRows),
		zap.Int("columns", len(profiles)))

	return &models.DatasetProfile{
		DatasetID: datasetID,
		Filename:  filename,
		TotalRows: totalRows,
		Columns:   profiles,
	}, nil
}

type describedColumn struct {
	name     string
	duckType string
}

func describeColumns(ctx context.Context, db *stdsql.DB) ([]describedColumn, error) {
	rows, err := db.QueryContext(ctx, "SELECT column_name, column_type FROM (DESCRIBE data)")
	if err != nil {
		return nil, fmt.Errorf("describing columns: %w", err)
	}
	defer rows.Close()

	var columns []describedColumn
	for rows.Next() {
		var col describedColumn
		if err := rows.Scan(&col.name, &col.duckType); err != nil {
			return nil, fmt.Errorf("scanning column description: %w", err)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (p *Profiler) profileColumn(ctx context.Context, db *stdsql.DB, col describedColumn, totalRows int64) (models.ColumnProfile, error) {
	ident := quoteIdentifier(col.name)

	var nullCount, uniqueCount int64
	query := fmt.Sprintf(
		"SELECT COUNT(*) - COUNT(%s), COUNT(DISTINCT %s) FROM data", ident, ident)
	if err := db.QueryRowContext(ctx, query).Scan(&nullCount, &uniqueCount); err != nil {
		return models.ColumnProfile{}, fmt.Errorf("profiling column %s: %w", col.name, err)
	}

	dtype := semanticType(col.duckType, uniqueCount, totalRows)
	if dtype == models.SemanticCategorical && uniqueCount > 0 && uniqueCount <= 2 {
		isBool, err := looksBooleanValued(ctx, db, ident)
		if err != nil {
			return models.ColumnProfile{}, fmt.Errorf("profiling column %s: %w", col.name, err)
		}
		if isBool {
			dtype = models.SemanticBoolean
		}
	}

	return models.ColumnProfile{
		Name:        col.name,
		Dtype:       dtype,
		NullCount:   nullCount,
		UniqueCount: uniqueCount,
	}, nil
}

// semanticType maps an engine-inferred storage type plus cardinality
// to the profiled semantic type.
func semanticType(duckType string, uniqueCount, totalRows int64) models.SemanticType {
	upper := strings.ToUpper(duckType)
	switch {
	case upper == "BOOLEAN":
		return models.SemanticBoolean
	case strings.Contains(upper, "INT"),
		strings.Contains(upper, "DOUBLE"),
		strings.Contains(upper, "FLOAT"),
		strings.Contains(upper, "DECIMAL"),
		strings.Contains(upper, "NUMERIC"),
		strings.Contains(upper, "HUGEINT"):
		return models.SemanticNumeric
	case strings.Contains(upper, "TIMESTAMP"),
		strings.Contains(upper, "DATE"),
		strings.Contains(upper, "TIME"):
		return models.SemanticDatetime
	}

	// String columns split into categorical and free text on
	// cardinality.
	if totalRows > 0 {
		ratio := float64(uniqueCount) / float64(totalRows)
		if uniqueCount < categoricalMaxUnique && ratio < categoricalUniqueRatio {
			return models.SemanticCategorical
		}
	}
	return models.SemanticText
}

// looksBooleanValued checks whether a low-cardinality string column
// holds only boolean indicator values ("yes"/"no", "true"/"false").
func looksBooleanValued(ctx context.Context, db *stdsql.DB, ident string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM data WHERE %s IS NOT NULL LIMIT 3", ident, ident)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	seen := 0
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return false, err
		}
		if !booleanIndicators[strings.ToLower(strings.TrimSpace(value))] {
			return false, nil
		}
		seen++
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return seen > 0 && seen <= 2, nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
