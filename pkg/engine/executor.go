package engine

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
	"github.com/PranavZagade/Lumora/pkg/logging"
	"github.com/PranavZagade/Lumora/pkg/models"
)

// Executor runs validated queries under resource constraints and shapes
// their output. Stateless; safe for concurrent use.
type Executor struct {
	logger *zap.Logger
}

// NewExecutor creates an executor.
func NewExecutor(logger *zap.Logger) *Executor {
	return &Executor{logger: logger.Named("executor")}
}

// Execute runs a validated query against the dataset and classifies the
// result. The engine call is bounded by the constraint timeout; on
// expiry the returned error carries the Timeout kind. Results larger
// than MaxRows are truncated and logged, never failed.
func (e *Executor) Execute(ctx context.Context, ds Dataset, query string, constraints Constraints) (models.ShapedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constraints.Timeout)
	defer cancel()

	start := time.Now()

	db, err := openDataset(ctx, ds)
	if err != nil {
		return nil, e.classifyEngineError(ctx, "prepare execution context", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, e.classifyEngineError(ctx, "query execution failed", err)
	}
	defer func() { _ = rows.Close() }()

	raw, truncated, err := scanRows(rows, constraints.MaxRows)
	if err != nil {
		return nil, e.classifyEngineError(ctx, "scan result", err)
	}

	if truncated {
		e.logger.Warn("query result truncated",
			zap.Int("max_rows", constraints.MaxRows),
			zap.String("query", logging.SanitizeQuery(query)))
	}

	result, err := Classify(raw, query)
	if err != nil {
		e.logger.Error("result classification rejected",
			zap.String("query", logging.SanitizeQuery(query)),
			zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindInvariantViolated, "result failed sanity checks", err)
	}

	if err := checkResultInvariants(result, ds.TotalRows); err != nil {
		// Logged distinctly from ordinary execution failures: this is
		// a bug signal, not an expected path.
		e.logger.Error("result invariant violated",
			zap.String("result_type", string(result.Type())),
			zap.Int64("total_rows", ds.TotalRows),
			zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindInvariantViolated, "result failed sanity checks", err)
	}

	e.logger.Info("query executed",
		zap.String("result_type", string(result.Type())),
		zap.Int("rows", len(raw.Rows)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (e *Executor) classifyEngineError(ctx context.Context, message string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindTimeout, "query timed out", ctx.Err())
	}
	return apperrors.Wrap(apperrors.KindExecutionFailed, message, err)
}

// scanRows reads up to maxRows records, reporting whether the raw
// output was larger.
func scanRows(rows *stdsql.Rows, maxRows int) (RawResult, bool, error) {
	columns, err := rows.Columns()
	if err != nil {
		return RawResult{}, false, err
	}

	raw := RawResult{Columns: columns}
	truncated := false

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if len(raw.Rows) >= maxRows {
			truncated = true
			break
		}
		if err := rows.Scan(pointers...); err != nil {
			return RawResult{}, false, err
		}
		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		raw.Rows = append(raw.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return RawResult{}, false, err
	}

	return raw, truncated, nil
}
