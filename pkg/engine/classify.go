package engine

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"
	"time"

	duckdb "github.com/marcboeker/go-duckdb"

	"github.com/PranavZagade/Lumora/pkg/models"
)

// RawResult is the untyped tabular output of the engine, before shape
// classification.
type RawResult struct {
	Columns []string
	Rows    []models.Row
}

var timeColumnPattern = regexp.MustCompile(`TIME|DATE|YEAR|MONTH|DAY`)

// aggregationTokens is checked in precedence order; the first token
// found in the query names the scalar's aggregation.
var aggregationTokens = []struct {
	token string
	name  string
}{
	{"COUNT", "count"},
	{"AVG", "mean"},
	{"SUM", "sum"},
	{"MIN", "min"},
	{"MAX", "max"},
}

// Classify maps a raw tabular result to its shape. The decision tree is
// deterministic and evaluated in a fixed order:
//
//  1. no rows                                      -> Empty
//  2. exactly one row and one column               -> Scalar
//  3. >=2 columns, first column named like time    -> TimeSeries
//  4. query has ORDER BY ... DESC and >=2 columns  -> Ranking
//  5. query has GROUP BY                           -> Breakdown
//  6. anything else                                -> Table
//
// A metric cell that is non-nil but not convertible to a number is a
// classification error, never a silent zero.
func Classify(raw RawResult, query string) (models.ShapedResult, error) {
	if len(raw.Rows) == 0 {
		return &models.EmptyResult{Message: "No results found."}, nil
	}

	upper := strings.ToUpper(query)

	if len(raw.Rows) == 1 && len(raw.Columns) == 1 {
		return classifyScalar(raw, upper)
	}

	if len(raw.Columns) >= 2 {
		firstCol := raw.Columns[0]
		if timeColumnPattern.MatchString(strings.ToUpper(firstCol)) {
			return classifyTimeSeries(raw)
		}

		if strings.Contains(upper, "ORDER BY") && strings.Contains(upper, "DESC") {
			return classifyRanking(raw)
		}
	}

	if strings.Contains(upper, "GROUP BY") {
		return classifyBreakdown(raw)
	}

	return &models.TableResult{Data: raw.Rows, Columns: raw.Columns}, nil
}

func classifyScalar(raw RawResult, upperQuery string) (models.ShapedResult, error) {
	col := raw.Columns[0]
	value := raw.Rows[0][col]

	for _, agg := range aggregationTokens {
		if strings.Contains(upperQuery, agg.token) {
			f, err := metricValue(value)
			if err != nil {
				return nil, fmt.Errorf("%s value in column %s: %w", agg.name, col, err)
			}
			return &models.ScalarResult{Value: f, Aggregation: agg.name, ColumnName: col}, nil
		}
	}

	if f, ok := toFloat(value); ok {
		return &models.ScalarResult{Value: f, ColumnName: col}, nil
	}
	return &models.ScalarResult{Value: formatCell(value), ColumnName: col}, nil
}

func classifyTimeSeries(raw RawResult) (models.ShapedResult, error) {
	timeCol, metricCol := raw.Columns[0], raw.Columns[1]
	data := make([]models.TimePoint, len(raw.Rows))
	for i, row := range raw.Rows {
		value, err := metricValue(row[metricCol])
		if err != nil {
			return nil, fmt.Errorf("metric column %s: %w", metricCol, err)
		}
		data[i] = models.TimePoint{
			Time:  formatCell(row[timeCol]),
			Value: value,
		}
	}
	return &models.TimeSeriesResult{Data: data, TimeColumn: timeCol, MetricColumn: metricCol}, nil
}

func classifyRanking(raw RawResult) (models.ShapedResult, error) {
	groupCol, metricCol := raw.Columns[0], raw.Columns[1]
	data := make([]models.RankedGroup, len(raw.Rows))
	for i, row := range raw.Rows {
		value, err := metricValue(row[metricCol])
		if err != nil {
			return nil, fmt.Errorf("metric column %s: %w", metricCol, err)
		}
		data[i] = models.RankedGroup{
			Group: formatCell(row[groupCol]),
			Value: value,
			Rank:  i + 1,
		}
	}
	return &models.RankingResult{Data: data, GroupColumn: groupCol, MetricColumn: metricCol}, nil
}

func classifyBreakdown(raw RawResult) (models.ShapedResult, error) {
	groupCol := raw.Columns[0]
	metricCol := ""
	if len(raw.Columns) > 1 {
		metricCol = raw.Columns[1]
	}

	data := make([]models.GroupValue, len(raw.Rows))
	for i, row := range raw.Rows {
		value := 0.0
		if metricCol != "" {
			v, err := metricValue(row[metricCol])
			if err != nil {
				return nil, fmt.Errorf("metric column %s: %w", metricCol, err)
			}
			value = v
		}
		data[i] = models.GroupValue{Group: formatCell(row[groupCol]), Value: value}
	}
	return &models.BreakdownResult{Data: data, GroupColumn: groupCol, MetricColumn: metricCol}, nil
}

// toFloat converts engine cell values to float64. SUM over integer
// columns comes back as HUGEINT (*big.Int) and DECIMAL columns as
// duckdb.Decimal; both are measurements, not labels. Booleans are
// excluded: a boolean is categorical, not a measurement.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	case *big.Float:
		f, _ := n.Float64()
		return f, true
	case duckdb.Decimal:
		return n.Float64(), true
	default:
		return 0, false
	}
}

// metricValue reads a numeric metric cell. Nil and NaN read as zero,
// matching missing-value semantics in the source data; any other
// unconvertible value means the result cannot be trusted.
func metricValue(v any) (float64, error) {
	if v == nil {
		return 0.0, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("non-numeric value of type %T", v)
	}
	if math.IsNaN(f) {
		return 0.0, nil
	}
	return f, nil
}

// formatCell renders a cell for the string-typed fields of shaped
// results (times, group labels, non-numeric scalars).
func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
