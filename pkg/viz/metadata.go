// Package viz derives chart specifications from shaped query results:
// per-field metadata, a deterministic eligibility gate, spec
// generation, and a closing integrity validator.
//
// Every function here is pure and operates on the values a query
// returned, never on the source schema, so synthetic fields (an
// extracted year, an aliased aggregate) classify the same way as real
// columns.
package viz

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PranavZagade/Lumora/pkg/models"
)

var (
	timeNameKeywords = []string{
		"time", "date", "year", "month", "day", "week", "quarter", "period", "timestamp",
	}
	numericNameKeywords = []string{
		"count", "sum", "avg", "average", "total", "amount", "value",
		"price", "quantity", "num", "number",
	}

	yearValuePattern = regexp.MustCompile(`^\d{4}$`)
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}`)
)

// BuildMetadata inspects a shaped result and infers, per field, a role,
// cardinality, and sparsity. Total function: scalar and empty results
// get an empty column map with row counts 1 and 0 respectively.
func BuildMetadata(result models.ShapedResult) models.ResultMetadata {
	meta := models.ResultMetadata{
		Columns:    map[string]models.ColumnMeta{},
		ResultType: result.Type(),
	}

	switch result.Type() {
	case models.ResultScalar:
		meta.RowCount = 1
		return meta
	case models.ResultEmpty:
		meta.RowCount = 0
		return meta
	}

	rows := result.Rows()
	meta.RowCount = len(rows)
	if len(rows) == 0 {
		return meta
	}

	for field := range rows[0] {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row[field]
		}

		col := models.ColumnMeta{
			Role:        inferRole(field, values),
			Cardinality: cardinality(values),
			Sparsity:    sparsity(values),
		}
		if col.Role == models.RoleNumeric {
			col.Min, col.Max = numericRange(values)
		}
		meta.Columns[field] = col
	}

	return meta
}

// inferRole classifies a field from its name and a sample of its
// values: time beats numeric beats categorical.
func inferRole(name string, values []any) models.ColumnRole {
	lower := strings.ToLower(name)

	for _, kw := range timeNameKeywords {
		if strings.Contains(lower, kw) {
			return models.RoleTime
		}
	}

	if sample, ok := firstNonNil(values); ok {
		if s, isString := sample.(string); isString {
			if yearValuePattern.MatchString(s) || isoDatePattern.MatchString(s) {
				return models.RoleTime
			}
		}
	}

	for _, kw := range numericNameKeywords {
		if strings.Contains(lower, kw) {
			return models.RoleNumeric
		}
	}

	if sample, ok := firstNonNil(values); ok {
		if _, isBool := sample.(bool); !isBool {
			if _, isNumeric := asFloat(sample); isNumeric {
				return models.RoleNumeric
			}
		}
	}

	return models.RoleCategorical
}

func firstNonNil(values []any) (any, bool) {
	for _, v := range values {
		if v != nil {
			return v, true
		}
	}
	return nil, false
}

// cardinality counts distinct stringified non-null values.
func cardinality(values []any) int {
	seen := make(map[string]struct{})
	for _, v := range values {
		if v == nil {
			continue
		}
		seen[stringify(v)] = struct{}{}
	}
	return len(seen)
}

// sparsity is the fraction of null, empty, or NaN values.
func sparsity(values []any) float64 {
	if len(values) == 0 {
		return 0.0
	}
	missing := 0
	for _, v := range values {
		switch t := v.(type) {
		case nil:
			missing++
		case string:
			if t == "" {
				missing++
			}
		case float64:
			if math.IsNaN(t) {
				missing++
			}
		}
	}
	return float64(missing) / float64(len(values))
}

func numericRange(values []any) (*float64, *float64) {
	var minV, maxV *float64
	for _, v := range values {
		f, ok := asFloat(v)
		if !ok || math.IsNaN(f) {
			continue
		}
		if minV == nil || f < *minV {
			f := f
			minV = &f
		}
		if maxV == nil || f > *maxV {
			f := f
			maxV = &f
		}
	}
	return minV, maxV
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := asFloat(v); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%v", v)
}
