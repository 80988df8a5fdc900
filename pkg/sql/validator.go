// Package sql provides static safety validation of LLM-authored SQL.
//
// The validator is intentionally a conservative token-level inspection,
// not a full parser: imperfect extraction degrades to warnings rather
// than blocking legitimate queries, while the forbidden-operation
// checks stay strict.
package sql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// LimitWarnThreshold is the LIMIT above which a slowness warning
	// is attached.
	LimitWarnThreshold = 1000
	// LimitHardCap is the LIMIT above which the query is rejected.
	LimitHardCap = 10000
	// NullGroupingThreshold is the null fraction above which grouping
	// by a column draws a reliability advisory.
	NullGroupingThreshold = 0.5
)

// forbiddenKeywords are operations that must never appear anywhere in
// a candidate query. Matched on word boundaries, case-insensitive.
var forbiddenKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "CREATE",
	"TRUNCATE", "REPLACE", "MERGE", "COPY", "IMPORT", "EXPORT",
}

var forbiddenKeywordPatterns = compileKeywordPatterns(forbiddenKeywords)

func compileKeywordPatterns(keywords []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(keywords))
	for _, kw := range keywords {
		patterns[kw] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return patterns
}

// dangerousPatterns match function calls and primitives that could
// reach outside the sandboxed table: execution, file, and network
// access.
var dangerousPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"EXEC", regexp.MustCompile(`\bEXEC\s*\(`)},
	{"EVAL", regexp.MustCompile(`\bEVAL\s*\(`)},
	{"LOAD", regexp.MustCompile(`\bLOAD\s*\(`)},
	{"READ FILE", regexp.MustCompile(`\bREAD\s*FILE\b`)},
	{"WRITE FILE", regexp.MustCompile(`\bWRITE\s*FILE\b`)},
	{"HTTP", regexp.MustCompile(`\bHTTPF?S?\b`)},
	{"CURL", regexp.MustCompile(`\bCURL\b`)},
}

var (
	limitPattern     = regexp.MustCompile(`\bLIMIT\s+(\d+)`)
	fromPattern      = regexp.MustCompile(`\bFROM\s+`)
	countStarPattern = regexp.MustCompile(`\bCOUNT\s*\(\s*\*\s*\)`)
)

// ColumnStats carries the null statistics used for grouping advisories.
type ColumnStats struct {
	NullCount int64
	TotalRows int64
}

// ValidationOutcome is the terminal result of static validation. When
// IsValid is false the pipeline halts; Error is surfaced to the caller,
// never the raw SQL.
type ValidationOutcome struct {
	IsValid  bool     `json:"is_valid"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func rejected(format string, args ...any) ValidationOutcome {
	return ValidationOutcome{IsValid: false, Error: fmt.Sprintf(format, args...)}
}

// Validate statically checks a candidate query against the dataset's
// column allow-list and the forbidden-operation rules. Pure function:
// failure is communicated only through the outcome.
//
// columnStats is optional; when supplied, grouping by a mostly-null
// column yields an advisory warning.
func Validate(query string, allowedColumns []string, tableName string, columnStats map[string]ColumnStats) ValidationOutcome {
	var warnings []string

	normalized := NormalizeStatement(query)
	upper := strings.ToUpper(normalized)

	// Forbidden operations are checked before anything else so an
	// injected second statement still names the real offense.
	for _, kw := range forbiddenKeywords {
		if forbiddenKeywordPatterns[kw].MatchString(upper) {
			return rejected("query contains forbidden keyword: %s", kw)
		}
	}

	if !strings.HasPrefix(upper, "SELECT") {
		return rejected("query must be a SELECT statement")
	}

	for _, dp := range dangerousPatterns {
		if dp.pattern.MatchString(upper) {
			return rejected("query contains potentially dangerous operation: %s", dp.name)
		}
	}

	if hasSemicolonOutsideStrings(normalized) {
		return rejected("multiple SQL statements are not allowed")
	}

	if hit := CheckLiteralsForInjection(normalized); hit != nil {
		return rejected("query literal contains an injection pattern")
	}

	refs := ExtractColumnRefs(upper, allowedColumns)
	if len(refs) == 0 && !countStarPattern.MatchString(upper) && !strings.Contains(upper, "SELECT *") {
		warnings = append(warnings, "no known columns referenced; the query may not match this dataset")
	}

	if m := limitPattern.FindStringSubmatch(upper); m != nil {
		limit, err := strconv.Atoi(m[1])
		if err == nil {
			if limit > LimitHardCap {
				return rejected("LIMIT too large (%d), maximum allowed is %d", limit, LimitHardCap)
			}
			if limit > LimitWarnThreshold {
				warnings = append(warnings, fmt.Sprintf("LIMIT is very large (%d), may be slow", limit))
			}
		}
	} else if !strings.Contains(upper, "GROUP BY") && !countStarPattern.MatchString(upper) {
		warnings = append(warnings, "query has no LIMIT and may return many rows")
	}

	if len(fromPattern.FindAllString(upper, -1)) > 1 && !strings.Contains(upper, "JOIN") {
		warnings = append(warnings, "query may produce a Cartesian product (multiple FROM without JOIN)")
	}

	upperTable := strings.ToUpper(tableName)
	if !strings.Contains(upper, "FROM "+upperTable) {
		warnings = append(warnings, fmt.Sprintf("table name %q not found in query", tableName))
	}

	warnings = append(warnings, nullGroupingAdvisories(upper, allowedColumns, columnStats)...)

	return ValidationOutcome{IsValid: true, Warnings: warnings}
}

var groupByPattern = regexp.MustCompile(`(?s)GROUP\s+BY\s+(.*?)(?:\s+ORDER\b|\s+LIMIT\b|\s+HAVING\b|$)`)

// nullGroupingAdvisories warns when a GROUP BY column is mostly null:
// grouped results over such a column are unreliable, but that is a
// data-quality concern, not a safety one.
func nullGroupingAdvisories(upper string, allowedColumns []string, columnStats map[string]ColumnStats) []string {
	if len(columnStats) == 0 {
		return nil
	}

	m := groupByPattern.FindStringSubmatch(upper)
	if m == nil {
		return nil
	}
	clause := m[1]

	var warnings []string
	for _, col := range allowedColumns {
		stats, ok := columnStats[col]
		if !ok || stats.TotalRows == 0 {
			continue
		}
		if !wholeWordMatch(clause, strings.ToUpper(col)) {
			continue
		}
		nullFraction := float64(stats.NullCount) / float64(stats.TotalRows)
		if nullFraction > NullGroupingThreshold {
			warnings = append(warnings, fmt.Sprintf(
				"grouping column %q has %.1f%% NULL values, results may be misleading",
				col, nullFraction*100))
		}
	}
	return warnings
}
