package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PranavZagade/Lumora/pkg/models"
)

// aggregationLanguage maps detected aggregations to the noun used in
// answers.
var aggregationLanguage = map[string]string{
	"count": "records",
	"sum":   "total",
	"mean":  "average",
	"avg":   "average",
	"min":   "minimum",
	"max":   "maximum",
}

var comparativeKeywords = []string{
	"higher", "lower", "more", "less", "greater", "smaller",
	"better", "worse", "larger", "bigger", "compare", "comparison",
}

var higherWords = []string{"higher", "more", "greater", "larger", "bigger", "maximum", "highest"}
var lowerWords = []string{"lower", "less", "smaller", "minimum", "lowest"}

var metadataPatterns = compilePatterns([]string{
	`how many columns`,
	`number of columns`,
	`what columns`,
	`which columns`,
	`list.*columns`,
	`column names`,
	`dataset shape`,
	`rows.*columns`,
	`dimensions`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// IsMetadataQuestion reports whether a question is answerable from the
// dataset profile alone, with no query at all.
func IsMetadataQuestion(question string) bool {
	lower := strings.ToLower(question)
	for _, p := range metadataPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// FormatMetadataAnswer answers shape and column questions straight
// from the profile.
func FormatMetadataAnswer(question string, profile *models.DatasetProfile) string {
	lower := strings.ToLower(question)
	names := profile.ColumnNames()

	if strings.Contains(lower, "column") {
		if strings.Contains(lower, "how many") || strings.Contains(lower, "number") {
			return fmt.Sprintf("This dataset has %d columns.", len(names))
		}
		if strings.Contains(lower, "what") || strings.Contains(lower, "which") || strings.Contains(lower, "list") {
			if len(names) <= 10 {
				return fmt.Sprintf("The columns in this dataset are: %s.", strings.Join(names, ", "))
			}
			return fmt.Sprintf("This dataset has %d columns. The first 10 are: %s, and %d more.",
				len(names), strings.Join(names[:10], ", "), len(names)-10)
		}
	}

	return fmt.Sprintf("This dataset has %s rows and %d columns.",
		groupThousands(profile.TotalRows), len(names))
}

// FormatResult renders a shaped result as a one or two sentence
// answer. It reads computed values verbatim and never derives new
// ones; the only transformations are presentation (percentage
// normalization, year formatting, thousands separators).
func FormatResult(result models.ShapedResult, query, question string) string {
	switch r := result.(type) {
	case *models.EmptyResult:
		return formatEmpty(r, question)
	case *models.ScalarResult:
		return formatScalar(r, query)
	case *models.RankingResult:
		if msg := formatComparative(result, question); msg != "" {
			return msg
		}
		return formatRanking(r)
	case *models.BreakdownResult:
		if msg := formatComparative(result, question); msg != "" {
			return msg
		}
		return formatBreakdown(r)
	case *models.TimeSeriesResult:
		return formatTimeSeries(r)
	case *models.TableResult:
		return formatTable(r)
	}
	return "Query executed successfully."
}

func formatEmpty(r *models.EmptyResult, question string) string {
	message := r.Message
	if message == "" {
		message = "No results found."
	}
	lower := strings.ToLower(question)
	if strings.Contains(lower, "where") || strings.Contains(lower, "with") {
		return "No records match the specified criteria. " + message
	}
	return message
}

func formatScalar(r *models.ScalarResult, query string) string {
	if pct := normalizePercentage(r.Value); pct != "" {
		return fmt.Sprintf("The result is %s.", pct)
	}

	agg := detectAggregation(r, query)
	value := formatValue(r.Value, strings.Contains(strings.ToLower(r.ColumnName), "year"))

	if agg != "" {
		word := aggregationLanguage[agg]
		if agg == "count" {
			return fmt.Sprintf("There are %s %s.", value, word)
		}
		if r.ColumnName != "" {
			return fmt.Sprintf("The %s %s is %s.", word, strings.ToLower(r.ColumnName), value)
		}
		return fmt.Sprintf("The %s is %s.", word, value)
	}
	return fmt.Sprintf("The result is %s.", value)
}

// detectAggregation prefers the classified aggregation, then query
// tokens, then the result column name.
func detectAggregation(r *models.ScalarResult, query string) string {
	if r.Aggregation != "" {
		return r.Aggregation
	}
	upper := strings.ToUpper(query)
	for _, token := range []struct{ keyword, agg string }{
		{"COUNT", "count"}, {"SUM", "sum"}, {"AVG", "avg"},
		{"AVERAGE", "avg"}, {"MIN", "min"}, {"MAX", "max"},
	} {
		if strings.Contains(upper, token.keyword) {
			return token.agg
		}
	}
	upperCol := strings.ToUpper(r.ColumnName)
	switch {
	case strings.Contains(upperCol, "COUNT"):
		return "count"
	case strings.Contains(upperCol, "SUM"), strings.Contains(upperCol, "TOTAL"):
		return "sum"
	case strings.Contains(upperCol, "AVG"), strings.Contains(upperCol, "AVERAGE"), strings.Contains(upperCol, "MEAN"):
		return "avg"
	case strings.Contains(upperCol, "MIN"):
		return "min"
	case strings.Contains(upperCol, "MAX"):
		return "max"
	}
	return ""
}

func formatRanking(r *models.RankingResult) string {
	if len(r.Data) == 0 {
		return "No ranking results found."
	}

	top := r.Data[0]
	var tied []string
	for _, item := range r.Data {
		if item.Value == top.Value {
			tied = append(tied, item.Group)
		}
	}
	if len(tied) > 1 {
		shown := tied
		suffix := ""
		if len(tied) > 3 {
			shown = tied[:3]
			suffix = fmt.Sprintf(", and %d more", len(tied)-3)
		}
		return fmt.Sprintf("Multiple items are tied for the top position (%s): %s%s.",
			formatFloat(top.Value), strings.Join(shown, ", "), suffix)
	}
	return fmt.Sprintf("The top result is %s with a value of %s.", top.Group, formatFloat(top.Value))
}

func formatBreakdown(r *models.BreakdownResult) string {
	if len(r.Data) == 0 {
		return "No breakdown results found."
	}
	if len(r.Data) == 1 {
		item := r.Data[0]
		return fmt.Sprintf("%s has a value of %s.", item.Group, formatFloat(item.Value))
	}

	top := r.Data[0]
	for _, item := range r.Data[1:] {
		if item.Value > top.Value {
			top = item
		}
	}
	return fmt.Sprintf("Results across %d groups. %s has the highest value: %s.",
		len(r.Data), top.Group, formatFloat(top.Value))
}

func formatTimeSeries(r *models.TimeSeriesResult) string {
	if len(r.Data) == 0 {
		return "No time series data found."
	}
	first := r.Data[0]
	last := r.Data[len(r.Data)-1]
	return fmt.Sprintf("Time series shows values from %s (%s) to %s (%s).",
		first.Time, formatFloat(first.Value), last.Time, formatFloat(last.Value))
}

func formatTable(r *models.TableResult) string {
	if len(r.Data) == 0 {
		return "No table results found."
	}
	if len(r.Data) == 1 {
		return fmt.Sprintf("Found 1 result: %v.", r.Data[0])
	}
	return fmt.Sprintf("Found %d results.", len(r.Data))
}

// formatComparative answers comparative questions over grouped
// results. Returns empty when the question is not comparative or the
// result has fewer than two groups.
func formatComparative(result models.ShapedResult, question string) string {
	lower := strings.ToLower(question)
	comparative := false
	for _, keyword := range comparativeKeywords {
		if strings.Contains(lower, keyword) {
			comparative = true
			break
		}
	}
	if !comparative {
		return ""
	}

	groups, values := groupedValues(result)
	if len(groups) < 2 {
		return ""
	}

	wantHigher := containsAny(lower, higherWords)
	wantLower := containsAny(lower, lowerWords)
	if !wantHigher && !wantLower {
		return ""
	}

	idx := 0
	direction := "higher"
	if wantHigher {
		for i, v := range values {
			if v > values[idx] {
				idx = i
			}
		}
	} else {
		direction = "lower"
		for i, v := range values {
			if v < values[idx] {
				idx = i
			}
		}
	}

	var tied []string
	for i, v := range values {
		if v == values[idx] {
			tied = append(tied, groups[i])
		}
	}
	if len(tied) > 1 {
		return fmt.Sprintf("Multiple groups are tied with the %s value (%s): %s.",
			direction, formatFloat(values[idx]), strings.Join(tied, ", "))
	}

	if len(groups) == 2 {
		other := 1 - idx
		return fmt.Sprintf("%s has a %s value (%s) than %s (%s).",
			groups[idx], direction, formatFloat(values[idx]),
			groups[other], formatFloat(values[other]))
	}
	return fmt.Sprintf("%s has the %s value: %s.", groups[idx], direction, formatFloat(values[idx]))
}

func groupedValues(result models.ShapedResult) ([]string, []float64) {
	switch r := result.(type) {
	case *models.RankingResult:
		groups := make([]string, len(r.Data))
		values := make([]float64, len(r.Data))
		for i, item := range r.Data {
			groups[i], values[i] = item.Group, item.Value
		}
		return groups, values
	case *models.BreakdownResult:
		groups := make([]string, len(r.Data))
		values := make([]float64, len(r.Data))
		for i, item := range r.Data {
			groups[i], values[i] = item.Group, item.Value
		}
		return groups, values
	}
	return nil, nil
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// normalizePercentage renders values in [0, 1] as percentages.
// Returns empty for anything else.
func normalizePercentage(value any) string {
	f, ok := toFloat64(value)
	if !ok {
		return ""
	}
	if f < 0 || f > 1 {
		return ""
	}
	return fmt.Sprintf("%.1f%%", f*100)
}

// formatValue renders a scalar for prose. Year-like values lose their
// decimals; counts get thousands separators.
func formatValue(value any, yearContext bool) string {
	f, ok := toFloat64(value)
	if !ok {
		return fmt.Sprintf("%v", value)
	}
	i := int64(f)
	if yearContext && f == float64(i) && i >= 1900 && i <= 2100 {
		return fmt.Sprintf("%d", i)
	}
	if f == float64(i) {
		return groupThousands(i)
	}
	return fmt.Sprintf("%.2f", f)
}

func formatFloat(f float64) string {
	if i := int64(f); f == float64(i) {
		if i >= 1900 && i <= 2100 {
			return fmt.Sprintf("%d", i)
		}
		return groupThousands(i)
	}
	return fmt.Sprintf("%.2f", f)
}

// groupThousands renders 1234567 as "1,234,567".
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
