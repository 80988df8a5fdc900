package sql

import (
	"regexp"
	"strings"
)

var (
	selectClausePattern = regexp.MustCompile(`(?s)SELECT\s+(.*?)\s+FROM`)

	// Each clause is captured up to the next structural keyword.
	clausePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)\bWHERE\s+(.*?)(?:\s+GROUP\s+BY\b|\s+ORDER\s+BY\b|\s+HAVING\b|\s+LIMIT\b|$)`),
		regexp.MustCompile(`(?s)\bGROUP\s+BY\s+(.*?)(?:\s+ORDER\s+BY\b|\s+HAVING\b|\s+LIMIT\b|$)`),
		regexp.MustCompile(`(?s)\bORDER\s+BY\s+(.*?)(?:\s+LIMIT\b|$)`),
		regexp.MustCompile(`(?s)\bHAVING\s+(.*?)(?:\s+ORDER\s+BY\b|\s+LIMIT\b|$)`),
	}
)

// ExtractColumnRefs finds allowed columns referenced in the SELECT,
// WHERE, GROUP BY, ORDER BY, and HAVING clauses of an upper-cased
// query, using whole-word matching.
//
// This is deliberately conservative token matching, not parsing: a
// column it misses costs a warning upstream, never a rejection.
func ExtractColumnRefs(upperQuery string, allowedColumns []string) []string {
	seen := make(map[string]bool)

	var clauses []string
	if m := selectClausePattern.FindStringSubmatch(upperQuery); m != nil {
		clauses = append(clauses, m[1])
	}
	for _, p := range clausePatterns {
		if m := p.FindStringSubmatch(upperQuery); m != nil {
			clauses = append(clauses, m[1])
		}
	}

	var refs []string
	for _, col := range allowedColumns {
		if seen[col] {
			continue
		}
		upperCol := strings.ToUpper(col)
		for _, clause := range clauses {
			if wholeWordMatch(clause, upperCol) {
				refs = append(refs, col)
				seen[col] = true
				break
			}
		}
	}
	return refs
}

// wholeWordMatch reports whether word occurs in s bounded by
// non-identifier characters. Quoting the word keeps column names with
// regex metacharacters from breaking the pattern.
func wholeWordMatch(s, word string) bool {
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return pattern.MatchString(s)
}
