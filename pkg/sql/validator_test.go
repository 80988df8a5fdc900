package sql

import (
	"strings"
	"testing"
)

var movieColumns = []string{"title", "genre", "rating", "release_year", "country"}

func TestValidate_AcceptsSafeQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "count star",
			query: "SELECT COUNT(*) as count FROM data",
		},
		{
			name:  "group by with order",
			query: "SELECT genre, COUNT(*) as count FROM data GROUP BY genre ORDER BY count DESC LIMIT 10",
		},
		{
			name:  "aggregate over column",
			query: "SELECT AVG(rating) as average_rating FROM data",
		},
		{
			name:  "trailing semicolon",
			query: "SELECT COUNT(*) FROM data;",
		},
		{
			name:  "string literal with semicolon",
			query: "SELECT COUNT(*) FROM data WHERE title = 'part one; part two'",
		},
		{
			name:  "escaped quote in literal",
			query: "SELECT COUNT(*) FROM data WHERE title = 'O''Brien'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(tt.query, movieColumns, "data", nil)
			if !outcome.IsValid {
				t.Errorf("Validate(%q) rejected: %s", tt.query, outcome.Error)
			}
		})
	}
}

func TestValidate_RejectsForbiddenOperations(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{
			name:    "drop table",
			query:   "DROP TABLE data",
			wantErr: "forbidden keyword: DROP",
		},
		{
			name:    "delete",
			query:   "DELETE FROM data",
			wantErr: "forbidden keyword: DELETE",
		},
		{
			name:    "insert",
			query:   "INSERT INTO data VALUES (1)",
			wantErr: "forbidden keyword: INSERT",
		},
		{
			name:    "update embedded in select",
			query:   "SELECT * FROM data; UPDATE data SET rating = 0",
			wantErr: "forbidden keyword: UPDATE",
		},
		{
			// The forbidden keyword must be named even when the query
			// is also a multi-statement violation.
			name:    "drop then select names the drop",
			query:   "DROP TABLE data; SELECT * FROM data",
			wantErr: "forbidden keyword: DROP",
		},
		{
			name:    "not a select",
			query:   "SHOW TABLES",
			wantErr: "must be a SELECT",
		},
		{
			name:    "exec call",
			query:   "SELECT EXEC('rm -rf /') FROM data",
			wantErr: "dangerous operation: EXEC",
		},
		{
			name:    "read file",
			query:   "SELECT READFILE('/etc/passwd') FROM data",
			wantErr: "dangerous operation: READ FILE",
		},
		{
			name:    "two selects",
			query:   "SELECT 1; SELECT 2",
			wantErr: "multiple SQL statements",
		},
		{
			name:    "limit over hard cap",
			query:   "SELECT title FROM data LIMIT 50000",
			wantErr: "LIMIT too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(tt.query, movieColumns, "data", nil)
			if outcome.IsValid {
				t.Fatalf("Validate(%q) accepted, want rejection containing %q", tt.query, tt.wantErr)
			}
			if !strings.Contains(outcome.Error, tt.wantErr) {
				t.Errorf("Validate(%q) error = %q, want containing %q", tt.query, outcome.Error, tt.wantErr)
			}
		})
	}
}

func TestValidate_ColumnsDoNotShadowKeywords(t *testing.T) {
	// A column named update_date must not trip the UPDATE keyword.
	outcome := Validate("SELECT update_date FROM data LIMIT 5", []string{"update_date"}, "data", nil)
	if !outcome.IsValid {
		t.Errorf("Validate rejected a query over update_date: %s", outcome.Error)
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantWarning string
	}{
		{
			name:        "large limit",
			query:       "SELECT title FROM data LIMIT 5000",
			wantWarning: "LIMIT is very large",
		},
		{
			name:        "no limit no aggregation",
			query:       "SELECT title FROM data",
			wantWarning: "no LIMIT",
		},
		{
			name:        "multiple from without join",
			query:       "SELECT title FROM data, (SELECT genre FROM data) LIMIT 5",
			wantWarning: "Cartesian",
		},
		{
			name:        "unknown table name",
			query:       "SELECT COUNT(*) FROM films",
			wantWarning: `table name "data" not found`,
		},
		{
			name:        "no known columns",
			query:       "SELECT budget FROM data LIMIT 5",
			wantWarning: "no known columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(tt.query, movieColumns, "data", nil)
			if !outcome.IsValid {
				t.Fatalf("Validate(%q) rejected: %s", tt.query, outcome.Error)
			}
			if !containsWarning(outcome.Warnings, tt.wantWarning) {
				t.Errorf("Validate(%q) warnings = %v, want containing %q", tt.query, outcome.Warnings, tt.wantWarning)
			}
		})
	}
}

func TestValidate_NullGroupingAdvisory(t *testing.T) {
	stats := map[string]ColumnStats{
		"country": {NullCount: 800, TotalRows: 1000},
		"genre":   {NullCount: 10, TotalRows: 1000},
	}

	outcome := Validate(
		"SELECT country, COUNT(*) as count FROM data GROUP BY country ORDER BY count DESC LIMIT 10",
		movieColumns, "data", stats)
	if !outcome.IsValid {
		t.Fatalf("query rejected: %s", outcome.Error)
	}
	if !containsWarning(outcome.Warnings, "80.0% NULL") {
		t.Errorf("warnings = %v, want null grouping advisory", outcome.Warnings)
	}

	outcome = Validate(
		"SELECT genre, COUNT(*) as count FROM data GROUP BY genre ORDER BY count DESC LIMIT 10",
		movieColumns, "data", stats)
	if !outcome.IsValid {
		t.Fatalf("query rejected: %s", outcome.Error)
	}
	if containsWarning(outcome.Warnings, "NULL values") {
		t.Errorf("warnings = %v, want no advisory for mostly-populated column", outcome.Warnings)
	}
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
