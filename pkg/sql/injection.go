package sql

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionHit describes an injection pattern detected inside a string
// literal of a candidate query.
type InjectionHit struct {
	Literal     string // The literal that failed the check
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckLiteralsForInjection runs libinjection over every single-quoted
// string literal in the query. Literals are the only place a candidate
// SELECT can smuggle attacker-controlled text (the question's free-form
// words end up there), so they get the stricter check while the rest of
// the statement is covered by keyword screening.
//
// Returns nil when all literals are clean.
func CheckLiteralsForInjection(query string) *InjectionHit {
	for _, literal := range extractStringLiterals(query) {
		isSQLi, fingerprint := libinjection.IsSQLi(literal)
		if isSQLi {
			return &InjectionHit{Literal: literal, Fingerprint: string(fingerprint)}
		}
	}
	return nil
}

// extractStringLiterals returns the contents of single-quoted literals,
// honoring SQL standard doubled-quote escapes.
func extractStringLiterals(query string) []string {
	var literals []string
	var current strings.Builder
	inString := false

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if !inString {
			if ch == '\'' {
				inString = true
				current.Reset()
			}
			continue
		}
		if ch == '\'' {
			// Doubled quote is an escaped quote inside the literal.
			if i+1 < len(runes) && runes[i+1] == '\'' {
				current.WriteRune('\'')
				i++
				continue
			}
			inString = false
			if current.Len() > 0 {
				literals = append(literals, current.String())
			}
			continue
		}
		current.WriteRune(ch)
	}

	return literals
}
