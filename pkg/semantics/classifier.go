package semantics

import (
	"regexp"
	"sort"
	"strings"
)

// QuestionKind is the outcome of question classification.
type QuestionKind string

const (
	KindStructural QuestionKind = "structural"
	KindSemantic   QuestionKind = "semantic"
	KindSubjective QuestionKind = "subjective"
)

// Patterns that mark a question as answerable from structure alone.
var structuralPatterns = compileAll([]string{
	`how many`,
	`number of`,
	`count`,
	`which.*has.*most`,
	`which.*has.*highest.*number`,
	`which.*has.*lowest.*number`,
	`how.*changed.*over.*time`,
	`trend.*over.*time`,
	`\bmin\b.*\bmax\b`,
	`\bmax\b.*\bmin\b`,
	`highest.*lowest`,
	`lowest.*highest`,
	`what is the (minimum|maximum|min|max)`,
	`what is the (average|mean|sum|total|avg)`,
	`minimum value`,
	`maximum value`,
	`min value`,
	`max value`,
})

var structuralValuePattern = regexp.MustCompile(`\b(min|max|minimum|maximum|average|mean|sum|total|avg)\s+(value|values)`)

var datasetWords = []string{"record", "row", "dataset", "data"}

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// Classifier classifies questions against a lexicon.
type Classifier struct {
	lexicon *Lexicon
}

// NewClassifier creates a classifier over the given lexicon. A nil
// lexicon uses the built-in defaults.
func NewClassifier(lexicon *Lexicon) *Classifier {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Classifier{lexicon: lexicon}
}

// Classify determines whether a question is structural, semantic, or
// subjective. Subjective keywords win over everything; structural
// patterns win over semantic concepts; the default is structural.
func (c *Classifier) Classify(question string) QuestionKind {
	lower := strings.ToLower(question)

	for _, keyword := range c.lexicon.Subjective {
		if wordMatch(lower, keyword) {
			return KindSubjective
		}
	}

	structural := false
	for _, p := range structuralPatterns {
		if p.MatchString(lower) {
			structural = true
			break
		}
	}
	for _, word := range datasetWords {
		if strings.Contains(lower, word) {
			structural = true
			break
		}
	}
	if structuralValuePattern.MatchString(lower) {
		structural = true
	}

	semantic := len(c.DetectConcepts(question)) > 0

	if structural && !semantic {
		return KindStructural
	}
	if semantic {
		return KindSemantic
	}
	return KindStructural
}

// DetectConcepts returns the semantic concepts mentioned in the
// question, sorted for deterministic output. Structural concepts are
// never reported.
func (c *Classifier) DetectConcepts(question string) []string {
	lower := strings.ToLower(question)
	var detected []string
	for concept, keywords := range c.lexicon.Semantic {
		for _, keyword := range keywords {
			if wordMatch(lower, keyword) {
				detected = append(detected, concept)
				break
			}
		}
	}
	sort.Strings(detected)
	return detected
}

// ConceptRequired reports whether a detected concept is actually
// needed to answer the question, as opposed to mentioned in passing.
// Grouping ("which X", "by X"), filtering ("where X", "X is"), and
// aggregation ("average X") contexts all make a concept required.
func (c *Classifier) ConceptRequired(question, concept string) bool {
	lower := strings.ToLower(question)
	for _, keyword := range c.lexicon.Semantic[concept] {
		if !wordMatch(lower, keyword) {
			continue
		}
		quoted := regexp.QuoteMeta(keyword)
		contexts := []string{
			`\bwhich\s+` + quoted,
			`\bby\s+` + quoted,
			`\b` + quoted + `\s+(of|for|in)`,
			`\b(where|with|having)\s+` + quoted,
			`\b` + quoted + `\s+(is|has|equals|contains)`,
			`\b(avg|average|sum|total|mean|min|max|median)\s+(of\s+)?` + quoted,
			`\bwhat\s+is\s+the\s+(avg|average|sum|total|mean|min|max)\s+` + quoted,
		}
		for _, ctx := range contexts {
			if regexp.MustCompile(ctx).MatchString(lower) {
				return true
			}
		}
		if regexp.MustCompile(`\bthe\s+` + quoted + `\b`).MatchString(lower) {
			for _, agg := range []string{"average", "avg", "sum", "total", "mean", "min", "max"} {
				if strings.Contains(lower, agg) {
					return true
				}
			}
		}
	}
	return false
}

func wordMatch(text, keyword string) bool {
	pattern := `\b` + regexp.QuoteMeta(strings.ToLower(keyword)) + `\b`
	return regexp.MustCompile(pattern).MatchString(text)
}
