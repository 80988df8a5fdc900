// Package semantics classifies questions before any SQL is generated.
// Structural questions run against raw column structure, semantic ones
// need a stored concept-to-column mapping, and subjective ones are
// refused outright. Never guess: a mapping is only requested when the
// concept is required to answer.
package semantics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the vocabulary used for question classification.
type Lexicon struct {
	// Structural concepts are answerable from data structure alone
	// (counts, time trends, min/max). They never need a mapping.
	Structural map[string][]string `yaml:"structural"`

	// Semantic concepts carry business meaning and need a stored
	// concept-to-column mapping before they can be queried.
	Semantic map[string][]string `yaml:"semantic"`

	// Subjective keywords mark questions that require human judgment
	// and are refused.
	Subjective []string `yaml:"subjective"`
}

// DefaultLexicon returns the built-in vocabulary.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Structural: map[string][]string{
			"quantity": {"quantity", "count", "number", "how many", "how much"},
			"duration": {"duration", "length", "runtime", "time", "how long"},
			"year":     {"year", "years"},
			"month":    {"month", "months"},
			"date":     {"date", "when", "day"},
			"time":     {"time", "timestamp"},
		},
		Semantic: map[string][]string{
			"rating":   {"rating", "rate", "score", "stars", "review score"},
			"country":  {"country", "nation", "countries"},
			"genre":    {"genre", "category", "type", "kind", "style"},
			"revenue":  {"revenue", "income", "earnings", "sales", "money"},
			"region":   {"region", "area", "location", "place"},
			"title":    {"title", "name", "movie", "film", "show"},
			"price":    {"price", "cost"},
			"status":   {"status", "state", "condition"},
			"customer": {"customer", "user", "client"},
			"product":  {"product", "item", "goods"},
		},
		Subjective: []string{
			"suitable", "appropriate", "mature", "safe", "unsafe",
			"good", "bad", "best", "worst", "high quality", "low quality",
			"recommended", "should", "must", "must not", "allowed", "forbidden",
		},
	}
}

// LoadLexicon reads a YAML lexicon from path, merged over the built-in
// defaults. An empty path returns the defaults unchanged. Only the
// sections present in the file replace their defaults, so an override
// can extend one vocabulary without restating the others.
func LoadLexicon(path string) (*Lexicon, error) {
	base := DefaultLexicon()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %s: %w", path, err)
	}

	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}

	if len(override.Structural) > 0 {
		base.Structural = override.Structural
	}
	if len(override.Semantic) > 0 {
		base.Semantic = override.Semantic
	}
	if len(override.Subjective) > 0 {
		base.Subjective = override.Subjective
	}
	return base, nil
}
