package semantics

import (
	"fmt"
	"sort"
)

// Resolution is the outcome of resolving a question's semantic
// dependencies against the stored mappings.
type Resolution struct {
	NeedsClarification bool
	MissingConcepts    []string
	Message            string
	MappedConcepts     map[string]string
}

const refusalMessage = "I cannot answer questions that require subjective judgment or policy decisions. Please ask about specific, measurable data instead."

// Resolve checks whether the question can proceed to SQL generation.
// Subjective questions are refused. Structural questions pass with no
// mappings. Semantic questions pass when every required concept has a
// mapping; otherwise the first missing concept is requested, one at a
// time.
func (c *Classifier) Resolve(question string, existingMappings map[string]string) Resolution {
	switch c.Classify(question) {
	case KindSubjective:
		return Resolution{
			NeedsClarification: true,
			Message:            refusalMessage,
		}
	case KindStructural:
		return Resolution{MappedConcepts: map[string]string{}}
	}

	var required, missing []string
	for _, concept := range c.DetectConcepts(question) {
		if !c.ConceptRequired(question, concept) {
			continue
		}
		required = append(required, concept)
		if _, ok := existingMappings[concept]; !ok {
			missing = append(missing, concept)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		first := missing[0]
		return Resolution{
			NeedsClarification: true,
			MissingConcepts:    []string{first},
			Message: fmt.Sprintf("To answer this question, I need to know which column represents '%s'. Please select the column from your dataset.",
				first),
		}
	}

	mapped := make(map[string]string, len(required))
	for _, concept := range required {
		mapped[concept] = existingMappings[concept]
	}
	return Resolution{MappedConcepts: mapped}
}
