package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
	"github.com/PranavZagade/Lumora/pkg/llm"
	"github.com/PranavZagade/Lumora/pkg/models"
)

func testProfile() *models.DatasetProfile {
	return &models.DatasetProfile{
		DatasetID: "abc123",
		Filename:  "movies.csv",
		TotalRows: 100,
		Columns: []models.ColumnProfile{
			{Name: "title", Dtype: models.SemanticText},
			{Name: "genre", Dtype: models.SemanticCategorical},
			{Name: "rating", Dtype: models.SemanticNumeric},
		},
	}
}

func generateWith(t *testing.T, response string, req GenerationRequest) (GenerationResult, *llm.MockClient) {
	t.Helper()
	mock := &llm.MockClient{Responses: []string{response}}
	gen := NewGenerator(mock, zaptest.NewLogger(t))
	result, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	return result, mock
}

func TestGenerate_PlainSQL(t *testing.T) {
	result, mock := generateWith(t, "SELECT COUNT(*) as count FROM data;", GenerationRequest{
		Question: "How many movies are there?",
		Profile:  testProfile(),
	})
	assert.False(t, result.NeedsClarification())
	assert.Equal(t, "SELECT COUNT(*) as count FROM data", result.Query)

	require.Len(t, mock.Calls, 1)
	call := mock.Calls[0]
	assert.Contains(t, call.Prompt, "How many movies are there?")
	assert.Contains(t, call.Prompt, `"rating"`)
	assert.InDelta(t, 0.1, call.Opts.Temperature, 0.001)
	assert.Equal(t, 500, call.Opts.MaxTokens)
}

func TestGenerate_FencedSQL(t *testing.T) {
	result, _ := generateWith(t, "```sql\nSELECT AVG(rating) FROM data;\n```", GenerationRequest{
		Question: "Average rating?",
		Profile:  testProfile(),
	})
	assert.Equal(t, "SELECT AVG(rating) FROM data", result.Query)
}

func TestGenerate_LeadingProseStripped(t *testing.T) {
	result, _ := generateWith(t, "Sure, here is the query:\nSELECT COUNT(*) FROM data;", GenerationRequest{
		Question: "How many?",
		Profile:  testProfile(),
	})
	assert.Equal(t, "SELECT COUNT(*) FROM data", result.Query)
}

func TestGenerate_FirstStatementOnly(t *testing.T) {
	result, _ := generateWith(t, "SELECT COUNT(*) FROM data; SELECT 1", GenerationRequest{
		Question: "How many?",
		Profile:  testProfile(),
	})
	assert.Equal(t, "SELECT COUNT(*) FROM data", result.Query)
}

func TestGenerate_ClarificationJSON(t *testing.T) {
	result, _ := generateWith(t, `{"type": "clarification", "message": "Which column holds the rating?"}`, GenerationRequest{
		Question: "What is the score?",
		Profile:  testProfile(),
	})
	assert.True(t, result.NeedsClarification())
	assert.Equal(t, "Which column holds the rating?", result.Clarification)
	assert.Empty(t, result.Query)
}

func TestGenerate_ClarificationWithNumericMessage(t *testing.T) {
	result, _ := generateWith(t, `{"type": "clarification", "message": 42}`, GenerationRequest{
		Question: "What?",
		Profile:  testProfile(),
	})
	assert.True(t, result.NeedsClarification())
	assert.Equal(t, "42", result.Clarification)
}

func TestGenerate_NonSelectBecomesClarification(t *testing.T) {
	result, _ := generateWith(t, "DROP TABLE data", GenerationRequest{
		Question: "Delete everything",
		Profile:  testProfile(),
	})
	assert.True(t, result.NeedsClarification())
	assert.Contains(t, result.Clarification, "rephrase")
}

func TestGenerate_TableNameSubstitution(t *testing.T) {
	result, _ := generateWith(t, "SELECT COUNT(*) FROM data", GenerationRequest{
		Question:  "How many?",
		Profile:   testProfile(),
		TableName: "movies",
	})
	assert.Equal(t, "SELECT COUNT(*) FROM movies", result.Query)
}

func TestGenerate_MappingsInPrompt(t *testing.T) {
	_, mock := generateWith(t, "SELECT AVG(imdb_score) FROM data", GenerationRequest{
		Question:         "Average rating?",
		Profile:          testProfile(),
		SemanticMappings: map[string]string{"rating": "imdb_score"},
	})
	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].Prompt, "'rating' is represented by column 'imdb_score'")
}

func TestGenerate_ModelErrorWrapped(t *testing.T) {
	mock := &llm.MockClient{Errs: []error{&llm.Error{Type: llm.ErrorTypeUnavailable, Message: "down"}}}
	gen := NewGenerator(mock, zaptest.NewLogger(t))

	_, err := gen.Generate(context.Background(), GenerationRequest{
		Question: "How many?",
		Profile:  testProfile(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGenerationFailed))
}
