// Package services wires the pipeline stages into user-facing
// operations: SQL generation, execution, answer formatting, and the
// single ask flow the chat handler calls.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
	"github.com/PranavZagade/Lumora/pkg/jsonutil"
	"github.com/PranavZagade/Lumora/pkg/llm"
	"github.com/PranavZagade/Lumora/pkg/logging"
	"github.com/PranavZagade/Lumora/pkg/models"
)

// The model generates SQL, never results. It sees column names and
// types only, never row values.
const generationSystemPrompt = `You are a SQL query generator for a data analysis system.

CRITICAL RULES:
1. You MUST output ONLY valid SQL (DuckDB compatible)
2. You MUST use ONLY the columns provided in the schema
3. You MUST output SELECT statements ONLY
4. You MUST NOT include:
   - DROP, INSERT, UPDATE, DELETE
   - Imports or file operations
   - Network access
   - Loops or arbitrary expressions
   - Subqueries beyond GROUP BY / ORDER BY
5. LIMIT must be <= 1000 unless user explicitly asks for more
6. If the question is ambiguous or cannot be answered with SQL, output: {"type": "clarification", "message": "..."}
7. You MUST use mapped columns when semantic mappings are provided - DO NOT substitute or guess
8. DO NOT use MIN() or MAX() on categorical/text columns unless explicitly ordered
9. If you cannot generate correct SQL, return clarification JSON instead of guessing

OUTPUT FORMAT:
- If you can generate SQL: Output ONLY the SQL query, nothing else
- If clarification needed: Output JSON: {"type": "clarification", "message": "..."}

EXAMPLES:

Question: "How many records are in this dataset?"
SQL: SELECT COUNT(*) as count FROM data;

Question: "Which year has the most records?"
SQL: SELECT EXTRACT(YEAR FROM date_column) as year, COUNT(*) as count FROM data GROUP BY year ORDER BY count DESC LIMIT 1;

Question: "Show top 5 categories by count"
SQL: SELECT category_column, COUNT(*) as count FROM data GROUP BY category_column ORDER BY count DESC LIMIT 5;

Question: "What is the average price?"
SQL: SELECT AVG(price_column) as average_price FROM data;

Remember: Output ONLY SQL or clarification JSON. No explanations, no markdown, no code blocks. If mappings are provided, you MUST use them.`

var leadingProsePattern = regexp.MustCompile(`(?is)^.*?(SELECT)`)

// GenerationRequest carries everything the generator may show the
// model.
type GenerationRequest struct {
	Question         string
	Profile          *models.DatasetProfile
	TableName        string
	SemanticMappings map[string]string
}

// GenerationResult is either a candidate SQL query or a clarification
// message, never both.
type GenerationResult struct {
	Query         string
	Clarification string
}

// NeedsClarification reports whether the generator asked the user to
// rephrase instead of producing SQL.
func (r GenerationResult) NeedsClarification() bool { return r.Clarification != "" }

// Generator turns questions into candidate SQL via the LLM.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator creates a generator over the given model client.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	return &Generator{client: client, logger: logger.Named("generator")}
}

type clarificationPayload struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

// Generate produces a candidate SQL query for the question, or a
// clarification request when the model cannot answer with SQL.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	tableName := req.TableName
	if tableName == "" {
		tableName = "data"
	}

	prompt, err := buildGenerationPrompt(req, tableName)
	if err != nil {
		return GenerationResult{}, apperrors.Wrap(apperrors.KindGenerationFailed, "building prompt", err)
	}

	content, err := g.client.GenerateResponse(ctx, prompt, generationSystemPrompt, llm.GenerateOptions{
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return GenerationResult{}, apperrors.Wrap(apperrors.KindGenerationFailed, "model call failed", err)
	}

	result := g.parseGeneration(content, tableName)
	if result.Query != "" {
		g.logger.Info("generated query",
			zap.String("query", logging.SanitizeQuery(result.Query)))
	}
	return result, nil
}

func buildGenerationPrompt(req GenerationRequest, tableName string) (string, error) {
	schema := make([]models.ColumnSchema, 0, len(req.Profile.Columns))
	for _, col := range req.Profile.Columns {
		schema = append(schema, col.Schema())
	}
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	var mappings strings.Builder
	if len(req.SemanticMappings) > 0 {
		mappings.WriteString("\nSemantic mappings (MUST USE THESE):\n")
		for concept, column := range req.SemanticMappings {
			fmt.Fprintf(&mappings, "- '%s' is represented by column '%s'\n", concept, column)
		}
		mappings.WriteString("\nCRITICAL: When the question mentions a mapped concept, you MUST use the mapped column. Do NOT use any other column.\n")
	}

	return fmt.Sprintf(`Question: %s

Dataset schema:
- Table name: %s
- Total rows: %d
- Columns:
%s
%s
Generate a SQL query to answer this question. Use ONLY the columns listed above.
Output ONLY the SQL query (or clarification JSON if needed).`,
		req.Question, tableName, req.Profile.TotalRows, schemaJSON, mappings.String()), nil
}

// parseGeneration interprets raw model output as clarification JSON or
// SQL text. Models wrap output in fences and prose despite
// instructions, so both are stripped before parsing.
func (g *Generator) parseGeneration(content, tableName string) GenerationResult {
	content = jsonutil.StripCodeFences(content)

	if obj := jsonutil.ExtractObject(content); obj != "" && strings.Contains(strings.ToLower(obj), "clarification") {
		var payload clarificationPayload
		if err := json.Unmarshal([]byte(obj), &payload); err == nil && payload.Type == "clarification" {
			message := jsonutil.FlexibleStringValue(payload.Message)
			if message == "" {
				message = "Please clarify your question."
			}
			return GenerationResult{Clarification: message}
		}
	}

	sql := leadingProsePattern.ReplaceAllString(content, "$1")
	// First statement only.
	if idx := strings.Index(sql, ";"); idx >= 0 {
		sql = sql[:idx]
	}
	sql = strings.TrimSpace(sql)

	if !strings.HasPrefix(strings.ToUpper(sql), "SELECT") {
		g.logger.Warn("model output was not a SELECT",
			zap.String("output", logging.TruncateString(content, 120)))
		return GenerationResult{Clarification: "I couldn't generate a valid query. Please rephrase your question."}
	}

	sql = strings.ReplaceAll(sql, "FROM data", "FROM "+tableName)
	sql = strings.ReplaceAll(sql, "from data", "from "+tableName)
	return GenerationResult{Query: sql}
}
