package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/jsonutil"
	"github.com/PranavZagade/Lumora/pkg/llm"
	"github.com/PranavZagade/Lumora/pkg/models"
)

// The model phrases results, never computes them. Results arrive
// final; any deviation from them is a formatting bug, which is why the
// deterministic formatter backs every AI call.
const answerSystemPrompt = `You are a response formatter for a data analysis system.

YOUR ROLE: Format computed results into natural language. You are NOT an analyst.

CRITICAL RULES:
1. You receive a question and a COMPUTED result (already correct)
2. You must format the result ONLY - do NOT compute anything
3. You must NOT infer new facts or add explanations beyond the result
4. You must NOT mention SQL, tables, queries, or technical details
5. You must NOT change the meaning of the result

FORMATTING RULES:
- Clean numeric values: round to 1-2 decimals, remove unnecessary precision
- Use aggregation-aware language:
  * COUNT → "records"
  * AVG → "average"
  * MIN → "minimum"
  * MAX → "maximum"
  * SUM → "total"
  * RATIO → "percentage" (multiply 0-1 values by 100 and add %)
- Respect question intent:
  * Comparative questions → answer comparatively
  * Yes/no questions → answer yes/no explicitly
  * Ranking questions → present ranking clearly
- Human tone: clear, concise, 1-2 sentences, no technical jargon

FORBIDDEN:
- Do NOT recompute values
- Do NOT infer missing context
- Do NOT add explanations beyond the result
- Do NOT use phrases like "based on analysis" or "according to the data"
- Do NOT mention SQL, tables, or queries

OUTPUT FORMAT:
Output ONLY the formatted response text. No explanations, no markdown, no code blocks.
Be direct and human-readable.`

// AnswerFormatter phrases computed results with the LLM, falling back
// to the deterministic formatter on any failure.
type AnswerFormatter struct {
	client llm.Client
	logger *zap.Logger
}

// NewAnswerFormatter creates an answer formatter. A nil client
// disables AI phrasing entirely.
func NewAnswerFormatter(client llm.Client, logger *zap.Logger) *AnswerFormatter {
	return &AnswerFormatter{client: client, logger: logger.Named("answer")}
}

// Format renders the result as a natural language answer. AI phrasing
// is best effort: the deterministic formatter answers whenever the
// model is unavailable, errors, or returns nothing.
func (f *AnswerFormatter) Format(ctx context.Context, question, query string, result models.ShapedResult) string {
	fallback := FormatResult(result, query, question)
	if f.client == nil {
		return fallback
	}

	payload, err := models.MarshalResult(result)
	if err != nil {
		f.logger.Warn("could not encode result for phrasing", zap.Error(err))
		return fallback
	}
	prompt := "Question: " + question + "\n\nComputed Result:\n" + string(payload) +
		"\n\nFormat this result into a clear, human-readable response. Use ONLY the provided result. Do NOT compute or infer anything."

	text, err := f.client.GenerateResponse(ctx, prompt, answerSystemPrompt, llm.GenerateOptions{
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil {
		f.logger.Warn("AI phrasing failed, using deterministic answer", zap.Error(err))
		return fallback
	}

	text = jsonutil.StripCodeFences(text)
	if text == "" {
		return fallback
	}
	return text
}
