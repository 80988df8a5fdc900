// Package llm provides the language model clients used for SQL
// generation and answer phrasing, with model-priority fallback and
// rate-limit cooldowns.
//
// The model never computes or sees raw data; everything in this package
// carries prompts out and text back.
package llm

import "context"

// Client is the interface for a single-model chat completion client.
// Use it for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion for the prompt.
	GenerateResponse(ctx context.Context, prompt, systemMessage string, opts GenerateOptions) (string, error)

	// Model returns the configured model name.
	Model() string
}

// GenerateOptions tune a single completion request.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Compile-time interface checks.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
