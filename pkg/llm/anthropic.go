package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// AnthropicConfig holds configuration for creating an Anthropic client.
type AnthropicConfig struct {
	Model  string
	APIKey string
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
func NewAnthropicClient(cfg AnthropicConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string { return c.model }

// GenerateResponse generates a response via the Messages API. The
// system message goes in the dedicated system field rather than the
// message list.
func (c *AnthropicClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, opts GenerateOptions) (string, error) {
	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("temperature", opts.Temperature))

	start := time.Now()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	temperature := float32(opts.Temperature)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", c.classify(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return "", &Error{Type: ErrorTypeInvalidResponse, Message: "no text content in response", ModelName: c.model}
	}

	c.logger.Info("LLM request completed",
		zap.String("model", c.model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

func (c *AnthropicClient) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Cause: err, ModelName: c.model}
	}

	// The API reports a typed error body for application-level
	// failures and a bare status for transport-level ones.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "rate_limit_error"):
		return &Error{Type: ErrorTypeRateLimited, Message: "rate limited", Retryable: true, Cause: err, ModelName: c.model}
	case strings.Contains(msg, "overloaded_error"), strings.Contains(msg, "api_error"):
		return &Error{Type: ErrorTypeUnavailable, Message: "service unavailable", Retryable: true, Cause: err, ModelName: c.model}
	case strings.Contains(msg, "authentication_error"), strings.Contains(msg, "permission_error"):
		return &Error{Type: ErrorTypeAuth, Message: "authentication failed", Cause: err, ModelName: c.model}
	}

	return &Error{Type: ErrorTypeUnknown, Message: "request failed", Cause: err, ModelName: c.model}
}
