package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Router fans a request across a priority-ordered list of model
// clients. Models that fail with a transient error (rate limit,
// outage) are put on cooldown and skipped on subsequent requests until
// the cooldown lapses. Non-transient errors stop the fallback chain,
// since a prompt that fails validation on one model will fail on all
// of them.
type Router struct {
	clients   []Client
	cooldowns *CooldownRegistry
	logger    *zap.Logger
}

// NewRouter creates a router over clients in priority order.
func NewRouter(clients []Client, cooldowns *CooldownRegistry, logger *zap.Logger) (*Router, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("at least one client is required")
	}
	return &Router{
		clients:   clients,
		cooldowns: cooldowns,
		logger:    logger.Named("llm_router"),
	}, nil
}

// Model returns the primary model name.
func (r *Router) Model() string { return r.clients[0].Model() }

// GenerateResponse tries each model in priority order, skipping models
// on cooldown. If every model is cooling down, the primary model is
// tried anyway rather than failing without a single attempt.
func (r *Router) GenerateResponse(ctx context.Context, prompt, systemMessage string, opts GenerateOptions) (string, error) {
	var lastErr error
	attempted := false

	for _, client := range r.clients {
		model := client.Model()
		if r.cooldowns.OnCooldown(model) {
			r.logger.Debug("skipping model on cooldown",
				zap.String("model", model),
				zap.Duration("remaining", r.cooldowns.Remaining(model)))
			continue
		}

		attempted = true
		text, err := client.GenerateResponse(ctx, prompt, systemMessage, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsTemporary(err) {
			return "", err
		}

		r.cooldowns.Mark(model)
		r.logger.Warn("model unavailable, trying fallback",
			zap.String("model", model),
			zap.Error(err))
	}

	if !attempted {
		r.logger.Warn("all models on cooldown, forcing primary",
			zap.String("model", r.Model()))
		return r.clients[0].GenerateResponse(ctx, prompt, systemMessage, opts)
	}

	return "", &Error{
		Type:    ErrorTypeUnavailable,
		Message: "all models exhausted",
		Cause:   lastErr,
	}
}

var _ Client = (*Router)(nil)
