package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRouter(t *testing.T, clients ...Client) (*Router, *CooldownRegistry) {
	t.Helper()
	reg := NewCooldownRegistry(time.Minute)
	router, err := NewRouter(clients, reg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return router, reg
}

func TestNewRouter_RequiresClients(t *testing.T) {
	reg := NewCooldownRegistry(time.Minute)
	_, err := NewRouter(nil, reg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestRouter_PrimarySucceeds(t *testing.T) {
	primary := &MockClient{ModelName: "gpt-4o", Responses: []string{"answer"}}
	fallback := &MockClient{ModelName: "claude-3-5-haiku-latest", Responses: []string{"unused"}}
	router, _ := newTestRouter(t, primary, fallback)

	text, err := router.GenerateResponse(context.Background(), "hi", "", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Len(t, primary.Calls, 1)
	assert.Empty(t, fallback.Calls)
}

func TestRouter_FallsBackOnTransientError(t *testing.T) {
	primary := &MockClient{
		ModelName: "gpt-4o",
		Errs:      []error{&Error{Type: ErrorTypeRateLimited, Retryable: true, ModelName: "gpt-4o"}},
	}
	fallback := &MockClient{ModelName: "claude-3-5-haiku-latest", Responses: []string{"from fallback"}}
	router, reg := newTestRouter(t, primary, fallback)

	text, err := router.GenerateResponse(context.Background(), "hi", "", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	assert.True(t, reg.OnCooldown("gpt-4o"))

	// The cooled-down primary is skipped on the next request.
	text, err = router.GenerateResponse(context.Background(), "again", "", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	assert.Len(t, primary.Calls, 1)
}

func TestRouter_NonTransientErrorStopsChain(t *testing.T) {
	authErr := &Error{Type: ErrorTypeAuth, Message: "bad key", ModelName: "gpt-4o"}
	primary := &MockClient{ModelName: "gpt-4o", Errs: []error{authErr}}
	fallback := &MockClient{ModelName: "claude-3-5-haiku-latest", Responses: []string{"unused"}}
	router, reg := newTestRouter(t, primary, fallback)

	_, err := router.GenerateResponse(context.Background(), "hi", "", GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, authErr, err)
	assert.Empty(t, fallback.Calls)
	assert.False(t, reg.OnCooldown("gpt-4o"))
}

func TestRouter_AllOnCooldownForcesPrimary(t *testing.T) {
	primary := &MockClient{ModelName: "gpt-4o", Responses: []string{"forced"}}
	fallback := &MockClient{ModelName: "claude-3-5-haiku-latest"}
	router, reg := newTestRouter(t, primary, fallback)
	reg.Mark("gpt-4o")
	reg.Mark("claude-3-5-haiku-latest")

	text, err := router.GenerateResponse(context.Background(), "hi", "", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "forced", text)
}

func TestRouter_AllModelsExhausted(t *testing.T) {
	primary := &MockClient{
		ModelName: "gpt-4o",
		Errs:      []error{&Error{Type: ErrorTypeRateLimited, Retryable: true}},
	}
	fallback := &MockClient{
		ModelName: "claude-3-5-haiku-latest",
		Errs:      []error{&Error{Type: ErrorTypeUnavailable, Retryable: true}},
	}
	router, _ := newTestRouter(t, primary, fallback)

	_, err := router.GenerateResponse(context.Background(), "hi", "", GenerateOptions{})
	require.Error(t, err)

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorTypeUnavailable, llmErr.Type)
	assert.Equal(t, "all models exhausted", llmErr.Message)
}
