package llm

import "context"

// MockClient is a test double that replays canned responses in order.
type MockClient struct {
	ModelName string
	Responses []string
	Errs      []error
	Calls     []MockCall

	idx int
}

// MockCall records the arguments of one GenerateResponse invocation.
type MockCall struct {
	Prompt        string
	SystemMessage string
	Opts          GenerateOptions
}

// Model returns the mock model name.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// GenerateResponse returns the next canned response or error. The last
// entry repeats once the scripted values run out.
func (m *MockClient) GenerateResponse(_ context.Context, prompt, systemMessage string, opts GenerateOptions) (string, error) {
	m.Calls = append(m.Calls, MockCall{Prompt: prompt, SystemMessage: systemMessage, Opts: opts})

	i := m.idx
	m.idx++

	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if len(m.Responses) == 0 {
		return "", &Error{Type: ErrorTypeInvalidResponse, Message: "no scripted responses", ModelName: m.Model()}
	}
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}
