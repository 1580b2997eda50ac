package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateTextFunc is called by GenerateText if set.
	// If nil, uses default canned behavior.
	GenerateTextFunc func(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateText returns a canned answer identifying the model, or delegates
// to the injected function if one is set.
func (m *MockGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error) {
	m.callCount++

	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, systemPrompt, userPrompt, model, maxTokens)
	}

	// Default: deterministic canned answer
	return fmt.Sprintf("mock answer from %s", model), nil
}

// CallCount returns the number of times GenerateText was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateTextFunc = nil
}
