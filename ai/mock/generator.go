package mock

import (
	"context"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields, or a fixed
// sequence of canned responses consumed one per call.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, canned Responses are returned in order.
	GenerateFunc func(ctx context.Context, systemPrompt, userMessage string) (string, error)

	// Responses are returned in order when GenerateFunc is nil.
	// After the sequence is exhausted the last response repeats.
	Responses []string

	mu        sync.Mutex
	calls     []GeneratorCall
	callCount int
}

// GeneratorCall records the prompts of one Generate invocation.
type GeneratorCall struct {
	SystemPrompt string
	UserMessage  string
}

// NewMockGenerator creates a mock generator.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{Responses: responses}
}

// Generate returns the next canned response, or delegates to GenerateFunc.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.calls = append(m.calls, GeneratorCall{SystemPrompt: systemPrompt, UserMessage: userMessage})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemPrompt, userMessage)
	}

	if len(m.Responses) == 0 {
		return "", nil
	}
	idx := n - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns the recorded prompts of every Generate invocation.
func (m *MockGenerator) Calls() []GeneratorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GeneratorCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls and custom functions.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.calls = nil
	m.GenerateFunc = nil
	m.Responses = nil
}
