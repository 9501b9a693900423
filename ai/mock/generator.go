package mock

import (
	"context"
	"strings"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default echo behavior.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// ModelName is reported by Model. Defaults to "mock-model".
	ModelName string

	callCount   int
	lastPrompt  string
	seenPrompts []string
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{ModelName: "mock-model"}
}

// Generate records the prompt and produces a deterministic answer.
// Default behavior: when the prompt carries a context section, the answer
// quotes it, so grounding assertions can check that retrieved passages
// actually reached the model.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	m.seenPrompts = append(m.seenPrompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	if start := strings.Index(prompt, "<context>"); start >= 0 {
		end := strings.Index(prompt, "</context>")
		if end > start {
			contextBody := strings.TrimSpace(prompt[start+len("<context>") : end])
			if contextBody == "" {
				return "I cannot find this information in the documents.", nil
			}
			return "Based on the documents: " + contextBody, nil
		}
	}
	return "Answer to: " + prompt, nil
}

// Model returns the configured mock model name.
func (m *MockGenerator) Model() string {
	return m.ModelName
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastPrompt returns the most recent prompt passed to Generate.
func (m *MockGenerator) LastPrompt() string {
	return m.lastPrompt
}

// Prompts returns every prompt passed to Generate, in call order.
func (m *MockGenerator) Prompts() []string {
	return m.seenPrompts
}

// Reset clears recorded calls and custom functions.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastPrompt = ""
	m.seenPrompts = nil
	m.GenerateFunc = nil
}
