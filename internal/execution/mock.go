package execution

import (
	"context"
	"fmt"
	"time"
)

// MockEngine is a simple canned-answer engine for dry runs and tests.
type MockEngine struct {
	modelID string

	// Respond maps the user's question to an answer. When nil, a
	// generic echo response is returned.
	Respond func(question string) string
}

// NewMockEngine creates a new mock engine
func NewMockEngine(modelID string) *MockEngine {
	if modelID == "" {
		modelID = "mock"
	}
	return &MockEngine{modelID: modelID}
}

func (m *MockEngine) Initialize(ctx context.Context) error {
	return nil
}

func (m *MockEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to MockEngine.Complete")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	question := req.Messages[len(req.Messages)-1].Content

	answer := fmt.Sprintf("Mock response for: %s", question)
	if m.Respond != nil {
		answer = m.Respond(question)
	}

	return &CompletionResponse{
		Answer:     answer,
		ModelID:    m.modelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (m *MockEngine) Shutdown(ctx context.Context) error {
	return nil
}
