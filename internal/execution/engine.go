package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/spboyer/safegrade/internal/models"
)

// ModelEngine is the interface for obtaining model answers to corpus
// questions.
type ModelEngine interface {
	// Initialize sets up the engine
	Initialize(ctx context.Context) error

	// Complete sends a conversation and returns the model's answer
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Shutdown cleans up resources
	Shutdown(ctx context.Context) error
}

// CompletionRequest carries one corpus conversation to an engine.
type CompletionRequest struct {
	ModelID  string
	Messages []models.Message
	Timeout  time.Duration
}

// CompletionResponse is the engine's answer.
type CompletionResponse struct {
	Answer     string
	ModelID    string
	DurationMs int64
}

// New builds an engine by type name.
func New(engineType, modelID string) (ModelEngine, error) {
	switch engineType {
	case "azure":
		return NewAzureEngineFromEnv(modelID)
	case "copilot":
		return NewCopilotEngine(modelID, nil), nil
	case "mock":
		return NewMockEngine(modelID), nil
	default:
		return nil, fmt.Errorf("unknown engine type %q", engineType)
	}
}

func (r *CompletionRequest) validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("positive Timeout is required")
	}
	return nil
}
