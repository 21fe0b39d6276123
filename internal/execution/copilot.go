package execution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/spboyer/safegrade/internal/models"
)

// CopilotEngine answers corpus questions through the GitHub Copilot
// SDK. Each completion runs in its own session.
type CopilotEngine struct {
	defaultModelID string

	client copilotClient

	startOnce sync.Once
}

// CopilotEngineOptions allows substituting the SDK client, for tests.
type CopilotEngineOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotEngine creates a Copilot-backed engine.
//   - defaultModelID - used if no model ID is specified in the request. Can be
//     blank, which means the copilot CLI will choose its own fallback model.
func NewCopilotEngine(defaultModelID string, options *CopilotEngineOptions) *CopilotEngine {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient

	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotClient(copilotOptions)
	} else {
		client = options.NewCopilotClient(copilotOptions)
	}

	return &CopilotEngine{
		defaultModelID: defaultModelID,
		client:         client,
	}
}

func (e *CopilotEngine) Initialize(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Complete sends the conversation as a single prompt and returns the
// assistant's reply.
func (e *CopilotEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotEngine.Complete")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	var startErr error

	e.startOnce.Do(func() {
		// NOTE: the copilot client has an 'autostart' feature, but it runs into
		// issues when it tries to autostart from separate goroutines.
		startErr = e.client.Start(ctx)
	})

	if startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", startErr)
	}

	modelID := e.defaultModelID
	if req.ModelID != "" {
		modelID = req.ModelID
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	start := time.Now()

	session, err := e.client.CreateSession(ctx, &copilot.SessionConfig{
		Model: modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var mu sync.Mutex
	var parts []string

	unsubscribe := session.On(func(evt copilot.SessionEvent) {
		if evt.Type == copilot.AssistantMessage && evt.Data.Content != nil {
			mu.Lock()
			parts = append(parts, *evt.Data.Content)
			mu.Unlock()
		}
	})
	defer unsubscribe()

	_, err = session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: flattenConversation(req.Messages),
	})
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}

	mu.Lock()
	answer := strings.Join(parts, "\n")
	mu.Unlock()

	return &CompletionResponse{
		Answer:     answer,
		ModelID:    modelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (e *CopilotEngine) Shutdown(ctx context.Context) error {
	if err := e.client.Stop(); err != nil {
		slog.Info("failed to stop copilot client", "error", err)
	}
	return nil
}

// flattenConversation folds system instructions and the user question
// into one prompt, since sessions take a single prompt string.
func flattenConversation(messages []models.Message) string {
	var parts []string
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}
