package execution

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/spboyer/safegrade/internal/models"
)

const (
	azureAPIVersion = "2024-10-01-preview"

	// Answers are short factual statements; a small completion budget
	// keeps evaluation runs cheap.
	azureMaxTokens = 500

	cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"
)

// AzureEngine talks to an Azure OpenAI chat-completions deployment.
type AzureEngine struct {
	endpoint   string
	deployment string
	pipeline   runtime.Pipeline
}

// AzureEngineOptions configures an AzureEngine.
type AzureEngineOptions struct {
	// APIKey authenticates with an api-key header. When empty,
	// Credential is used instead.
	APIKey string

	// Credential is a token credential for Entra ID auth.
	Credential azcore.TokenCredential

	// Transport overrides the HTTP transport, for tests.
	Transport policy.Transporter
}

// NewAzureEngine creates an engine for one deployment. The deployment
// name doubles as the model ID in outcomes.
func NewAzureEngine(endpoint, deployment string, options *AzureEngineOptions) (*AzureEngine, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if deployment == "" {
		return nil, fmt.Errorf("deployment is required")
	}

	if options == nil {
		options = &AzureEngineOptions{}
	}

	var auth policy.Policy

	switch {
	case options.APIKey != "":
		auth = &apiKeyPolicy{key: options.APIKey}
	case options.Credential != nil:
		auth = runtime.NewBearerTokenPolicy(options.Credential, []string{cognitiveServicesScope}, nil)
	default:
		return nil, fmt.Errorf("either APIKey or Credential is required")
	}

	clientOptions := &policy.ClientOptions{}
	if options.Transport != nil {
		clientOptions.Transport = options.Transport
	}

	pl := runtime.NewPipeline("safegrade", "0.1.0", runtime.PipelineOptions{
		PerRetry: []policy.Policy{auth},
	}, clientOptions)

	return &AzureEngine{
		endpoint:   endpoint,
		deployment: deployment,
		pipeline:   pl,
	}, nil
}

// NewAzureEngineFromEnv builds an engine from AZURE_OPENAI_ENDPOINT
// and AZURE_OPENAI_KEY, falling back to the default Azure credential
// chain when no key is set.
func NewAzureEngineFromEnv(deployment string) (*AzureEngine, error) {
	endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT is not set")
	}

	if key := os.Getenv("AZURE_OPENAI_KEY"); key != "" {
		return NewAzureEngine(endpoint, deployment, &AzureEngineOptions{APIKey: key})
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("AZURE_OPENAI_KEY is not set and default credential failed: %w", err)
	}

	return NewAzureEngine(endpoint, deployment, &AzureEngineOptions{Credential: cred})
}

func (e *AzureEngine) Initialize(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

type azureChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type azureChatRequest struct {
	Messages    []azureChatMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type azureChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the conversation to the deployment and returns the
// first choice's content.
func (e *AzureEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to AzureEngine.Complete")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	deployment := e.deployment
	if req.ModelID != "" {
		deployment = req.ModelID
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		e.endpoint, url.PathEscape(deployment), azureAPIVersion)

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	start := time.Now()

	httpReq, err := runtime.NewRequest(ctx, http.MethodPost, endpoint)
	if err != nil {
		return nil, err
	}

	body := azureChatRequest{
		Messages:    toAzureMessages(req.Messages),
		Temperature: 0,
		MaxTokens:   azureMaxTokens,
	}

	if err := runtime.MarshalAsJSON(httpReq, body); err != nil {
		return nil, err
	}

	resp, err := e.pipeline.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return nil, runtime.NewResponseError(resp)
	}

	var chat azureChatResponse
	if err := runtime.UnmarshalAsJSON(resp, &chat); err != nil {
		return nil, fmt.Errorf("decoding chat completion: %w", err)
	}

	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return &CompletionResponse{
		Answer:     chat.Choices[0].Message.Content,
		ModelID:    deployment,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (e *AzureEngine) Shutdown(ctx context.Context) error {
	return nil
}

func toAzureMessages(messages []models.Message) []azureChatMessage {
	out := make([]azureChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, azureChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// apiKeyPolicy adds the api-key header Azure OpenAI accepts instead
// of a bearer token.
type apiKeyPolicy struct {
	key string
}

func (p *apiKeyPolicy) Do(req *policy.Request) (*http.Response, error) {
	req.Raw().Header.Set("api-key", p.key)
	return req.Next()
}
