package execution

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/spboyer/safegrade/internal/models"
	"github.com/stretchr/testify/require"
)

// fakeTransport satisfies policy.Transporter and captures the request.
type fakeTransport struct {
	lastReq    *http.Request
	lastBody   []byte
	statusCode int
	body       string
}

func (t *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	t.lastReq = req

	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		t.lastBody = data
	}

	return &http.Response{
		StatusCode: t.statusCode,
		Status:     http.StatusText(t.statusCode),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(t.body))),
		Request:    req,
	}, nil
}

func completionReq() *CompletionRequest {
	return &CompletionRequest{
		Messages: []models.Message{
			{Role: "system", Content: "You are an automotive safety assistant."},
			{Role: "user", Content: "Are there any recalls for a 2022 Honda Civic?"},
		},
		Timeout: 10 * time.Second,
	}
}

func TestAzureEngineComplete(t *testing.T) {
	transport := &fakeTransport{
		statusCode: http.StatusOK,
		body:       `{"model":"gpt-4o-mini","choices":[{"message":{"content":"Yes, there are 3 recalls."}}]}`,
	}

	engine, err := NewAzureEngine("https://example.openai.azure.com", "gpt-4o-mini", &AzureEngineOptions{
		APIKey:    "test-key",
		Transport: transport,
	})
	require.NoError(t, err)

	resp, err := engine.Complete(context.Background(), completionReq())
	require.NoError(t, err)
	require.Equal(t, "Yes, there are 3 recalls.", resp.Answer)
	require.Equal(t, "gpt-4o-mini", resp.ModelID)

	require.Equal(t, "test-key", transport.lastReq.Header.Get("api-key"))
	require.Contains(t, transport.lastReq.URL.Path, "/openai/deployments/gpt-4o-mini/chat/completions")
	require.Equal(t, azureAPIVersion, transport.lastReq.URL.Query().Get("api-version"))

	payload := string(transport.lastBody)
	require.Contains(t, payload, `"temperature":0`)
	require.Contains(t, payload, "2022 Honda Civic")
}

func TestAzureEngineHTTPError(t *testing.T) {
	transport := &fakeTransport{
		statusCode: http.StatusTooManyRequests,
		body:       `{"error":{"code":"429","message":"rate limited"}}`,
	}

	engine, err := NewAzureEngine("https://example.openai.azure.com", "gpt-4o-mini", &AzureEngineOptions{
		APIKey:    "test-key",
		Transport: transport,
	})
	require.NoError(t, err)

	_, err = engine.Complete(context.Background(), completionReq())
	require.Error(t, err)
}

func TestAzureEngineNoChoices(t *testing.T) {
	transport := &fakeTransport{
		statusCode: http.StatusOK,
		body:       `{"model":"gpt-4o-mini","choices":[]}`,
	}

	engine, err := NewAzureEngine("https://example.openai.azure.com", "gpt-4o-mini", &AzureEngineOptions{
		APIKey:    "test-key",
		Transport: transport,
	})
	require.NoError(t, err)

	_, err = engine.Complete(context.Background(), completionReq())
	require.ErrorContains(t, err, "no choices")
}

func TestAzureEngineValidation(t *testing.T) {
	t.Run("MissingEndpoint", func(t *testing.T) {
		_, err := NewAzureEngine("", "gpt-4o-mini", &AzureEngineOptions{APIKey: "k"})
		require.ErrorContains(t, err, "endpoint")
	})

	t.Run("MissingAuth", func(t *testing.T) {
		_, err := NewAzureEngine("https://example.openai.azure.com", "gpt-4o-mini", nil)
		require.ErrorContains(t, err, "APIKey or Credential")
	})

	t.Run("MissingTimeout", func(t *testing.T) {
		engine, err := NewAzureEngine("https://example.openai.azure.com", "gpt-4o-mini", &AzureEngineOptions{
			APIKey:    "k",
			Transport: &fakeTransport{statusCode: http.StatusOK, body: "{}"},
		})
		require.NoError(t, err)

		req := completionReq()
		req.Timeout = 0
		_, err = engine.Complete(context.Background(), req)
		require.ErrorContains(t, err, "Timeout")
	})
}
