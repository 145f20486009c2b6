package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzureUnconfigured(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		apiKey     string
		deployment string
	}{
		{name: "missing everything"},
		{name: "missing key", endpoint: "https://example.openai.azure.com", deployment: "gpt-4o-mini"},
		{name: "missing deployment", endpoint: "https://example.openai.azure.com", apiKey: "k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAzure(tt.endpoint, tt.apiKey, tt.deployment)
			assert.False(t, a.Ready())

			_, err := a.Complete(context.Background(), Request{Prompt: "hi"})
			assert.Error(t, err)
		})
	}
}

func TestAzureComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "/openai/deployments/gpt-4o-mini/chat/completions"),
			"unexpected path %q", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-1",
			"object":"chat.completion",
			"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Margin is collateral."},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":9,"completion_tokens":4,"total_tokens":13}
		}`))
	}))
	defer srv.Close()

	a := NewAzure(srv.URL, "test-key", "gpt-4o-mini")
	require.True(t, a.Ready())
	assert.Equal(t, "azure", a.Name())

	resp, err := a.Complete(context.Background(), Request{
		System: "assistant persona",
		Prompt: "what is margin",
	})
	require.NoError(t, err)

	assert.Equal(t, "Margin is collateral.", resp.Content)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, 13, resp.TokensUsed)
}
