package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiDefaults(t *testing.T) {
	g := NewGemini("key", "", "")
	assert.Equal(t, defaultGeminiURL, g.baseURL)
	assert.Equal(t, defaultGeminiModel, g.model)
	assert.Equal(t, "gemini", g.Name())
}

func TestGeminiReady(t *testing.T) {
	assert.True(t, NewGemini("key", "", "").Ready())
	assert.False(t, NewGemini("", "", "").Ready())
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "what is a spread", req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "assistant persona", req.SystemInstruction.Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates":[{"content":{"parts":[{"text":"The spread is "},{"text":"the bid-ask difference."}],"role":"model"},"finishReason":"STOP"}],
			"usageMetadata":{"totalTokenCount":21}
		}`))
	}))
	defer srv.Close()

	g := NewGemini("test-key", srv.URL+"/v1beta/models/%s:generateContent", "gemini-2.0-flash")
	resp, err := g.Complete(context.Background(), Request{
		System:      "assistant persona",
		Prompt:      "what is a spread",
		Temperature: 0.2,
	})
	require.NoError(t, err)

	assert.Equal(t, "The spread is the bid-ask difference.", resp.Content)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
	assert.Equal(t, 21, resp.TokensUsed)
}

func TestGeminiCompleteNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := NewGemini("test-key", srv.URL+"/v1beta/models/%s:generateContent", "gemini-2.0-flash")
	_, err := g.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiCompleteClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad api key", http.StatusBadRequest)
	}))
	defer srv.Close()

	g := NewGemini("wrong", srv.URL+"/v1beta/models/%s:generateContent", "gemini-2.0-flash")
	_, err := g.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}
