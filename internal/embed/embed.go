// Package embed computes and compares text embeddings through an
// OpenAI-compatible embeddings endpoint.
package embed

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder is the minimal surface the retrieval pipeline needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Client calls the embeddings API. A non-empty base URL points it at a
// local OpenAI-compatible server instead of the hosted API.
type Client struct {
	ai    *openai.Client
	model openai.EmbeddingModel
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		ai:    openai.NewClientWithConfig(cfg),
		model: openai.EmbeddingModel(model),
	}
}

func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.ai.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings response contained no data")
	}

	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}
	return vec, nil
}

// Cosine returns the cosine similarity of two vectors. Either vector
// having zero magnitude yields 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	dot := 0.0
	magA := 0.0
	magB := 0.0
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}
