package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec []float64
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vec, f.err
}

type fakeVectorSearcher struct {
	results []Result
	err     error
}

func (f *fakeVectorSearcher) Search(ctx context.Context, query []float64, topK int) ([]Result, error) {
	return f.results, f.err
}

type fakeGraphSearcher struct {
	results []Result
	err     error
}

func (f *fakeGraphSearcher) Search(ctx context.Context, question string, topK int) ([]Result, error) {
	return f.results, f.err
}

func TestHybridFusesBothSources(t *testing.T) {
	h := &Hybrid{
		Embedder: &fakeEmbedder{vec: []float64{1, 0}},
		Vector: &fakeVectorSearcher{results: []Result{
			{ID: "chunk-1", Text: "margin rules", Embedding: []float64{1, 0}},
			{ID: "chunk-2", Text: "other", Embedding: []float64{0, 1}},
		}},
		Graph: &fakeGraphSearcher{results: []Result{
			{ID: "chunk-1", Text: "margin rules"},
			{ID: "entity-margin", Text: "Entity: Margin"},
		}},
		TopK: 3,
	}

	results, err := h.Retrieve(context.Background(), "margin?")
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Fused by RRF: the doc ranked by both sources comes out first.
	assert.Equal(t, "chunk-1", results[0].ID)
}

func TestHybridDegradesWhenVectorFails(t *testing.T) {
	h := &Hybrid{
		Embedder: &fakeEmbedder{err: errors.New("embeddings down")},
		Vector:   &fakeVectorSearcher{},
		Graph: &fakeGraphSearcher{results: []Result{
			{ID: "entity-margin", Text: "Entity: Margin"},
		}},
	}

	results, err := h.Retrieve(context.Background(), "margin?")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "entity-margin", results[0].ID)
}

func TestHybridAllSourcesFailed(t *testing.T) {
	h := &Hybrid{
		Embedder: &fakeEmbedder{vec: []float64{1}},
		Vector:   &fakeVectorSearcher{err: errors.New("sqlite gone")},
		Graph:    &fakeGraphSearcher{err: errors.New("neo4j gone")},
	}

	_, err := h.Retrieve(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retrieval sources failed")
}

func TestHybridNoSourcesConfigured(t *testing.T) {
	h := &Hybrid{}

	results, err := h.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}
