package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRFDocumentInBothListsWins(t *testing.T) {
	vector := []Result{
		{ID: "chunk-1", Text: "margin rules"},
		{ID: "chunk-2", Text: "leverage table"},
	}
	graph := []Result{
		{ID: "entity-margin", Text: "Entity: Margin"},
		{ID: "chunk-1", Text: "margin rules"},
	}

	fused := RRF([][]Result{vector, graph}, 60)
	require.Len(t, fused, 3)

	assert.Equal(t, "chunk-1", fused[0].ID)
	assert.InDelta(t, 1.0/61+1.0/62, fused[0].Score, 1e-9)
}

func TestRRFDefaultK(t *testing.T) {
	fused := RRF([][]Result{{{ID: "a"}}}, 0)
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61, fused[0].Score, 1e-9)
}

func TestRRFSkipsEmptyIDs(t *testing.T) {
	fused := RRF([][]Result{{{ID: ""}, {ID: "a"}}}, 60)
	require.Len(t, fused, 1)
	assert.Equal(t, "a", fused[0].ID)
}

func TestRRFTieBreaksDeterministically(t *testing.T) {
	lists := [][]Result{{{ID: "b"}}, {{ID: "a"}}}

	fused := RRF(lists, 60)
	require.Len(t, fused, 2)
	assert.Equal(t, "a", fused[0].ID)
	assert.Equal(t, "b", fused[1].ID)
}

func TestMMRPrefersDiverseResults(t *testing.T) {
	results := []Result{
		{ID: "a", Score: 1.0, Embedding: []float64{1, 0}},
		{ID: "a-dup", Score: 0.9, Embedding: []float64{1, 0}},
		{ID: "b", Score: 0.5, Embedding: []float64{0, 1}},
	}

	// Low lambda weighs redundancy heavily, so the duplicate of the
	// first pick loses to the orthogonal result.
	out := MMR(results, 0.3, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
}

func TestMMRKeepsTopFusedResultAcrossSources(t *testing.T) {
	// A graph result ranked first by two sources must not lose to a
	// vector chunk just because the chunk carries an embedding.
	results := []Result{
		{ID: "entity-margin", Source: "graph", Score: 1.0/61 + 1.0/62},
		{ID: "chunk-1", Source: "vector", Score: 1.0 / 62, Embedding: []float64{0.4, 0.9}},
	}

	out := MMR(results, 0.7, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "entity-margin", out[0].ID)
}

func TestMMRWithoutEmbeddingsKeepsRelevanceOrder(t *testing.T) {
	results := []Result{
		{ID: "first", Score: 0.9},
		{ID: "second", Score: 0.5},
		{ID: "third", Score: 0.1},
	}

	out := MMR(results, 0.7, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].ID)
	assert.Equal(t, "second", out[1].ID)
	assert.Equal(t, "third", out[2].ID)
}

func TestMMRCapsAtK(t *testing.T) {
	results := []Result{{ID: "a", Score: 1}, {ID: "b", Score: 0.5}}

	out := MMR(results, 0.7, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
}

func TestMMRLambdaOutOfRangeFallsBack(t *testing.T) {
	results := []Result{{ID: "a", Score: 1}, {ID: "b", Score: 0.5}}

	out := MMR(results, 7.5, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
}
