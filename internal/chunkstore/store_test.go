package chunkstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestChunkRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.InsertChunk(ctx, "guide.md", "first chunk", 0))
	require.NoError(t, store.InsertChunk(ctx, "guide.md", "second chunk", 1))

	chunks, err := store.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "guide.md", chunks[0].Title)
	assert.Equal(t, "first chunk", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "second chunk", chunks[1].Text)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestChunkByID(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.InsertChunk(ctx, "faq.md", "leverage explained", 0))

	chunks, err := store.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	got, err := store.ChunkByID(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "leverage explained", got.Text)

	_, err = store.ChunkByID(ctx, 9999)
	assert.Error(t, err)
}

func TestEmbeddingRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.InsertChunk(ctx, "faq.md", "text", 0))
	chunks, err := store.Chunks(ctx)
	require.NoError(t, err)

	vector := []float64{0.25, -0.5, 1.0}
	require.NoError(t, store.InsertEmbedding(ctx, chunks[0].ID, vector))

	embeddings, err := store.Embeddings(ctx)
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, chunks[0].ID, embeddings[0].ChunkID)
	assert.Equal(t, vector, embeddings[0].Vector)
}

func TestReplaceClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.InsertChunk(ctx, "faq.md", "text", 0))
	chunks, err := store.Chunks(ctx)
	require.NoError(t, err)
	require.NoError(t, store.InsertEmbedding(ctx, chunks[0].ID, []float64{1}))

	require.NoError(t, store.Replace(ctx))

	chunks, err = store.Chunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	embeddings, err := store.Embeddings(ctx)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}
