package retrieval

import (
	"context"
	"fmt"
	"sort"

	"forex-kg-qa/internal/chunkstore"
	"forex-kg-qa/internal/embed"
)

// VectorSearcher produces chunk results for an embedded query.
type VectorSearcher interface {
	Search(ctx context.Context, query []float64, topK int) ([]Result, error)
}

// VectorSearch scores every stored chunk embedding against the query
// by cosine similarity. The corpus is a documentation set, small
// enough that a full scan beats maintaining an index.
type VectorSearch struct {
	Store *chunkstore.Store
}

func (v *VectorSearch) Search(ctx context.Context, query []float64, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}

	embeddings, err := v.Store.Embeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}
	chunks, err := v.Store.Chunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	texts := make(map[int]chunkstore.Chunk, len(chunks))
	for _, c := range chunks {
		texts[c.ID] = c
	}

	results := make([]Result, 0, len(embeddings))
	for _, e := range embeddings {
		chunk, ok := texts[e.ChunkID]
		if !ok {
			continue
		}
		results = append(results, Result{
			ID:        fmt.Sprintf("chunk-%d", e.ChunkID),
			Source:    "vector",
			Text:      chunk.Text,
			Score:     embed.Cosine(query, e.Vector),
			Embedding: e.Vector,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].ID < results[j].ID
		}
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
