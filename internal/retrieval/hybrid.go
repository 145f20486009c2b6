package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/embed"
)

// Hybrid runs every configured retrieval source, fuses the ranked
// lists with RRF and re-ranks the fusion with MMR. Sources are
// optional; a failing source degrades the answer instead of killing
// it, matching how the scripts this replaces behaved.
type Hybrid struct {
	Embedder embed.Embedder
	Vector   VectorSearcher
	Graph    GraphSearcher
	Cypher   GraphSearcher

	TopK      int
	RRFK      int
	MMRLambda float64
	Log       *logrus.Logger
}

// Retrieve returns the fused, re-ranked context for a question.
// It errors only when every configured source failed.
func (h *Hybrid) Retrieve(ctx context.Context, question string) ([]Result, error) {
	log := h.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	topK := h.TopK
	if topK <= 0 {
		topK = 5
	}
	lambda := h.MMRLambda
	if lambda <= 0 {
		lambda = 0.7
	}

	var (
		lists    [][]Result
		failures []error
	)

	if h.Embedder != nil && h.Vector != nil {
		vec, err := h.Embedder.Embed(ctx, question)
		if err != nil {
			log.Warnf("embedding question failed, skipping vector search: %v", err)
			failures = append(failures, err)
		} else {
			if res, err := h.Vector.Search(ctx, vec, topK); err != nil {
				log.Warnf("vector search failed: %v", err)
				failures = append(failures, err)
			} else if len(res) > 0 {
				lists = append(lists, res)
			}
		}
	}

	if h.Graph != nil {
		if res, err := h.Graph.Search(ctx, question, topK); err != nil {
			log.Warnf("graph search failed: %v", err)
			failures = append(failures, err)
		} else if len(res) > 0 {
			lists = append(lists, res)
		}
	}

	if h.Cypher != nil {
		if res, err := h.Cypher.Search(ctx, question, topK); err != nil {
			log.Warnf("cypher search failed: %v", err)
			failures = append(failures, err)
		} else if len(res) > 0 {
			lists = append(lists, res)
		}
	}

	if len(lists) == 0 {
		if len(failures) > 0 {
			return nil, fmt.Errorf("all retrieval sources failed: %w", errors.Join(failures...))
		}
		return nil, nil
	}

	fused := RRF(lists, h.RRFK)
	return MMR(fused, lambda, topK), nil
}
