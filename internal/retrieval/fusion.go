// Package retrieval pulls question context from the chunk embeddings
// and the knowledge graph, then fuses and re-ranks the result lists.
package retrieval

import (
	"math"
	"sort"

	"forex-kg-qa/internal/embed"
)

// Result is one retrieved piece of context. Embedding is optional;
// graph results usually do not carry one.
type Result struct {
	ID        string
	Source    string
	Text      string
	Score     float64
	Embedding []float64
}

// RRF combines ranked lists with reciprocal rank fusion. Documents
// ranked by several sources accumulate score across lists. k defaults
// to the conventional 60.
func RRF(lists [][]Result, k int) []Result {
	if k <= 0 {
		k = 60
	}

	type agg struct {
		res   Result
		score float64
	}
	scores := map[string]*agg{}

	for _, list := range lists {
		for idx, r := range list {
			if r.ID == "" {
				continue
			}
			a, ok := scores[r.ID]
			if !ok {
				a = &agg{res: r}
				scores[r.ID] = a
			}
			a.score += 1.0 / (float64(k) + float64(idx+1))
		}
	}

	out := make([]Result, 0, len(scores))
	for _, a := range scores {
		r := a.res
		r.Score = a.score
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	return out
}

// MMR re-ranks results by maximal marginal relevance: the fused score
// balanced against similarity to what is already selected. Relevance
// stays on the fusion scale for every result, so graph results compete
// with vector chunks on equal footing; embeddings only feed the
// redundancy penalty. Results without embeddings keep their fused
// order.
func MMR(results []Result, lambda float64, k int) []Result {
	if k <= 0 || k > len(results) {
		k = len(results)
	}
	if lambda < 0 || lambda > 1 {
		lambda = 0.7
	}

	maxScore := 0.0
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	remaining := append([]Result(nil), results...)
	selected := make([]Result, 0, k)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			rel := cand.Score
			if maxScore > 0 {
				rel /= maxScore
			}

			redundancy := 0.0
			if cand.Embedding != nil {
				for _, s := range selected {
					if s.Embedding == nil {
						continue
					}
					if sim := embed.Cosine(cand.Embedding, s.Embedding); sim > redundancy {
						redundancy = sim
					}
				}
			}

			score := lambda*rel - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}
