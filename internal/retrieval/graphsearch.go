package retrieval

import (
	"context"
	"fmt"
	"strings"

	"forex-kg-qa/internal/graph"
)

// GraphSearcher produces context results for a natural-language
// question.
type GraphSearcher interface {
	Search(ctx context.Context, question string, topK int) ([]Result, error)
}

// EntityStore is the slice of the graph layer keyword lookup needs.
type EntityStore interface {
	SearchEntities(ctx context.Context, term string, limit int) ([]graph.Entity, error)
	Neighborhood(ctx context.Context, id string, limit int) ([]graph.Triple, error)
}

// GraphSearch matches question terms against graph entities and
// renders each entity's neighborhood as context.
type GraphSearch struct {
	Store EntityStore
	// TripleLimit caps the relationships rendered per entity.
	TripleLimit int
}

func (g *GraphSearch) Search(ctx context.Context, question string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}
	tripleLimit := g.TripleLimit
	if tripleLimit <= 0 {
		tripleLimit = 25
	}

	seen := map[string]bool{}
	var results []Result

	for _, term := range Terms(question) {
		entities, err := g.Store.SearchEntities(ctx, term, topK)
		if err != nil {
			return nil, fmt.Errorf("graph lookup for term %q: %w", term, err)
		}

		for _, e := range entities {
			key := e.ID
			if key == "" {
				key = e.Name
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			triples, err := g.Store.Neighborhood(ctx, e.ID, tripleLimit)
			if err != nil {
				return nil, fmt.Errorf("expanding entity %q: %w", e.ID, err)
			}

			results = append(results, Result{
				ID:     "entity-" + key,
				Source: "graph",
				Text:   renderEntity(e, triples),
				Score:  1.0 / float64(len(results)+1),
			})
			if len(results) >= topK {
				return results, nil
			}
		}
	}
	return results, nil
}

func renderEntity(e graph.Entity, triples []graph.Triple) string {
	var b strings.Builder
	name := e.Name
	if name == "" {
		name = e.ID
	}
	b.WriteString("Entity: " + name)
	if len(e.Labels) > 0 {
		b.WriteString(" (" + strings.Join(e.Labels, ", ") + ")")
	}
	b.WriteString("\n")
	for _, t := range triples {
		b.WriteString(t.String() + "\n")
	}
	return b.String()
}

// stopwords are question scaffolding that would match half the graph.
var stopwords = map[string]bool{
	"a": true, "about": true, "an": true, "and": true, "are": true,
	"can": true, "do": true, "does": true, "for": true, "from": true,
	"how": true, "i": true, "in": true, "is": true, "it": true,
	"me": true, "my": true, "of": true, "on": true, "or": true,
	"tell": true, "that": true, "the": true, "this": true, "to": true,
	"what": true, "when": true, "where": true, "which": true,
	"who": true, "why": true, "with": true, "you": true, "your": true,
}

// Terms extracts the lookup terms from a question: lowercased,
// punctuation stripped, stopwords and short tokens dropped, order
// preserved, duplicates removed.
func Terms(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '-'
	})

	seen := map[string]bool{}
	var terms []string
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
