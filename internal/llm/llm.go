// Package llm abstracts the answer-generation backends: a local
// Ollama server (DeepSeek distills), Google Gemini and Azure OpenAI.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Request is a single completion request. System and Prompt are kept
// separate because the backends disagree on how to carry them.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response is a completed generation.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
}

// Provider is one LLM backend.
type Provider interface {
	// Name identifies the provider in config and logs.
	Name() string
	// Ready reports whether the provider is configured and worth
	// trying. For local servers this includes a reachability probe.
	Ready() bool
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ErrNoProvider means nothing in the configured order was usable.
var ErrNoProvider = errors.New("no configured llm provider available")

// Select returns the first Ready provider in the configured order.
// Unknown names in the order are skipped.
func Select(providers []Provider, order []string) (Provider, error) {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[strings.ToLower(p.Name())] = p
	}
	for _, name := range order {
		p, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if ok && p.Ready() {
			return p, nil
		}
	}
	return nil, ErrNoProvider
}
