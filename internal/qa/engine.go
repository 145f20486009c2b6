// Package qa wires retrieval, prompting and the LLM backends into the
// single answer pipeline every entry point shares.
package qa

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/llm"
	"forex-kg-qa/internal/playbook"
	"forex-kg-qa/internal/prompt"
	"forex-kg-qa/internal/retrieval"
)

// Retriever produces context for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]retrieval.Result, error)
}

// ErrNoAnswer means no backend was usable and the playbook had nothing
// for the question either.
var ErrNoAnswer = errors.New("no llm backend available and no canned answer matched")

// Answer is one answered question with its provenance.
type Answer struct {
	SessionID string
	Question  string
	Text      string
	Provider  string
	Model     string
	Sources   []string
}

// Engine orchestrates one question end to end.
type Engine struct {
	Retriever Retriever
	Providers []llm.Provider
	Order     []string
	Playbook  *playbook.Playbook

	// ContextBudget caps the prompt context in bytes.
	ContextBudget int
	Temperature   float64
	Log           *logrus.Logger
}

// Ask retrieves context, prompts the first ready provider and falls
// back to the playbook when generation is impossible or fails.
func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	log := e.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	ans := &Answer{
		SessionID: uuid.NewString(),
		Question:  question,
	}

	var texts []string
	if e.Retriever != nil {
		results, err := e.Retriever.Retrieve(ctx, question)
		if err != nil {
			log.Warnf("retrieval failed, answering without context: %v", err)
		}
		for _, r := range results {
			ans.Sources = append(ans.Sources, r.ID)
			texts = append(texts, r.Text)
		}
	}

	provider, perr := llm.Select(e.Providers, e.Order)
	if perr == nil {
		req := llm.Request{
			System:      prompt.AnswerSystem,
			Prompt:      prompt.Answer(prompt.ContextBlock(texts, e.ContextBudget), question),
			Temperature: e.Temperature,
		}
		resp, err := provider.Complete(ctx, req)
		if err == nil {
			ans.Text = resp.Content
			ans.Provider = provider.Name()
			ans.Model = resp.Model
			return ans, nil
		}
		log.Warnf("provider %s failed, trying canned answers: %v", provider.Name(), err)
	} else {
		log.Warnf("no llm backend ready, trying canned answers")
	}

	if e.Playbook != nil {
		if entry, ok := e.Playbook.Match(question); ok {
			ans.Text = entry.Answer
			ans.Provider = "playbook"
			ans.Model = entry.Topic
			return ans, nil
		}
	}

	return nil, fmt.Errorf("answering %q: %w", question, ErrNoAnswer)
}
