package retrieval

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/prompt"
)

// CypherStore is the slice of the graph layer Cypher retrieval needs.
type CypherStore interface {
	Schema(ctx context.Context) (string, error)
	RunQuery(ctx context.Context, query string) (string, error)
}

// CypherSearch asks a tool-calling model to write Cypher for the
// question given the live graph schema, runs the returned queries
// read-only and renders the records as context.
type CypherSearch struct {
	AI    *openai.Client
	Model string
	Store CypherStore
	Log   *logrus.Logger
}

func (c *CypherSearch) Search(ctx context.Context, question string, topK int) ([]Result, error) {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	schema, err := c.Store.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching graph schema: %w", err)
	}

	resp, err := c.AI.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.CypherSystem},
			{Role: openai.ChatMessageRoleUser, Content: prompt.CypherQuery(schema, question)},
		},
		Tools: []openai.Tool{prompt.CypherTool()},
	})
	if err != nil {
		return nil, fmt.Errorf("generating cypher: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("cypher generation returned no choices")
	}

	var results []Result
	for _, call := range resp.Choices[0].Message.ToolCalls {
		var args struct {
			Queries []string `json:"queries"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			log.Warnf("parsing cypher tool arguments: %v", err)
			continue
		}

		for _, query := range args.Queries {
			out, err := c.Store.RunQuery(ctx, query)
			if err != nil {
				// Generated Cypher is best-effort; a bad query
				// should not sink the whole retrieval.
				log.Warnf("running generated cypher: %v", err)
				continue
			}
			if out == "" || out == "null" {
				continue
			}
			results = append(results, Result{
				ID:     fmt.Sprintf("cypher-%d", len(results)+1),
				Source: "cypher",
				Text:   out,
				Score:  1.0 / float64(len(results)+1),
			})
			if topK > 0 && len(results) >= topK {
				return results, nil
			}
		}
	}
	return results, nil
}
