package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/chunkstore"
	"forex-kg-qa/internal/prompt"
)

// GraphWriter is the slice of the graph layer the builder needs.
type GraphWriter interface {
	Schema(ctx context.Context) (string, error)
	Write(ctx context.Context, query string, params map[string]any) error
}

// GraphBuilder extracts entities and relationships from chunks by
// asking a tool-calling model for Cypher CREATE/MERGE statements and
// executing them against the graph.
type GraphBuilder struct {
	AI    *openai.Client
	Model string
	Store GraphWriter
	Log   *logrus.Logger
}

// Run feeds every chunk through extraction with a small worker pool.
// Worker failures are logged per chunk; the run continues.
func (b *GraphBuilder) Run(ctx context.Context, chunks []chunkstore.Chunk, workers int) {
	log := b.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if workers < 1 {
		workers = 1
	}

	chunkChan := make(chan chunkstore.Chunk, len(chunks))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunkChan {
				if err := b.BuildChunk(ctx, chunk); err != nil {
					log.Errorf("❌ chunk %d: %v", chunk.ID, err)
					continue
				}
				log.Infof("✅ Processed chunk %d", chunk.ID)
			}
		}()
	}

	for _, chunk := range chunks {
		chunkChan <- chunk
	}
	close(chunkChan)
	wg.Wait()
}

// BuildChunk extracts one chunk into the graph. The current schema is
// included in the prompt so new entities line up with existing labels.
func (b *GraphBuilder) BuildChunk(ctx context.Context, chunk chunkstore.Chunk) error {
	log := b.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	schema, err := b.Store.Schema(ctx)
	if err != nil {
		return fmt.Errorf("fetching schema: %w", err)
	}

	resp, err := b.AI.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.CypherSystem},
			{Role: openai.ChatMessageRoleUser, Content: prompt.ExtractGraph(schema, chunk.Text)},
		},
		Tools: []openai.Tool{prompt.CypherTool()},
	})
	if err != nil {
		return fmt.Errorf("extraction call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("extraction returned no choices")
	}

	for _, call := range resp.Choices[0].Message.ToolCalls {
		var args struct {
			Queries []string `json:"queries"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Errorf("parsing tool arguments: %w", err)
		}

		for _, query := range args.Queries {
			if err := b.Store.Write(ctx, query, nil); err != nil {
				// One malformed statement should not discard the
				// rest of the extraction.
				log.Errorf("❌ writing cypher for chunk %d: %v", chunk.ID, err)
			}
		}
	}
	return nil
}
