// build-graph feeds every stored chunk through LLM entity extraction
// and writes the generated Cypher into Neo4j.
package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/chunkstore"
	"forex-kg-qa/internal/config"
	"forex-kg-qa/internal/graph"
	"forex-kg-qa/internal/ingest"
	"forex-kg-qa/internal/llm"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Error loading config: %v", err)
	}

	dbPath := flag.String("db", cfg.SQLitePath, "path to the chunk database")
	workers := flag.Int("workers", 1, "number of extraction workers")
	flag.Parse()

	if err := cfg.ValidateNeo4j(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()

	gdb, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		log.Fatalf("❌ Error connecting to graph db: %v", err)
	}
	defer gdb.Close(ctx)
	log.Info("✅ Connection established")

	store, err := chunkstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("❌ Error opening chunk database: %v", err)
	}
	defer store.Close()

	chunks, err := store.Chunks(ctx)
	if err != nil {
		log.Fatalf("❌ Error loading chunks: %v", err)
	}
	log.Infof("✅ Queried the DB: %d chunks", len(chunks))

	ai, model, ok := llm.ToolClient(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureDeployment,
		cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL)
	if !ok {
		log.Fatal("❌ Graph extraction needs Azure OpenAI or an OpenAI-compatible endpoint")
	}
	if model == "" {
		model = cfg.ExtractionModel
	}

	builder := &ingest.GraphBuilder{AI: ai, Model: model, Store: gdb, Log: log}
	builder.Run(ctx, chunks, *workers)

	log.Info("✅ All chunks processed")
}
