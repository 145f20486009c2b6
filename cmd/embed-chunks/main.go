// embed-chunks computes an embedding for every stored chunk with a
// small worker pool and persists the vectors next to the chunks.
package main

import (
	"context"
	"flag"
	"sync"

	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/chunkstore"
	"forex-kg-qa/internal/config"
	"forex-kg-qa/internal/embed"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Error loading config: %v", err)
	}

	dbPath := flag.String("db", cfg.SQLitePath, "path to the chunk database")
	workers := flag.Int("workers", cfg.Workers, "number of embedding workers")
	flag.Parse()

	if err := cfg.ValidateEmbeddings(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()

	store, err := chunkstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("❌ Error opening chunk database: %v", err)
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		log.Fatalf("❌ Error creating tables: %v", err)
	}

	chunks, err := store.Chunks(ctx)
	if err != nil {
		log.Fatalf("❌ Error loading chunks: %v", err)
	}
	log.Infof("✅ Queried the DB: %d chunks", len(chunks))

	client := embed.NewClient(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)

	chunkChan := make(chan chunkstore.Chunk, len(chunks))
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunkChan {
				vec, err := client.Embed(ctx, chunk.Text)
				if err != nil {
					log.Errorf("❌ Embedding chunk %d: %v", chunk.ID, err)
					continue
				}
				if err := store.InsertEmbedding(ctx, chunk.ID, vec); err != nil {
					log.Errorf("❌ Storing embedding for chunk %d: %v", chunk.ID, err)
					continue
				}
				log.Infof("> ✅ Processed chunk %d", chunk.ID)
			}
		}()
	}

	for _, chunk := range chunks {
		chunkChan <- chunk
	}
	close(chunkChan)
	wg.Wait()

	log.Info("✅ All chunks processed and embeddings stored")
}
