// split-chunks slices the documentation files into the chunk table,
// replacing whatever was there before.
package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/chunkstore"
	"forex-kg-qa/internal/config"
	"forex-kg-qa/internal/ingest"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Error loading config: %v", err)
	}

	docsDir := flag.String("docs", cfg.DocsDir, "directory of cleaned documentation files")
	dbPath := flag.String("db", cfg.SQLitePath, "path to the chunk database")
	pattern := flag.String("pattern", cfg.ChunkPattern, "regex that delimits chunks")
	flag.Parse()

	log.Info("🟨 Starting")
	ctx := context.Background()

	store, err := chunkstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("❌ Error opening chunk database: %v", err)
	}
	defer store.Close()

	if err := store.Replace(ctx); err != nil {
		log.Fatalf("❌ Error replacing tables: %v", err)
	}
	log.Info("✅ Tables replaced")

	total := 0
	for fileInfo := range ingest.Files(*docsDir, log) {
		log.Infof("📂 File: %q", fileInfo.Name)

		chunks, err := ingest.Chunks(fileInfo.Content, *pattern)
		if err != nil {
			log.Fatalf("❌ Error chunking %q: %v", fileInfo.Name, err)
		}
		for chunk := range chunks {
			log.Infof("> 🔄 [Chunk: %d]", chunk.Index)
			if err := store.InsertChunk(ctx, fileInfo.Name, chunk.Text, chunk.Index); err != nil {
				log.Fatalf("❌ Error inserting chunk: %v", err)
			}
			total++
		}
	}

	log.Infof("✅ Finished: %d chunks stored", total)
}
