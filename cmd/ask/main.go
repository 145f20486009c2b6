// ask answers one question over the hybrid retrieval pipeline:
// vector similarity over the chunk embeddings, keyword lookup in the
// knowledge graph and LLM-generated Cypher, fused with RRF and
// re-ranked with MMR, then answered by the first ready LLM backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"forex-kg-qa/internal/chunkstore"
	"forex-kg-qa/internal/config"
	"forex-kg-qa/internal/embed"
	"forex-kg-qa/internal/graph"
	"forex-kg-qa/internal/llm"
	"forex-kg-qa/internal/playbook"
	"forex-kg-qa/internal/qa"
	"forex-kg-qa/internal/retrieval"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Error loading config: %v", err)
	}

	question := flag.String("q", "", "question to answer (falls back to positional args)")
	providerOverride := flag.String("provider", "", "force a single backend: ollama, gemini or azure")
	topK := flag.Int("topk", cfg.TopK, "context passages to retrieve")
	noCypher := flag.Bool("no-cypher", false, "disable LLM-generated Cypher retrieval")
	flag.Parse()

	q := *question
	if q == "" {
		q = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(q) == "" {
		log.Fatal("❌ No question given: use -q or positional arguments")
	}
	log.Infof("Question: %s", q)

	ctx := context.Background()
	hybrid := &retrieval.Hybrid{
		TopK:      *topK,
		RRFK:      cfg.RRFK,
		MMRLambda: cfg.MMRLambda,
		Log:       log,
	}

	// Vector search needs the chunk database and an embeddings
	// endpoint; missing pieces just narrow the retrieval.
	if cfg.ValidateEmbeddings() == nil {
		if store, err := chunkstore.Open(cfg.SQLitePath); err != nil {
			log.Warnf("🟨 Chunk database unavailable, skipping vector search: %v", err)
		} else {
			defer store.Close()
			hybrid.Embedder = embed.NewClient(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
			hybrid.Vector = &retrieval.VectorSearch{Store: store}
		}
	} else {
		log.Warn("🟨 No embeddings endpoint configured, skipping vector search")
	}

	if cfg.ValidateNeo4j() == nil {
		gdb, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			log.Warnf("🟨 Graph unavailable, skipping graph search: %v", err)
		} else {
			defer gdb.Close(ctx)
			log.Info("✅ Connection established")
			hybrid.Graph = &retrieval.GraphSearch{Store: gdb}

			if !*noCypher {
				if ai, model, ok := llm.ToolClient(cfg.AzureEndpoint, cfg.AzureAPIKey,
					cfg.AzureDeployment, cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL); ok {
					if model == "" {
						model = cfg.ExtractionModel
					}
					hybrid.Cypher = &retrieval.CypherSearch{AI: ai, Model: model, Store: gdb, Log: log}
				}
			}
		}
	} else {
		log.Warn("🟨 Neo4j not configured, skipping graph search")
	}

	book, err := loadPlaybook(cfg)
	if err != nil {
		log.Fatalf("❌ Error loading playbook: %v", err)
	}

	order := cfg.ProviderOrder
	if *providerOverride != "" {
		order = []string{*providerOverride}
	}

	engine := &qa.Engine{
		Retriever: hybrid,
		Providers: []llm.Provider{
			llm.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel),
			llm.NewGemini(cfg.GeminiAPIKey, "", cfg.GeminiModel),
			llm.NewAzure(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureDeployment),
		},
		Order:         order,
		Playbook:      book,
		ContextBudget: cfg.ContextBudget,
		Temperature:   0.2,
		Log:           log,
	}

	answer, err := engine.Ask(ctx, q)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	fmt.Println(answer.Text)
	log.Infof("✅ Answered by %s (%s), session %s", answer.Provider, answer.Model, answer.SessionID)
	if len(answer.Sources) > 0 {
		log.Infof("Sources: %s", strings.Join(answer.Sources, ", "))
	}
}

func loadPlaybook(cfg *config.Config) (*playbook.Playbook, error) {
	if cfg.PlaybookPath != "" {
		return playbook.Load(cfg.PlaybookPath)
	}
	return playbook.Default()
}
