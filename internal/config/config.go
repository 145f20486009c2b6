// Package config loads every setting the pipeline commands share from
// the environment. A .env file is honoured when present, the real
// environment always wins. Credentials are never defaulted.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds connection details for Neo4j and the chunk database,
// the embedding endpoint, per-provider LLM settings and the retrieval
// knobs used by the ask pipeline.
type Config struct {
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	SQLitePath   string
	DocsDir      string
	ChunkPattern string

	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string

	OllamaBaseURL string
	OllamaModel   string

	GeminiAPIKey string
	GeminiModel  string

	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string

	ExtractionModel string

	ProviderOrder []string

	TopK          int
	RRFK          int
	MMRLambda     float64
	ContextBudget int
	Workers       int

	PlaybookPath string
}

// Load reads .env (if any) and the environment into a Config.
// Malformed numeric values are reported rather than silently replaced.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Neo4jURI:      os.Getenv("NEO4J_URI"),
		Neo4jUser:     os.Getenv("NEO4J_USER"),
		Neo4jPassword: os.Getenv("NEO4J_PW"),
		Neo4jDatabase: getenv("NEO4J_DATABASE", "neo4j"),

		SQLitePath:   getenv("KGQA_SQLITE_PATH", "chunks.db"),
		DocsDir:      getenv("KGQA_DOCS_DIR", "./docs/cleaned"),
		ChunkPattern: getenv("KGQA_CHUNK_PATTERN", `(?m)^## `),

		EmbeddingBaseURL: os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingAPIKey:  os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:   getenv("EMBEDDING_MODEL", "text-embedding-ada-002"),

		OllamaBaseURL: getenv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getenv("OLLAMA_MODEL", "deepseek-r1:8b"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),

		AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureAPIKey:     os.Getenv("AZURE_OPENAI_KEY"),
		AzureDeployment: getenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini"),

		ExtractionModel: getenv("KGQA_EXTRACTION_MODEL", "gpt-4o-mini"),

		ProviderOrder: splitList(getenv("KGQA_PROVIDERS", "ollama,gemini,azure")),

		PlaybookPath: os.Getenv("KGQA_PLAYBOOK"),
	}

	var err error
	if cfg.TopK, err = getenvInt("KGQA_TOP_K", 5); err != nil {
		return nil, err
	}
	if cfg.RRFK, err = getenvInt("KGQA_RRF_K", 60); err != nil {
		return nil, err
	}
	if cfg.MMRLambda, err = getenvFloat("KGQA_MMR_LAMBDA", 0.7); err != nil {
		return nil, err
	}
	if cfg.ContextBudget, err = getenvInt("KGQA_CONTEXT_BUDGET", 8000); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getenvInt("KGQA_WORKERS", 4); err != nil {
		return nil, err
	}

	if cfg.TopK < 1 {
		return nil, fmt.Errorf("KGQA_TOP_K must be at least 1, got %d", cfg.TopK)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("KGQA_WORKERS must be at least 1, got %d", cfg.Workers)
	}

	return cfg, nil
}

// ValidateNeo4j reports whether the graph connection is usable.
// Commands that touch Neo4j fail fast instead of timing out later.
func (c *Config) ValidateNeo4j() error {
	if c.Neo4jURI == "" || c.Neo4jUser == "" || c.Neo4jPassword == "" {
		return fmt.Errorf("neo4j connection requires NEO4J_URI, NEO4J_USER and NEO4J_PW")
	}
	return nil
}

// ValidateEmbeddings checks that an embeddings endpoint is reachable in
// principle. A key is only mandatory when talking to the hosted API; a
// local OpenAI-compatible server needs just the base URL.
func (c *Config) ValidateEmbeddings() error {
	if c.EmbeddingAPIKey == "" && c.EmbeddingBaseURL == "" {
		return fmt.Errorf("embeddings require OPENAI_API_KEY or EMBEDDING_BASE_URL")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q: %w", key, v, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
