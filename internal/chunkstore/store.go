// Package chunkstore persists documentation chunks and their
// embeddings in a local SQLite database shared by the pipeline
// commands.
package chunkstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Chunk is one slice of a documentation file.
type Chunk struct {
	ID    int
	Title string
	Text  string
	Index int
}

// Embedding is the stored vector for a chunk. Vectors are kept as JSON
// arrays in a TEXT column so the database stays inspectable with plain
// sqlite tooling.
type Embedding struct {
	ChunkID int
	Vector  []float64
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open connects to the chunk database, creating the file when missing.
// A single connection avoids SQLITE_BUSY under the embedding workers.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("opening chunk database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to chunk database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the chunk and embedding tables when they do not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		chunk TEXT,
		chunk_index INTEGER
	)`)
	if err != nil {
		return fmt.Errorf("creating table 'chunks': %w", err)
	}

	_, err = s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS embeddings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chunk_id INTEGER,
		embedding TEXT,
		FOREIGN KEY (chunk_id) REFERENCES chunks(id)
	)`)
	if err != nil {
		return fmt.Errorf("creating table 'embeddings': %w", err)
	}
	return nil
}

// Replace drops and recreates both tables. Re-chunking invalidates the
// stored embeddings, so they go too.
func (s *Store) Replace(ctx context.Context) error {
	for _, table := range []string{"embeddings", "chunks"} {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("dropping table %q: %w", table, err)
		}
	}
	return s.Init(ctx)
}

func (s *Store) InsertChunk(ctx context.Context, title, text string, index int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (title, chunk, chunk_index) VALUES (?, ?, ?)`,
		title, text, index)
	if err != nil {
		return fmt.Errorf("inserting chunk %d of %q: %w", index, title, err)
	}
	return nil
}

// Chunks returns every stored chunk in insertion order.
func (s *Store) Chunks(ctx context.Context) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, chunk, chunk_index FROM chunks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Title, &c.Text, &c.Index); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *Store) ChunkByID(ctx context.Context, id int) (Chunk, error) {
	var c Chunk
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, chunk, chunk_index FROM chunks WHERE id = ?", id).
		Scan(&c.ID, &c.Title, &c.Text, &c.Index)
	if err != nil {
		return Chunk{}, fmt.Errorf("loading chunk %d: %w", id, err)
	}
	return c, nil
}

func (s *Store) InsertEmbedding(ctx context.Context, chunkID int, vector []float64) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshaling embedding for chunk %d: %w", chunkID, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO embeddings (chunk_id, embedding) VALUES (?, ?)", chunkID, string(data))
	if err != nil {
		return fmt.Errorf("storing embedding for chunk %d: %w", chunkID, err)
	}
	return nil
}

// Embeddings loads every stored vector. Rows that fail to parse are
// reported rather than skipped; a corrupt store should be rebuilt.
func (s *Store) Embeddings(ctx context.Context) ([]Embedding, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT chunk_id, embedding FROM embeddings")
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []Embedding
	for rows.Next() {
		var (
			e   Embedding
			raw string
		)
		if err := rows.Scan(&e.ChunkID, &raw); err != nil {
			return nil, fmt.Errorf("scanning embedding row: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Vector); err != nil {
			return nil, fmt.Errorf("parsing embedding for chunk %d: %w", e.ChunkID, err)
		}
		embeddings = append(embeddings, e)
	}
	return embeddings, rows.Err()
}
