// Package sqlite provides the persistent vector store on SQLite.
//
// The store is additive-only on the ingestion path: entries are only
// ever inserted, never updated or deleted. Similarity search is a
// brute-force cosine scan, which is adequate for corpora in the tens of
// thousands of chunks.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// metaKeyEmbeddingModel records which embedding model populated the store.
const metaKeyEmbeddingModel = "embedding_model"

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	content    TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the vector store in the given data
// directory. The store is always opened in append mode; an existing
// database is never recreated.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".limonia", "store")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "limonia.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{
		db:   db,
		path: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Append inserts the entries in one transaction. Existing rows are
// never touched; duplicate logical content accumulates as separate
// entries (no deduplication key is computed).
func (s *Store) Append(ctx context.Context, entries []driven.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, source, content, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, entry := range entries {
		metadata, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", entry.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			entry.ID,
			entry.Source,
			entry.Content,
			string(metadata),
			float32SliceToBytes(entry.Embedding),
			now,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Search scans all stored embeddings and returns the k most similar
// entries by cosine similarity, best first.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, content, metadata, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			source, content, metadataJSON string
			blob                          []byte
		)
		if err := rows.Scan(&source, &content, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}

		results = append(results, domain.SearchResult{
			Content:  content,
			Source:   source,
			Metadata: metadata,
			Score:    cosineSimilarity(query, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// RecordEmbeddingModel stores the model identity on first write and
// rejects a different identity afterwards.
func (s *Store) RecordEmbeddingModel(ctx context.Context, model string) error {
	stored, err := s.EmbeddingModel(ctx)
	if err != nil {
		return err
	}
	if stored == "" {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)`, metaKeyEmbeddingModel, model)
		if err != nil {
			return fmt.Errorf("recording embedding model: %w", err)
		}
		return nil
	}
	if stored != model {
		return fmt.Errorf("store built with %q, configured %q: %w",
			stored, model, domain.ErrModelMismatch)
	}
	return nil
}

// EmbeddingModel returns the recorded model identity, or "" when unset.
func (s *Store) EmbeddingModel(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, metaKeyEmbeddingModel).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading embedding model: %w", err)
	}
	return value, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// float32SliceToBytes serialises a vector as little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	bytes := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(bytes[i*4:], math.Float32bits(f))
	}
	return bytes
}

// bytesToFloat32Slice deserialises a little-endian vector.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
