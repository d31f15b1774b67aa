package driven

import (
	"context"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
)

// Entry is one persisted vector store row: an embedded chunk.
type Entry struct {
	// ID is the unique identifier for the entry.
	ID string

	// Content is the chunk text.
	Content string

	// Source identifies the originating file.
	Source string

	// Metadata contains the chunk's tags.
	Metadata map[string]any

	// Embedding is the vector representation of Content.
	Embedding []float32
}

// VectorStore persists embedded chunks and serves similarity search.
// Ingestion is additive-only: implementations must never modify or
// remove existing entries on the ingestion path.
type VectorStore interface {
	// Append adds entries to the store.
	Append(ctx context.Context, entries []Entry) error

	// Search returns the k entries nearest to the query embedding by
	// cosine similarity, best first. An empty store yields an empty
	// result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error)

	// RecordEmbeddingModel stores the embedding model identity on first
	// write. Returns domain.ErrModelMismatch if a different model is
	// already recorded.
	RecordEmbeddingModel(ctx context.Context, model string) error

	// EmbeddingModel returns the recorded model identity, or "" when the
	// store has never been written to.
	EmbeddingModel(ctx context.Context) (string, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
