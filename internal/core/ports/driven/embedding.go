// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Document and query embeddings are separate operations because some
// providers (Cohere among them) embed retrieval documents and retrieval
// queries with different input types.
type EmbeddingService interface {
	// EmbedDocuments generates embeddings for chunk texts destined for the
	// vector store. Order of the result matches the order of the input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	// The same model must be used for ingestion and querying.
	ModelName() string
}
