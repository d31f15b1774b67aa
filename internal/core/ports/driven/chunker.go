package driven

import (
	"context"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
)

// Chunker splits one record's content into bounded, overlapping chunks.
// Overlap applies only between chunks of the same record, never across
// record boundaries. Every chunk inherits the record's metadata.
type Chunker interface {
	Chunk(ctx context.Context, rec domain.Record) ([]domain.Chunk, error)
}
