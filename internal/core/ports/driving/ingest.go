package driving

import (
	"context"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
)

// Ingestor runs the ingestion pipeline over one intake batch: load,
// chunk, embed, persist, archive.
type Ingestor interface {
	// Run processes every dispatchable file in the intake directory to
	// completion. When the directory yields no dispatchable files the
	// run terminates early without touching the embedding provider or
	// the vector store.
	Run(ctx context.Context) (*domain.IngestReport, error)
}
