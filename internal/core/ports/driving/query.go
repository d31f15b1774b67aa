package driving

import (
	"context"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
)

// Querier answers one natural-language question from stored chunks.
type Querier interface {
	// Ask embeds the question, retrieves the nearest chunks and asks the
	// chat model for a grounded answer. An empty store yields an answer
	// generated from an empty context, not an error.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}
