package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driving"
	"github.com/limonia-labs/limonia-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.Querier = (*QueryService)(nil)

// DefaultTopK is how many chunks are retrieved per question.
const DefaultTopK = 260

// QueryService answers one question from stored chunks: embed the
// question, retrieve the nearest chunks, render the answer prompt and
// ask the chat model at zero temperature.
type QueryService struct {
	embedder    driven.EmbeddingService
	store       driven.VectorStore
	llm         driven.LLMService
	promptStore driven.PromptStore
	topK        int
}

// QueryOption configures the query service.
type QueryOption func(*QueryService)

// WithTopK sets how many chunks are retrieved per question.
func WithTopK(k int) QueryOption {
	return func(s *QueryService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// NewQueryService creates a new query service.
func NewQueryService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	promptStore driven.PromptStore,
	opts ...QueryOption,
) *QueryService {
	s := &QueryService{
		embedder:    embedder,
		store:       store,
		llm:         llm,
		promptStore: promptStore,
		topK:        DefaultTopK,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ask answers the question from retrieved context only. An empty store
// yields an empty context block and a degraded answer, not an error.
// Retrieved texts are concatenated without truncation; if the context
// exceeds the model's input limit the provider decides what happens.
func (s *QueryService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Query Run")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrMissingQuestion
	}

	// The model recorded at ingestion must match the configured one;
	// similarities across models are meaningless.
	stored, err := s.store.EmbeddingModel(ctx)
	if err != nil {
		return nil, err
	}
	if stored != "" && stored != s.embedder.ModelName() {
		return nil, fmt.Errorf("store built with %q, configured %q: %w",
			stored, s.embedder.ModelName(), domain.ErrModelMismatch)
	}

	embedding, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := s.store.Search(ctx, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}
	logger.Debug("retrieved %d chunks", len(results))

	texts := make([]string, len(results))
	for i, result := range results {
		texts[i] = result.Content
	}
	contextBlock := strings.Join(texts, "\n")

	template, err := s.promptStore.Load(driven.PromptAnswer)
	if err != nil {
		return nil, fmt.Errorf("loading answer prompt: %w", err)
	}
	prompt := fmt.Sprintf(template, contextBlock, question)

	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &domain.Answer{
		Question: question,
		Response: response,
	}, nil
}
