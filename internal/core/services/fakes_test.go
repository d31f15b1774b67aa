package services

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
)

// fakeEmbedder produces deterministic vectors derived from the text, so
// identical texts always land on identical embeddings.
type fakeEmbedder struct {
	model      string
	docCalls   int
	queryCalls int
	batchSizes []int
	failDocs   bool
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{model: "fake-embed-v1"}
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	f.batchSizes = append(f.batchSizes, len(texts))
	if f.failDocs {
		return nil, errors.New("embedding backend unavailable")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = textVector(text)
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls++
	return textVector(text), nil
}

func (f *fakeEmbedder) ModelName() string { return f.model }

func textVector(text string) []float32 {
	v := make([]float32, 4)
	for i, b := range []byte(text) {
		v[i%4] += float32(b)
	}
	return v
}

// fakeStore is an in-memory vector store mirroring the SQLite adapter's
// semantics.
type fakeStore struct {
	entries []driven.Entry
	model   string
}

func (f *fakeStore) Append(_ context.Context, entries []driven.Entry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeStore) Search(_ context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}
	results := make([]domain.SearchResult, 0, len(f.entries))
	for _, e := range f.entries {
		results = append(results, domain.SearchResult{
			Content:  e.Content,
			Source:   e.Source,
			Metadata: e.Metadata,
			Score:    cosine(query, e.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (f *fakeStore) RecordEmbeddingModel(_ context.Context, model string) error {
	if f.model == "" {
		f.model = model
		return nil
	}
	if f.model != model {
		return domain.ErrModelMismatch
	}
	return nil
}

func (f *fakeStore) EmbeddingModel(_ context.Context) (string, error) { return f.model, nil }

func (f *fakeStore) Count(_ context.Context) (int, error) { return len(f.entries), nil }

func (f *fakeStore) Close() error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// fakeLLM records the last prompt and returns a canned response.
type fakeLLM struct {
	response   string
	lastPrompt string
	lastOpts   driven.GenerateOptions
	calls      int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastOpts = opts
	return f.response, nil
}

func (f *fakeLLM) ModelName() string { return "fake-chat-v1" }

// fakePrompts serves a fixed template for the answer prompt.
type fakePrompts struct{}

func (fakePrompts) Load(name string) (string, error) {
	if name != driven.PromptAnswer {
		return "", errors.New("unknown prompt: " + name)
	}
	return "Contexto:\n%s\n\nPregunta:\n%s", nil
}

func (fakePrompts) Reload() {}
