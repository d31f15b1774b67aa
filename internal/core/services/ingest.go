package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driving"
	"github.com/limonia-labs/limonia-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// DefaultBatchSize is how many chunk texts go into one embedding call.
const DefaultBatchSize = 96

// IngestService runs the ingestion pipeline: scan the intake directory,
// load, chunk, embed, persist, then archive the consumed files.
type IngestService struct {
	registry     driven.LoaderRegistry
	chunker      driven.Chunker
	embedder     driven.EmbeddingService
	store        driven.VectorStore
	intakeDir    string
	processedDir string
	batchSize    int
	progress     io.Writer
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithBatchSize sets how many chunk texts are embedded per provider call.
func WithBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProgress sets the writer receiving human-readable progress lines.
// Defaults to io.Discard.
func WithProgress(w io.Writer) IngestOption {
	return func(s *IngestService) {
		if w != nil {
			s.progress = w
		}
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	registry driven.LoaderRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	intakeDir, processedDir string,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		registry:     registry,
		chunker:      chunker,
		embedder:     embedder,
		store:        store,
		intakeDir:    intakeDir,
		processedDir: processedDir,
		batchSize:    DefaultBatchSize,
		progress:     io.Discard,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run processes one intake batch to completion. A failure while
// loading, chunking, embedding or persisting aborts the run before any
// file is archived, leaving every source file in place for a retry.
// Per-file archival failures are reported and never abort the batch.
func (s *IngestService) Run(ctx context.Context) (*domain.IngestReport, error) {
	logger.Section("Ingestion Run")

	records, consumed, err := s.assemble(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.IngestReport{
		Files:   len(consumed),
		Records: len(records),
	}

	if len(consumed) == 0 {
		s.printf("no files to process in %s", s.intakeDir)
		return report, nil
	}
	s.printf("loaded %d records from %d files", len(records), len(consumed))

	chunks, err := s.chunk(ctx, records)
	if err != nil {
		return nil, err
	}
	report.Chunks = len(chunks)
	s.printf("created %d chunks", len(chunks))

	if err := s.index(ctx, chunks); err != nil {
		return nil, err
	}
	s.printf("embeddings stored")

	report.Archived, report.MoveFailures = s.archive(consumed)
	return report, nil
}

// assemble walks the intake directory and dispatches each regular file
// to its loader by extension. Entries are visited in name order so
// chunk sequences are reproducible across runs; files with unrecognised
// extensions are silently ignored. A loader failure aborts the run: a
// partially loaded corpus would produce an inconsistent index.
func (s *IngestService) assemble(ctx context.Context) ([]domain.Record, []string, error) {
	entries, err := os.ReadDir(s.intakeDir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading intake directory: %w", err)
	}

	var (
		records  []domain.Record
		consumed []string
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		loader, ok := s.registry.Lookup(ext)
		if !ok {
			logger.Debug("skipping %s: no loader for %q", name, ext)
			continue
		}

		s.printf("reading %s", name)
		path := filepath.Join(s.intakeDir, name)
		recs, err := loader.Load(ctx, path, name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading %s: %w", name, err)
		}
		s.printf("  %d records", len(recs))

		records = append(records, recs...)
		consumed = append(consumed, path)
	}

	return records, consumed, nil
}

// chunk splits every record independently; overlap never crosses record
// boundaries.
func (s *IngestService) chunk(ctx context.Context, records []domain.Record) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, rec := range records {
		cs, err := s.chunker.Chunk(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("chunking record from %s: %w", rec.Source, err)
		}
		chunks = append(chunks, cs...)
	}
	return chunks, nil
}

// index embeds the chunks in batches and appends them to the store. The
// embedding model identity is recorded before the first write so a
// later query with a different model is caught.
func (s *IngestService) index(ctx context.Context, chunks []domain.Chunk) error {
	if err := s.store.RecordEmbeddingModel(ctx, s.embedder.ModelName()); err != nil {
		return err
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding chunks %d-%d: got %d vectors for %d texts",
				start, end-1, len(embeddings), len(batch))
		}

		entries := make([]driven.Entry, len(batch))
		for i, chunk := range batch {
			entries[i] = driven.Entry{
				ID:        chunk.ID,
				Content:   chunk.Content,
				Source:    chunk.Source,
				Metadata:  chunk.Metadata,
				Embedding: embeddings[i],
			}
		}

		if err := s.store.Append(ctx, entries); err != nil {
			return fmt.Errorf("persisting chunks %d-%d: %w", start, end-1, err)
		}
		logger.Debug("persisted batch %d-%d", start, end-1)
	}

	return nil
}

// archive moves every consumed file into the processed directory so the
// next run cannot ingest it again. It runs only after the whole batch
// indexed successfully. Each move is attempted regardless of earlier
// failures.
func (s *IngestService) archive(consumed []string) ([]string, []domain.MoveFailure) {
	var (
		archived []string
		failures []domain.MoveFailure
	)

	if err := os.MkdirAll(s.processedDir, 0700); err != nil {
		for _, src := range consumed {
			failures = append(failures, domain.MoveFailure{
				Path:   src,
				Reason: fmt.Sprintf("creating processed directory: %v", err),
			})
		}
		s.printf("could not create %s: %v", s.processedDir, err)
		return nil, failures
	}

	for _, src := range consumed {
		dst := filepath.Join(s.processedDir, filepath.Base(src))
		if err := moveFile(src, dst); err != nil {
			failures = append(failures, domain.MoveFailure{Path: src, Reason: err.Error()})
			s.printf("could not move %s: %v", filepath.Base(src), err)
			continue
		}
		archived = append(archived, dst)
		s.printf("archived %s", filepath.Base(src))
	}

	return archived, failures
}

// moveFile renames src to dst, falling back to copy-and-remove across
// filesystems. An existing destination is an error, never overwritten.
func moveFile(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("destination %s already exists", dst)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	return os.Remove(src)
}

func (s *IngestService) printf(format string, args ...any) {
	fmt.Fprintf(s.progress, format+"\n", args...)
}
