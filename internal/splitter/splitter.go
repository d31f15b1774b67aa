// Package splitter provides boundary-aware text chunking with overlap.
package splitter

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1200

// DefaultOverlap is the default number of overlapping bytes between
// consecutive chunks of the same record.
const DefaultOverlap = 150

// separators are tried in order when looking for a cut point: paragraph
// break, line break, word break. A hard cut at a rune boundary is the
// last resort.
var separators = []string{"\n\n", "\n", " "}

// Splitter splits record content into bounded, overlapping chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must stay strictly below the chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Chunk splits one record's content. A record no longer than the chunk
// size yields exactly one chunk. Consecutive chunks of the same record
// share the configured overlap except when a boundary cut or the record
// end shortens it. Identical content always produces identical cuts.
func (s *Splitter) Chunk(_ context.Context, rec domain.Record) ([]domain.Chunk, error) {
	content := rec.Content
	if content == "" {
		return nil, nil
	}

	if len(content) <= s.chunkSize {
		return []domain.Chunk{s.newChunk(rec, content)}, nil
	}

	estimated := len(content)/(s.chunkSize-s.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for start < len(content) {
		end := s.cutPoint(content, start)
		chunks = append(chunks, s.newChunk(rec, content[start:end]))

		if end == len(content) {
			break
		}

		next := end - s.overlap
		// Never cut a UTF-8 sequence in half when stepping back
		for next > start && !utf8.RuneStart(content[next]) {
			next--
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// cutPoint returns the end offset of the chunk starting at start. It
// prefers the last paragraph, line or word boundary within the window
// and falls back to a hard cut at a rune boundary.
func (s *Splitter) cutPoint(content string, start int) int {
	end := start + s.chunkSize
	if end >= len(content) {
		return len(content)
	}

	window := content[start:end]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx <= 0 {
			continue
		}
		cut := start + idx + len(sep)
		// A cut that does not clear the overlap would stall the walk
		if cut-start > s.overlap {
			return cut
		}
	}

	for end > start+1 && !utf8.RuneStart(content[end]) {
		end--
	}
	return end
}

func (s *Splitter) newChunk(rec domain.Record, content string) domain.Chunk {
	return domain.Chunk{
		ID:       uuid.New().String(),
		Content:  content,
		Source:   rec.Source,
		Metadata: domain.CopyMetadata(rec.Metadata),
	}
}
