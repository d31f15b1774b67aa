package splitter

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
)

// uniqueWords builds text whose every token is distinct, so each chunk
// occurs exactly once and its true offset can be recovered.
func uniqueWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("tok%03d", i)
	}
	return strings.Join(words, " ")
}

func record(content string) domain.Record {
	return domain.Record{
		Content: content,
		Source:  "notas.docx",
		Metadata: map[string]any{
			"paragraph": 4,
		},
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New()
	assert.Equal(t, DefaultChunkSize, s.chunkSize)
	assert.Equal(t, DefaultOverlap, s.overlap)
}

func TestNew_OverlapClampedBelowChunkSize(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(100))
	assert.Equal(t, 25, s.overlap)
}

func TestChunk_EmptyContent(t *testing.T) {
	s := New()
	chunks, err := s.Chunk(context.Background(), record(""))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_ShortRecordYieldsSingleChunk(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	rec := record("una sola frase corta")

	chunks, err := s.Chunk(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, rec.Content, chunks[0].Content)
	assert.Equal(t, rec.Source, chunks[0].Source)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestChunk_MetadataCopiedNotShared(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	rec := record(uniqueWords(40))

	chunks, err := s.Chunk(context.Background(), rec)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.Equal(t, rec.Metadata, chunk.Metadata)
	}

	chunks[0].Metadata["paragraph"] = 99
	assert.Equal(t, 4, rec.Metadata["paragraph"], "record metadata must stay untouched")
}

func TestChunk_BoundsAndCoverage(t *testing.T) {
	const (
		size    = 60
		overlap = 12
	)
	s := New(WithChunkSize(size), WithOverlap(overlap))
	content := uniqueWords(80)
	rec := record(content)

	chunks, err := s.Chunk(context.Background(), rec)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	prevStart, prevEnd := -1, 0
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), size, "chunk %d exceeds max size", i)

		offset := strings.Index(content, chunk.Content)
		require.GreaterOrEqual(t, offset, 0, "chunk %d is not a substring", i)

		end := offset + len(chunk.Content)
		assert.Greater(t, offset, prevStart, "chunk %d does not advance", i)
		assert.LessOrEqual(t, offset, prevEnd, "gap before chunk %d", i)

		if i > 0 {
			// The shared region reads identically in both chunks
			shared := prevEnd - offset
			prev := chunks[i-1].Content
			assert.Equal(t, prev[len(prev)-shared:], chunk.Content[:shared])
		}

		prevStart, prevEnd = offset, end
	}
	assert.Equal(t, len(content), prevEnd, "chunks must cover the record end")
}

func TestChunk_PrefersParagraphBoundary(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(5))
	content := "primer parrafo corto\n\nsegundo parrafo que sigue al salto doble"

	chunks, err := s.Chunk(context.Background(), record(content))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "primer parrafo corto\n\n", chunks[0].Content)
}

func TestChunk_Deterministic(t *testing.T) {
	s := New(WithChunkSize(70), WithOverlap(15))
	rec := record(uniqueWords(60))

	first, err := s.Chunk(context.Background(), rec)
	require.NoError(t, err)
	second, err := s.Chunk(context.Background(), rec)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestChunk_NeverSplitsRunes(t *testing.T) {
	s := New(WithChunkSize(20), WithOverlap(4))
	content := strings.Repeat("ñandúes", 30) // no separators at all

	chunks, err := s.Chunk(context.Background(), record(content))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Content), "chunk %d cut a rune", i)
		assert.LessOrEqual(t, len(chunk.Content), 20)
	}
}
