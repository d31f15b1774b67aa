package domain

// Record is the canonical representation of one structural unit of a
// source document after loading: a spreadsheet row or a word-processor
// paragraph. Records are immutable once created.
type Record struct {
	// Content is the normalised text of the unit.
	Content string

	// Source identifies the originating file (display name).
	Source string

	// Metadata contains loader-specific tags, e.g. the sheet name for
	// spreadsheet rows or the paragraph index for document paragraphs.
	Metadata map[string]any
}

// Chunk is a bounded segment of a Record's content. Chunks are the unit
// of embedding and retrieval; each carries an unmodified copy of its
// source record's metadata.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is a substring of the originating record's content.
	Content string

	// Source identifies the originating file, copied from the record.
	Source string

	// Metadata is a copy of the originating record's metadata.
	Metadata map[string]any
}

// SearchResult is one retrieved chunk ranked by similarity to a query.
type SearchResult struct {
	// Content is the stored chunk text.
	Content string

	// Source identifies the originating file.
	Source string

	// Metadata contains the tags stored alongside the chunk.
	Metadata map[string]any

	// Score is the cosine similarity to the query embedding.
	Score float64
}

// Answer pairs a question with the generated response. The JSON field
// names are the external contract consumed by workflow engines.
type Answer struct {
	Question string `json:"pregunta"`
	Response string `json:"respuesta"`
}

// MoveFailure records a single failed archival move. Move failures are
// local: they never abort the batch.
type MoveFailure struct {
	Path   string
	Reason string
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Files is the number of source files dispatched to a loader.
	Files int

	// Records is the number of normalised records produced.
	Records int

	// Chunks is the number of chunks embedded and persisted.
	Chunks int

	// Archived lists the files moved to the processed directory.
	Archived []string

	// MoveFailures lists files that could not be archived.
	MoveFailures []MoveFailure
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
