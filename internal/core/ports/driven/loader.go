package driven

import (
	"context"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
)

// Loader converts one source file into normalised records.
// Each loader handles specific file extensions (e.g. .xlsx, .docx).
type Loader interface {
	// Extensions returns the lower-cased extensions this loader handles,
	// including the leading dot.
	Extensions() []string

	// Load reads the file at path and returns one record per structural
	// unit (row, paragraph). An unreadable or corrupt file is an error;
	// the caller decides whether to skip the file or abort the run.
	Load(ctx context.Context, path, name string) ([]domain.Record, error)
}

// LoaderRegistry resolves a loader for a file extension. Extensions with
// no registered loader are ignored by the corpus assembler.
type LoaderRegistry interface {
	// Lookup returns the loader for the given lower-cased extension.
	Lookup(ext string) (Loader, bool)
}
