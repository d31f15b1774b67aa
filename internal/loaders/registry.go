// Package loaders provides file-type loaders and their extension registry.
package loaders

import (
	"sort"
	"strings"

	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps file extensions to loaders. The corpus assembler
// dispatches through it, so new file types plug in without touching the
// assembler.
type Registry struct {
	byExt map[string]driven.Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]driven.Loader),
	}
}

// Register adds a loader under every extension it reports.
// Later registrations win on conflicting extensions.
func (r *Registry) Register(loader driven.Loader) {
	for _, ext := range loader.Extensions() {
		r.byExt[strings.ToLower(ext)] = loader
	}
}

// Lookup returns the loader for the given extension. The extension is
// matched case-insensitively and must include the leading dot.
func (r *Registry) Lookup(ext string) (driven.Loader, bool) {
	loader, ok := r.byExt[strings.ToLower(ext)]
	return loader, ok
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
