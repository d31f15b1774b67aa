package loaders

import (
	"github.com/limonia-labs/limonia-cli/internal/loaders/docx"
	"github.com/limonia-labs/limonia-cli/internal/loaders/xlsx"
)

// Defaults returns a registry with all built-in loaders registered.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(xlsx.New())
	r.Register(docx.New())
	return r
}
