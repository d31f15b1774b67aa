// Package docx loads word-processor documents as one record per paragraph.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
	"github.com/limonia-labs/limonia-cli/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader handles DOCX documents.
type Loader struct{}

// New creates a new DOCX loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".docx"}
}

// Load returns one record per paragraph whose trimmed text is non-empty.
// The paragraph index in the metadata is the zero-based position in the
// original document; indices of dropped blank paragraphs are not reused,
// so values may have gaps.
func (l *Loader) Load(_ context.Context, path, name string) ([]domain.Record, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening document %s: %w", name, err)
	}
	defer reader.Close()

	paragraphs, err := extractParagraphs(&reader.Reader)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", name, err)
	}

	var records []domain.Record
	for i, text := range paragraphs {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		records = append(records, domain.Record{
			Content: trimmed,
			Source:  name,
			Metadata: map[string]any{
				"paragraph": i,
			},
		})
	}
	logger.Debug("document %s: %d paragraphs, %d non-empty", name, len(paragraphs), len(records))

	return records, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractParagraphs reads word/document.xml and returns the text of
// every paragraph in document order, blanks included.
func extractParagraphs(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, err
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parsing document.xml: %w", err)
		}

		paragraphs := make([]string, len(doc.Body.Paragraphs))
		for i, para := range doc.Body.Paragraphs {
			var b strings.Builder
			for _, r := range para.Runs {
				for _, t := range r.Text {
					b.WriteString(t.Content)
				}
			}
			paragraphs[i] = b.String()
		}
		return paragraphs, nil
	}

	return nil, fmt.Errorf("word/document.xml missing: %w", domain.ErrInvalidInput)
}
