// Package xlsx loads spreadsheet workbooks as one record per data row.
package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
	"github.com/limonia-labs/limonia-cli/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// columnSeparator joins the "column: value" pairs of one row.
const columnSeparator = " | "

// Loader handles XLSX workbooks.
type Loader struct{}

// New creates a new XLSX loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".xlsx"}
}

// Load returns one record per data row across all sheets, in workbook
// sheet order. The first row of each sheet is the header; missing cells
// are treated as empty strings so the row text never has gaps. Column
// order follows the header, keeping chunk boundaries reproducible
// across runs.
func (l *Loader) Load(_ context.Context, path, name string) ([]domain.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", name, err)
	}
	defer f.Close()

	var records []domain.Record
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s of %s: %w", sheet, name, err)
		}
		if len(rows) == 0 {
			continue
		}

		header := rows[0]
		logger.Debug("sheet %s: %d data rows", sheet, len(rows)-1)

		for _, row := range rows[1:] {
			records = append(records, domain.Record{
				Content: rowText(header, row),
				Source:  name,
				Metadata: map[string]any{
					"sheet": sheet,
				},
			})
		}
	}

	return records, nil
}

// rowText joins "column: value" pairs in header order. Cells beyond the
// row's length read as empty strings.
func rowText(header, row []string) string {
	parts := make([]string, len(header))
	for i, col := range header {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		parts[i] = col + ": " + value
	}
	return strings.Join(parts, columnSeparator)
}
