package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/limonia-labs/limonia-cli/internal/loaders"
	"github.com/limonia-labs/limonia-cli/internal/splitter"
)

// writeCourseWorkbook drops a small two-sheet workbook into dir. It
// yields 8 data rows: 3 on Cursos, 5 on Docentes.
func writeCourseWorkbook(t *testing.T, dir, name string) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Cursos"))
	for r, row := range [][]string{
		{"Nombre", "Duracion"},
		{"Phishing", "2h"},
		{"Contraseñas", "1h"},
		{"Ransomware", "3h"},
	} {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Cursos", cell, value))
		}
	}
	_, err := f.NewSheet("Docentes")
	require.NoError(t, err)
	for r, row := range [][]string{
		{"Docente", "Area"},
		{"Ana", "Redes"},
		{"Luis", "Fraude"},
		{"Marta", "Cifrado"},
		{"Pedro", "Legal"},
		{"Sofia", "Nube"},
	} {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Docentes", cell, value))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

type ingestFixture struct {
	service   *IngestService
	embedder  *fakeEmbedder
	store     *fakeStore
	intake    string
	processed string
}

func newIngestFixture(t *testing.T, opts ...IngestOption) *ingestFixture {
	t.Helper()

	base := t.TempDir()
	intake := filepath.Join(base, "datos")
	processed := filepath.Join(base, "procesados")
	require.NoError(t, os.MkdirAll(intake, 0700))

	embedder := newFakeEmbedder()
	store := &fakeStore{}
	service := NewIngestService(
		loaders.Defaults(),
		splitter.New(),
		embedder,
		store,
		intake, processed,
		opts...,
	)

	return &ingestFixture{
		service:   service,
		embedder:  embedder,
		store:     store,
		intake:    intake,
		processed: processed,
	}
}

func TestRun_EmptyIntake(t *testing.T) {
	fix := newIngestFixture(t)

	report, err := fix.service.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Files)
	assert.Zero(t, report.Records)
	assert.Zero(t, report.Chunks)
	assert.Empty(t, report.Archived)

	// Nothing reached the provider or the store
	assert.Zero(t, fix.embedder.docCalls)
	assert.Empty(t, fix.store.entries)
	assert.Empty(t, fix.store.model)
}

func TestRun_SpreadsheetPipeline(t *testing.T) {
	fix := newIngestFixture(t)
	writeCourseWorkbook(t, fix.intake, "cursos.xlsx")

	report, err := fix.service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 8, report.Records)
	assert.Equal(t, 8, report.Chunks) // every row fits in one chunk
	assert.Empty(t, report.MoveFailures)
	require.Len(t, report.Archived, 1)

	// Store holds one entry per chunk with the model recorded
	assert.Len(t, fix.store.entries, 8)
	assert.Equal(t, "fake-embed-v1", fix.store.model)
	assert.Equal(t, "Nombre: Phishing | Duracion: 2h", fix.store.entries[0].Content)
	assert.Equal(t, "cursos.xlsx", fix.store.entries[0].Source)

	// The source file moved out of the intake directory
	assert.NoFileExists(t, filepath.Join(fix.intake, "cursos.xlsx"))
	assert.FileExists(t, filepath.Join(fix.processed, "cursos.xlsx"))
}

func TestRun_ProgressOutput(t *testing.T) {
	out := new(bytes.Buffer)
	fix := newIngestFixture(t, WithProgress(out))
	writeCourseWorkbook(t, fix.intake, "cursos.xlsx")

	_, err := fix.service.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "reading cursos.xlsx")
	assert.Contains(t, out.String(), "loaded 8 records from 1 files")
	assert.Contains(t, out.String(), "created 8 chunks")
	assert.Contains(t, out.String(), "archived cursos.xlsx")
}

func TestRun_BatchSizeSplitsEmbeddingCalls(t *testing.T) {
	fix := newIngestFixture(t, WithBatchSize(3))
	writeCourseWorkbook(t, fix.intake, "cursos.xlsx")

	_, err := fix.service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 2}, fix.embedder.batchSizes)
}

func TestRun_EmbeddingFailureLeavesFilesInPlace(t *testing.T) {
	fix := newIngestFixture(t)
	fix.embedder.failDocs = true
	writeCourseWorkbook(t, fix.intake, "cursos.xlsx")

	_, err := fix.service.Run(context.Background())
	require.Error(t, err)

	// Not archived, nothing persisted; the run can be retried as-is
	assert.FileExists(t, filepath.Join(fix.intake, "cursos.xlsx"))
	assert.NoFileExists(t, filepath.Join(fix.processed, "cursos.xlsx"))
	assert.Empty(t, fix.store.entries)
}

func TestRun_LoaderFailureAbortsRun(t *testing.T) {
	fix := newIngestFixture(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(fix.intake, "roto.xlsx"), []byte("not a workbook"), 0600))
	writeCourseWorkbook(t, fix.intake, "cursos.xlsx")

	_, err := fix.service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roto.xlsx")

	// A partial corpus is never indexed
	assert.Zero(t, fix.embedder.docCalls)
	assert.Empty(t, fix.store.entries)
	assert.FileExists(t, filepath.Join(fix.intake, "cursos.xlsx"))
}

func TestRun_UnknownExtensionsAreIgnored(t *testing.T) {
	fix := newIngestFixture(t)
	stray := filepath.Join(fix.intake, "notas.txt")
	require.NoError(t, os.WriteFile(stray, []byte("sin loader"), 0600))

	report, err := fix.service.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Files)
	assert.Zero(t, fix.embedder.docCalls)
	assert.FileExists(t, stray, "unrecognised files stay put")
}

func TestRun_MoveCollisionReportedNotFatal(t *testing.T) {
	fix := newIngestFixture(t)
	writeCourseWorkbook(t, fix.intake, "cursos.xlsx")

	// A file with the same name already sits in the processed directory
	require.NoError(t, os.MkdirAll(fix.processed, 0700))
	require.NoError(t, os.WriteFile(
		filepath.Join(fix.processed, "cursos.xlsx"), []byte("anterior"), 0600))

	report, err := fix.service.Run(context.Background())
	require.NoError(t, err, "archive failures never fail the run")

	assert.Equal(t, 8, report.Chunks)
	assert.Len(t, fix.store.entries, 8, "indexing completed before archiving")
	assert.Empty(t, report.Archived)
	require.Len(t, report.MoveFailures, 1)
	assert.Contains(t, report.MoveFailures[0].Reason, "already exists")
	assert.FileExists(t, filepath.Join(fix.intake, "cursos.xlsx"))
}

func TestRun_SecondIngestAppends(t *testing.T) {
	fix := newIngestFixture(t)

	writeCourseWorkbook(t, fix.intake, "cursos.xlsx")
	_, err := fix.service.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, fix.store.entries, 8)

	// The same workbook arrives again under a new name
	writeCourseWorkbook(t, fix.intake, "cursos-v2.xlsx")
	_, err = fix.service.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, fix.store.entries, 16, "the store only ever grows")
}

func TestRun_FilesProcessedInNameOrder(t *testing.T) {
	fix := newIngestFixture(t)
	writeCourseWorkbook(t, fix.intake, "b.xlsx")
	writeCourseWorkbook(t, fix.intake, "a.xlsx")

	report, err := fix.service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Archived, 2)
	assert.Equal(t, "a.xlsx", filepath.Base(report.Archived[0]))
	assert.Equal(t, "b.xlsx", filepath.Base(report.Archived[1]))
	assert.Equal(t, "a.xlsx", fix.store.entries[0].Source)
}
