package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/limonia-labs/limonia-cli/internal/adapters/driven/embedding/cohere"
	"github.com/limonia-labs/limonia-cli/internal/adapters/driven/storage/sqlite"
	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/services"
	"github.com/limonia-labs/limonia-cli/internal/loaders"
	"github.com/limonia-labs/limonia-cli/internal/logger"
	"github.com/limonia-labs/limonia-cli/internal/splitter"
)

// debounceDelay batches bursts of file events into one ingestion run.
const debounceDelay = 2 * time.Second

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the intake directory into the vector store",
	Long: `Reads every recognised file (.xlsx, .docx) from the intake directory,
splits the content into overlapping chunks, embeds them and appends
them to the local vector store. Successfully indexed files are moved
to the processed directory so the next run cannot ingest them again.

A failed move never fails the run; a failed load, embed or store
write aborts it before anything is archived.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and re-ingest when the intake directory changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return fmt.Errorf("%s is not set: %w", cfg.APIKeyEnv, domain.ErrMissingCredential)
	}

	embedder, err := cohere.NewEmbeddingService(cohere.Config{
		APIKey:            apiKey,
		BaseURL:           cfg.BaseURL,
		Model:             cfg.EmbeddingModel,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(cfg.StoreDir)
	if err != nil {
		return err
	}
	defer store.Close()

	ingestor := services.NewIngestService(
		loaders.Defaults(),
		splitter.New(
			splitter.WithChunkSize(cfg.ChunkSize),
			splitter.WithOverlap(cfg.ChunkOverlap),
		),
		embedder,
		store,
		cfg.IntakeDir,
		cfg.ProcessedDir,
		services.WithBatchSize(cfg.BatchSize),
		services.WithProgress(cmd.OutOrStdout()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := ingestor.Run(ctx)
	if err != nil {
		return err
	}
	printReport(cmd, report)

	if !ingestWatch {
		return nil
	}
	return watchIntake(ctx, cmd, ingestor)
}

// watchIntake re-runs ingestion whenever files land in the intake
// directory, batching event bursts with a debounce timer. Run errors
// are reported but keep the watch alive; the affected files stay in
// the intake directory for the next attempt.
func watchIntake(ctx context.Context, cmd *cobra.Command, ingestor *services.IngestService) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.IntakeDir); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.IntakeDir, err)
	}
	cmd.Printf("watching %s\n", cfg.IntakeDir)

	timer := time.NewTimer(debounceDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("intake event: %s", event)
			timer.Reset(debounceDelay)

		case err := <-watcher.Errors:
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			report, err := ingestor.Run(ctx)
			if err != nil {
				cmd.PrintErrf("ingestion failed: %v\n", err)
				continue
			}
			printReport(cmd, report)

		case <-ctx.Done():
			return nil
		}
	}
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	if report.Files == 0 {
		return
	}
	cmd.Printf("done: %d files, %d records, %d chunks, %d archived, %d move failures\n",
		report.Files, report.Records, report.Chunks,
		len(report.Archived), len(report.MoveFailures))
}
