// Package cli provides the cobra command-line interface of LimonIA.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/limonia-labs/limonia-cli/internal/config"
	"github.com/limonia-labs/limonia-cli/internal/logger"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "limonia",
	Short: "Retrieval-augmented assistant over office documents",
	Long: `LimonIA ingests spreadsheets and word-processor documents into a local
vector store and answers questions from the stored content only.

Ingestion reads the intake directory, archives consumed files, and is
safe to re-run; querying emits machine-readable JSON on stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		// A missing .env is fine; the key may come from the environment
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.limonia/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
