package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	embeddingcohere "github.com/limonia-labs/limonia-cli/internal/adapters/driven/embedding/cohere"
	llmcohere "github.com/limonia-labs/limonia-cli/internal/adapters/driven/llm/cohere"
	"github.com/limonia-labs/limonia-cli/internal/adapters/driven/storage/sqlite"
	"github.com/limonia-labs/limonia-cli/internal/core/domain"
	"github.com/limonia-labs/limonia-cli/internal/core/services"
	"github.com/limonia-labs/limonia-cli/internal/prompts"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed content",
	Long: `Embeds the question, retrieves the most similar chunks from the vector
store and asks the chat model for an answer grounded in that context.

Output is a single JSON object on stdout: {"pregunta", "respuesta"} on
success, {"error"} with a non-zero exit status on failure. Non-ASCII
text is emitted literally so downstream workflow engines receive it
unchanged.`,
	// Argument validation happens in RunE so a missing question still
	// produces the machine-readable error object on stdout.
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

// errorObject is the machine-readable failure contract of the query path.
type errorObject struct {
	Error string `json:"error"`
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) != 1 {
		return failAsk(out, domain.ErrMissingQuestion)
	}
	question := args[0]

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return failAsk(out, fmt.Errorf("%s is not set: %w", cfg.APIKeyEnv, domain.ErrMissingCredential))
	}

	embedder, err := embeddingcohere.NewEmbeddingService(embeddingcohere.Config{
		APIKey:            apiKey,
		BaseURL:           cfg.BaseURL,
		Model:             cfg.EmbeddingModel,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	if err != nil {
		return failAsk(out, err)
	}

	llm, err := llmcohere.NewLLMService(llmcohere.Config{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.LLMModel,
	})
	if err != nil {
		return failAsk(out, err)
	}

	store, err := sqlite.NewStore(cfg.StoreDir)
	if err != nil {
		return failAsk(out, err)
	}
	defer store.Close()

	promptStore, err := prompts.NewStore(cfg.PromptDir)
	if err != nil {
		return failAsk(out, err)
	}

	topK := cfg.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	querier := services.NewQueryService(embedder, store, llm, promptStore,
		services.WithTopK(topK))

	answer, err := querier.Ask(cmd.Context(), question)
	if err != nil {
		return failAsk(out, err)
	}

	return writeJSON(out, answer)
}

// failAsk emits the error object on stdout and propagates the error so
// the process exits non-zero.
func failAsk(out io.Writer, err error) error {
	if writeErr := writeJSON(out, errorObject{Error: err.Error()}); writeErr != nil {
		return writeErr
	}
	return err
}

// writeJSON encodes v with HTML escaping off; Go leaves non-ASCII
// unescaped, so accented text reaches the consumer literally.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
