package driven

import "context"

// LLMService produces natural-language text from a prompt.
type LLMService interface {
	// Generate produces a completion for the prompt. The answering
	// pipeline always requests temperature 0 for deterministic output.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate (0 = provider default).
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
