package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files or use
// embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer renders the grounded answer instruction. The template
	// expects two %s placeholders: the context block and the question.
	PromptAnswer = "answer"
)
