// Package prompts loads LLM prompt templates from user-editable files
// with fallback to embedded defaults.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/limonia-labs/limonia-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.PromptStore = (*Store)(nil)

// defaultPrompts contains the embedded default prompts. They are used
// when user files don't exist and as the initial content for new files.
//
// The answer prompt keeps the assistant inside the supplied context,
// answering in Spanish with an empathic, broadly accessible tone. The
// two placeholders are the context block and the question.
var defaultPrompts = map[string]string{
	driven.PromptAnswer: `Usa únicamente la información del contexto.
Siempre responde en español.
No inventes datos, no inventes informacion.
Eres un asistente de ciberseguridad donde ayudas desempeñando un rol de UserAwarness.
Siempre responde de forma empatica y con buenos ejemplos.
Recuerda que le explicas a personas de todo tipo de edad y ellos tienen que comprenderte.

Contexto:
%s

Pregunta:
%s

Respuesta clara:`,
}

// Store loads prompts from a directory of .txt files, one per prompt
// name. Files are created lazily with the default content on first
// access, so users can edit them afterwards.
type Store struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
}

// NewStore creates a prompt store rooted at promptDir.
// If promptDir is empty, defaults to ~/.limonia/prompts.
func NewStore(promptDir string) (*Store, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".limonia", "prompts")
	}

	return &Store{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name. A user file
// overrides the embedded default; a missing file is created with the
// default content so it can be customised.
func (s *Store) Load(name string) (string, error) {
	s.mu.RLock()
	if cached, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	fallback, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("unknown prompt: %s", name)
	}

	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		content := strings.TrimRight(string(data), "\n")
		s.store(name, content)
		return content, nil
	case os.IsNotExist(err):
		if writeErr := s.writeDefault(path, fallback); writeErr != nil {
			// The default still works even when the file can't be seeded
			s.store(name, fallback)
			return fallback, nil
		}
		s.store(name, fallback)
		return fallback, nil
	default:
		return "", fmt.Errorf("reading prompt %s: %w", name, err)
	}
}

// Reload clears the cache, forcing fresh loads on next access.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}

func (s *Store) store(name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[name] = content
}

func (s *Store) writeDefault(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content+"\n"), 0600)
}
