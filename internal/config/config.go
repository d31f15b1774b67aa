// Package config holds the explicit configuration of both pipelines.
// Configuration lives in a TOML file; every field has a documented
// default so a fresh install works after setting the API key.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Defaults for chunking and retrieval.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 150
	DefaultTopK         = 260
	DefaultBatchSize    = 96
)

// Config is the root configuration for the LimonIA CLI.
type Config struct {
	// IntakeDir is scanned for source files on every ingestion run.
	IntakeDir string `toml:"intake_dir"`

	// ProcessedDir receives successfully indexed files.
	ProcessedDir string `toml:"processed_dir"`

	// StoreDir holds the persistent vector store.
	StoreDir string `toml:"store_dir"`

	// PromptDir holds user-editable prompt templates.
	PromptDir string `toml:"prompt_dir"`

	// ChunkSize is the maximum chunk size in bytes.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive chunks in bytes.
	ChunkOverlap int `toml:"chunk_overlap"`

	// TopK is how many chunks are retrieved per question.
	TopK int `toml:"top_k"`

	// BatchSize is how many chunk texts are embedded per provider call.
	BatchSize int `toml:"batch_size"`

	// EmbeddingModel must stay the same between ingestion and querying.
	EmbeddingModel string `toml:"embedding_model"`

	// LLMModel generates the answers.
	LLMModel string `toml:"llm_model"`

	// BaseURL overrides the provider endpoint (testing, proxies).
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable carrying the API key.
	APIKeyEnv string `toml:"api_key_env"`

	// RequestsPerMinute caps embedding request rate.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// DefaultDir returns the default configuration directory, ~/.limonia.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".limonia"), nil
}

// Default returns the configuration defaults rooted at baseDir.
func Default(baseDir string) *Config {
	return &Config{
		IntakeDir:         filepath.Join(baseDir, "datos"),
		ProcessedDir:      filepath.Join(baseDir, "procesados"),
		StoreDir:          filepath.Join(baseDir, "store"),
		PromptDir:         filepath.Join(baseDir, "prompts"),
		ChunkSize:         DefaultChunkSize,
		ChunkOverlap:      DefaultChunkOverlap,
		TopK:              DefaultTopK,
		BatchSize:         DefaultBatchSize,
		EmbeddingModel:    "embed-multilingual-v3.0",
		LLMModel:          "command-a-translate-08-2025",
		APIKeyEnv:         "COHERE_API_KEY",
		RequestsPerMinute: 100,
	}
}

// Load reads the configuration at path. When path is empty the default
// location ~/.limonia/config.toml is used, and a missing file is
// created with the defaults so users have something to edit.
func Load(path string) (*Config, error) {
	baseDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = filepath.Join(baseDir, "config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg := Default(baseDir)
			if err := Save(path, cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default(baseDir)
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg, baseDir)

	return cfg, nil
}

// Save writes the configuration to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	// Write with restricted permissions
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// applyDefaults fills zero values after parsing a user-edited file.
func applyDefaults(cfg *Config, baseDir string) {
	def := Default(baseDir)
	if cfg.IntakeDir == "" {
		cfg.IntakeDir = def.IntakeDir
	}
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = def.ProcessedDir
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = def.StoreDir
	}
	if cfg.PromptDir == "" {
		cfg.PromptDir = def.PromptDir
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 8
	}
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = def.EmbeddingModel
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = def.LLMModel
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = def.APIKeyEnv
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
}
