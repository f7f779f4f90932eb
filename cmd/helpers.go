package cmd

import (
	"fmt"

	"github.com/i2i-labs/tobi-backend/internal/config"
	"github.com/i2i-labs/tobi-backend/internal/db"
	"github.com/i2i-labs/tobi-backend/internal/docindex"
	"github.com/i2i-labs/tobi-backend/internal/embeddings"
	"github.com/i2i-labs/tobi-backend/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `tobi init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// The embedding provider falls back to the completion provider when unset.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	return embeddings.NewEmbedder(string(provider), cfg.EmbeddingModel)
}

// createLLMProviderFromConfig builds the completion provider chain:
// transient errors retry, and persistent primary-model failures fall
// back to the configured fallback model.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	base, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	var provider llm.Provider = llm.NewRetryProvider(base)
	if cfg.FallbackModel != "" {
		provider = llm.NewFallbackProvider(provider, cfg.Model, cfg.FallbackModel)
	}
	return provider, nil
}

// openIndexFromConfig opens the keyword index, or returns nil when the
// count flow is disabled.
func openIndexFromConfig(cfg *config.Config) (*docindex.Index, *db.DB, error) {
	if !cfg.Index.Enabled {
		return nil, nil, nil
	}
	database, err := db.Open(cfg.Index.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index database: %w", err)
	}
	ix, err := docindex.New(database, cfg.Index)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("opening keyword index: %w", err)
	}
	return ix, database, nil
}
