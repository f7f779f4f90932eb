package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .tobi.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to tobi! Let's configure your backend.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.EmbeddingProvider = cfg.Provider
	if cfg.Provider == ProviderOllama {
		cfg.Model = "llama3"
		cfg.FallbackModel = ""
		cfg.EmbeddingModel = "nomic-embed-text"
	}

	// 2. Model id.
	modelPrompt := promptui.Prompt{
		Label:   "Model id",
		Default: cfg.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.Model = model

	// 3. Corpus directory.
	corpusPrompt := promptui.Prompt{
		Label:   "Corpus directory (documents to index)",
		Default: cfg.CorpusDir,
	}
	corpus, err := corpusPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("corpus dir: %w", err)
	}
	cfg.CorpusDir = corpus

	// 4. Port.
	portPrompt := promptui.Prompt{
		Label:   "Listen port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)
	cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)

	// 5. Link signing secret.
	secretPrompt := promptui.Prompt{
		Label:   "Document link signing secret (blank to disable signed links)",
		Default: "",
		Mask:    '*',
	}
	secret, err := secretPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("link secret: %w", err)
	}
	cfg.LinkSecret = secret

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running tobi serve.\n", envVar)
		}
	}

	// Save to .tobi.yml.
	configPath := ".tobi.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
