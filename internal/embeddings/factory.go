package embeddings

import (
	"fmt"
	"os"
)

// ollamaDims holds output dimensions for common local embedding models.
var ollamaDims = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
}

// NewEmbedder creates an embedder for the given provider type and model.
func NewEmbedder(providerType, model string) (Embedder, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model)), nil

	case "ollama":
		dims, ok := ollamaDims[model]
		if !ok {
			dims = 768
		}
		return NewOllamaEmbedder(model, dims, os.Getenv("OLLAMA_HOST")), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
