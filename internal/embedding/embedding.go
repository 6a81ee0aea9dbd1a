package embedding

import (
	"fmt"

	"docchat/internal/config"
	"docchat/internal/rag/interfaces"
)

// NewClient is a factory that builds the embedding provider named by the
// configuration. Every provider implements interfaces.EmbeddingModel.
func NewClient(cfg config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	case "openai":
		return NewOpenAIModel(cfg.APIKey, cfg.Model)
	case "gemini":
		return NewGoogleModel(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
