package llm

import (
	"context"
	"fmt"

	"docchat/internal/config"
	"docchat/internal/rag/interfaces"
)

// NewClient is a factory that builds the chat model named by the
// configuration. It returns an error when the provider is unknown or its
// credential is missing; callers decide whether that is fatal (the answer
// synthesizer treats it as "not configured" and falls back to excerpts).
func NewClient(cfg config.LLMConfig) (interfaces.LLM, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL, cfg.Temperature)
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey, cfg.Temperature)
	case "gemini":
		return NewGemini(context.Background(), cfg.Model, cfg.APIKey, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
