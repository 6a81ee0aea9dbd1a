package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8000"
}

// ChunkingConfig controls how extracted text is split into chunks.
type ChunkingConfig struct {
	ChunkSize    int    `yaml:"chunkSize"`    // target chunk length (characters or tokens)
	ChunkOverlap int    `yaml:"chunkOverlap"` // shared length between consecutive chunks
	Splitter     string `yaml:"splitter"`     // "character" (default) or "token"
}

// RetrievalConfig controls similarity search behaviour.
type RetrievalConfig struct {
	TopK int `yaml:"topK"` // number of chunks fetched per question
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama", "openai" or "gemini"
	Model    string `yaml:"model"`    // model name, e.g. "nomic-embed-text"
	BaseURL  string `yaml:"baseURL"`  // provider endpoint (ollama only)
	APIKey   string `yaml:"apiKey"`   // credential; env DOCCHAT_EMBEDDING_API_KEY overrides
}

// LLMConfig selects and configures the chat model used for answer synthesis.
type LLMConfig struct {
	Provider       string  `yaml:"provider"`       // "ollama", "openai" or "gemini"
	Model          string  `yaml:"model"`          // model name, e.g. "gpt-3.5-turbo"
	BaseURL        string  `yaml:"baseURL"`        // provider endpoint (ollama only)
	APIKey         string  `yaml:"apiKey"`         // credential; env DOCCHAT_LLM_API_KEY overrides
	Temperature    float32 `yaml:"temperature"`    // sampling temperature
	TimeoutSeconds int     `yaml:"timeoutSeconds"` // per-call deadline
	MaxRetries     int     `yaml:"maxRetries"`     // retries on transient failures
}

// MilvusConfig holds the connection settings for a Milvus-backed index.
type MilvusConfig struct {
	Address    string `yaml:"address"`    // Milvus service address
	Collection string `yaml:"collection"` // collection name
}

// ChromemConfig holds the settings for the embedded chromem-go index.
type ChromemConfig struct {
	Path       string `yaml:"path"`       // on-disk directory for persistence
	Collection string `yaml:"collection"` // collection name
}

// VectorStoreConfig selects the vector index backend.
type VectorStoreConfig struct {
	Backend string        `yaml:"backend"` // "memory", "chromem" or "milvus"
	Milvus  MilvusConfig  `yaml:"milvus"`
	Chromem ChromemConfig `yaml:"chromem"`
}

// StorageConfig holds local file storage settings.
type StorageConfig struct {
	UploadDir string `yaml:"uploadDir"` // directory for raw uploaded files
}

// Config is the root configuration for the service.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	LLM         LLMConfig         `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	Storage     StorageConfig     `yaml:"storage"`
}

// Default returns a Config with the documented defaults applied.
func Default() *Config {
	return &Config{
		Server:      ServerConfig{Address: ":8000"},
		Chunking:    ChunkingConfig{ChunkSize: 1000, ChunkOverlap: 200, Splitter: "character"},
		Retrieval:   RetrievalConfig{TopK: 3},
		Embedding:   EmbeddingConfig{Provider: "ollama", Model: "nomic-embed-text"},
		LLM:         LLMConfig{Provider: "openai", Model: "gpt-3.5-turbo", Temperature: 0.3, TimeoutSeconds: 10, MaxRetries: 2},
		VectorStore: VectorStoreConfig{Backend: "memory", Chromem: ChromemConfig{Path: "./chromem_db", Collection: "docchat"}},
		Storage:     StorageConfig{UploadDir: "./uploaded_docs"},
	}
}

// LoadConfig reads a yaml configuration file, applies defaults for missing
// values, then applies environment overrides for credentials.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file is fine, run with defaults plus env.
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets credentials come from the environment so they never have to
// live in the yaml file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCCHAT_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("DOCCHAT_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = v
		}
		if cfg.Embedding.Provider == "openai" && cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = v
		}
	}
	if v := os.Getenv("DOCCHAT_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
}
