package interfaces

import (
	"context"

	"docchat/internal/rag/schema"
)

// Loader is the interface for reading an uploaded file and converting it
// into a list of Document objects, typically one per page.
type Loader interface {
	Load(ctx context.Context, path string) ([]*schema.Document, error)
}

// Splitter is the interface for splitting a list of Documents into smaller chunks.
type Splitter interface {
	Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error)
}

// VectorStore is the interface for storing and querying document vectors.
type VectorStore interface {
	// Add inserts chunk documents with their embeddings.
	Add(ctx context.Context, docs []*schema.Document) error
	// Query returns the topK nearest chunks to the embedding, best first.
	Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error)
	// Delete removes all chunks belonging to the given upload ids.
	Delete(ctx context.Context, documentIDs []string) error
	// Count reports how many chunks are currently indexed.
	Count(ctx context.Context) (int, error)
	// Reset removes every chunk. Resetting an empty store is a no-op.
	Reset(ctx context.Context) error
}

// EmbeddingModel is the interface for a text embedding model.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is the interface for a large language model that can generate text.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
