package pipeline

import (
	"context"
	"fmt"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// RetrievalPipeline orchestrates retrieving the chunks most relevant to a
// question: embed the question with the same provider used for indexing,
// then rank stored chunks by vector similarity.
type RetrievalPipeline struct {
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewRetrievalPipeline creates a new RetrievalPipeline.
func NewRetrievalPipeline(
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	log *logger.Logger,
) *RetrievalPipeline {
	return &RetrievalPipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run returns the topK chunks most similar to the question, best first.
// Querying an empty index fails with ErrNoDocuments.
func (p *RetrievalPipeline) Run(ctx context.Context, question string, topK int) ([]*schema.Document, error) {
	count, err := p.vectorStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check index: %w", err)
	}
	if count == 0 {
		return nil, ragerr.ErrNoDocuments
	}

	queryEmbedding, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ragerr.ErrEmbedding, err)
	}

	retrieved, err := p.vectorStore.Query(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	p.log.Info(fmt.Sprintf("Retrieved %d chunks for question", len(retrieved)))
	return retrieved, nil
}
