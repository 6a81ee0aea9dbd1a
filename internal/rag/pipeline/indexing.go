package pipeline

import (
	"context"
	"fmt"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// embedBatchSize caps how many chunk texts go into one provider call.
	embedBatchSize = 16
	// embedConcurrency caps how many provider calls run at once.
	embedConcurrency = 4
)

// IndexingPipeline orchestrates loading, splitting, embedding and storing an
// uploaded document. A document either becomes fully queryable or leaves the
// index untouched: all embeddings are computed before anything is inserted,
// and a failed insert is rolled back by upload id.
type IndexingPipeline struct {
	splitter    interfaces.Splitter
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		splitter:    splitter,
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run executes the indexing pipeline for the file at path, tagging every
// produced chunk with documentID. It returns the page and chunk counts.
func (p *IndexingPipeline) Run(ctx context.Context, loader interfaces.Loader, path, documentID string) (pages, chunkCount int, err error) {
	p.log.Info(fmt.Sprintf("Starting indexing for: %s", path))

	// 1. Load the data, one document per page.
	pageDocs, err := loader.Load(ctx, path)
	if err != nil {
		return 0, 0, err
	}

	// 2. Split pages into chunks.
	chunks, err := p.splitter.Split(ctx, pageDocs)
	if err != nil {
		return 0, 0, err
	}
	p.log.Info(fmt.Sprintf("Split %d pages into %d chunks", len(pageDocs), len(chunks)))

	// 3. Tag every chunk with its upload id.
	for _, chunk := range chunks {
		if chunk.Metadata == nil {
			chunk.Metadata = make(map[string]interface{})
		}
		chunk.Metadata[schema.MetadataKeyDocumentID] = documentID
	}

	// 4. Embed the chunks. This must complete in full before any insert so
	// an embedding failure cannot leave a partially indexed document.
	if err := p.embedChunks(ctx, chunks); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ragerr.ErrEmbedding, err)
	}

	// 5. Store the chunks, undoing the insert if it fails midway.
	if err := p.vectorStore.Add(ctx, chunks); err != nil {
		if delErr := p.vectorStore.Delete(ctx, []string{documentID}); delErr != nil {
			p.log.WithError(delErr).Error("Failed to roll back partial insert")
		}
		return 0, 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	p.log.Info(fmt.Sprintf("Successfully finished indexing for: %s", path))
	return len(pageDocs), len(chunks), nil
}

// embedChunks requests embeddings in bounded concurrent batches and writes
// them back onto the chunks.
func (p *IndexingPipeline) embedChunks(ctx context.Context, chunks []*schema.Document) error {
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		eg.Go(func() error {
			texts := make([]string, len(batch))
			for i, chunk := range batch {
				texts[i] = chunk.Text
			}
			embeddings, err := p.embedder.EmbedBatch(gCtx, texts)
			if err != nil {
				return err
			}
			if len(embeddings) != len(batch) {
				return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(embeddings))
			}
			for i, chunk := range batch {
				chunk.Embedding = embeddings[i]
			}
			return nil
		})
	}

	return eg.Wait()
}
