package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"

	"github.com/philippgille/chromem-go"
)

// ChromemStore implements the VectorStore interface on top of chromem-go,
// an embedded vector database persisted to local disk. It gives durable
// storage without running a separate vector database server.
type ChromemStore struct {
	log        *logger.Logger
	db         *chromem.DB
	collection *chromem.Collection
	name       string
}

// NewChromemStore opens (or creates) a persistent chromem database at path
// and binds the named collection.
func NewChromemStore(path, collectionName string, log *logger.Logger) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem database: %w", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return &ChromemStore{log: log, db: db, collection: collection, name: collectionName}, nil
}

// Add inserts chunk documents with their precomputed embeddings.
func (s *ChromemStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		metadata := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			metadata[k] = fmt.Sprintf("%v", v)
		}
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Text,
			Metadata:  metadata,
			Embedding: doc.Embedding,
		}
	}
	if err := s.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Query performs a similarity search against the collection.
func (s *ChromemStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	docs := make([]*schema.Document, 0, len(results))
	for _, res := range results {
		doc := &schema.Document{
			ID:   res.ID,
			Text: res.Content,
			Metadata: map[string]interface{}{
				schema.MetadataKeyScore: res.Similarity,
			},
		}
		for k, v := range res.Metadata {
			doc.Metadata[k] = v
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes every chunk belonging to the given upload ids.
func (s *ChromemStore) Delete(ctx context.Context, documentIDs []string) error {
	for _, id := range documentIDs {
		where := map[string]string{schema.MetadataKeyDocumentID: id}
		if err := s.collection.Delete(ctx, where, nil); err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
	}
	return nil
}

// Count reports the number of indexed chunks.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Reset drops and recreates the collection.
func (s *ChromemStore) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	collection, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	s.collection = collection
	return nil
}

// compile-time check to ensure ChromemStore implements the VectorStore interface
var _ interfaces.VectorStore = (*ChromemStore)(nil)
