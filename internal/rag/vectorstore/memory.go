package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
)

// MemoryStore is a thread-safe, in-memory implementation of the VectorStore
// interface using brute-force cosine similarity. It is the default backend
// for single-process deployments and the backend used by the test suite.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []*schema.Document
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends chunk documents to the store.
func (s *MemoryStore) Add(ctx context.Context, docs []*schema.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	return nil
}

// Query ranks every stored chunk by cosine similarity to the embedding and
// returns the topK best, most similar first. The similarity score is set on
// each result's metadata.
func (s *MemoryStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.docs) == 0 {
		return nil, nil
	}

	type scored struct {
		doc   *schema.Document
		score float32
	}
	candidates := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		candidates = append(candidates, scored{doc: doc, score: cosineSimilarity(embedding, doc.Embedding)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]*schema.Document, 0, topK)
	for _, c := range candidates[:topK] {
		// Copy so callers can annotate results without mutating the store.
		doc := &schema.Document{
			ID:        c.doc.ID,
			Text:      c.doc.Text,
			Embedding: c.doc.Embedding,
			Metadata:  make(map[string]interface{}, len(c.doc.Metadata)+1),
		}
		for k, v := range c.doc.Metadata {
			doc.Metadata[k] = v
		}
		doc.Metadata[schema.MetadataKeyScore] = c.score
		results = append(results, doc)
	}
	return results, nil
}

// Delete removes every chunk belonging to the given upload ids.
func (s *MemoryStore) Delete(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.docs[:0]
	for _, doc := range s.docs {
		if !drop[doc.DocumentID()] {
			kept = append(kept, doc)
		}
	}
	s.docs = kept
	return nil
}

// Count reports the number of indexed chunks.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Reset drops all chunks. Resetting an empty store is a no-op.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Vectors of mismatched or zero length score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// compile-time check to ensure MemoryStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MemoryStore)(nil)
