package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/loaders"
	"docchat/internal/rag/pipeline"
	"docchat/internal/rag/schema"
	"docchat/internal/rag/synthesis"
	"docchat/pkg/logger"

	"github.com/google/uuid"
)

// UploadResult describes a successfully indexed upload.
type UploadResult struct {
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
}

// AskResult is the assembled response to a question.
type AskResult struct {
	Answer  string               `json:"answer"`
	Kind    synthesis.AnswerKind `json:"kind"`
	Sources []string             `json:"source_documents"`
}

// Exchange records one question/answer round for the session history.
type Exchange struct {
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Kind     synthesis.AnswerKind `json:"kind"`
	Sources  []string             `json:"source_documents"`
	AskedAt  time.Time            `json:"asked_at"`
}

// Health reports the service's view of its index.
type Health struct {
	Status         string `json:"status"`
	Initialized    bool   `json:"vectorstore_initialized"`
	DocumentsCount int    `json:"documents_count"`
}

// Service is the retrieval orchestrator: it coordinates chunking, embedding
// and indexing on upload, and embedding, similarity search, synthesis and
// response assembly on query.
type Service struct {
	log         *logger.Logger
	indexing    *pipeline.IndexingPipeline
	retrieval   *pipeline.RetrievalPipeline
	synthesizer *synthesis.Synthesizer
	vectorStore interfaces.VectorStore
	uploadDir   string
	defaultTopK int

	mu      sync.Mutex
	history []Exchange
}

// New creates the orchestrator from its collaborators.
func New(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	synthesizer *synthesis.Synthesizer,
	uploadDir string,
	defaultTopK int,
	log *logger.Logger,
) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	return &Service{
		log:         log,
		indexing:    pipeline.NewIndexingPipeline(splitter, embedder, vectorStore, log),
		retrieval:   pipeline.NewRetrievalPipeline(embedder, vectorStore, log),
		synthesizer: synthesizer,
		vectorStore: vectorStore,
		uploadDir:   uploadDir,
		defaultTopK: defaultTopK,
	}
}

// Synthesizer exposes the answer synthesizer, mainly for reconfiguration.
func (s *Service) Synthesizer() *synthesis.Synthesizer {
	return s.synthesizer
}

// Upload stores the raw file and indexes its content. The document is
// queryable immediately on success; on failure no chunks of it remain
// indexed.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	filename = filepath.Base(filename)

	loader, err := loaders.ForUpload(filename, data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	documentID := uuid.New().String()
	pages, chunks, err := s.indexing.Run(ctx, loader, path, documentID)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Filename:   filename,
		DocumentID: documentID,
		Pages:      pages,
		Chunks:     chunks,
	}, nil
}

// Ask retrieves the chunks most relevant to the question, synthesizes an
// answer (or falls back to excerpts), and records the exchange.
func (s *Service) Ask(ctx context.Context, question string, topK int) (*AskResult, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	retrieved, err := s.retrieval.Run(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	answer := s.synthesizer.Answer(ctx, question, retrieved)
	result := &AskResult{
		Answer:  answer.Text,
		Kind:    answer.Kind,
		Sources: citations(retrieved),
	}

	s.mu.Lock()
	s.history = append(s.history, Exchange{
		Question: question,
		Answer:   result.Answer,
		Kind:     result.Kind,
		Sources:  result.Sources,
		AskedAt:  time.Now(),
	})
	s.mu.Unlock()

	return result, nil
}

// Reset clears the vector index, the stored uploads and the session history.
// Resetting an already-empty service succeeds.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.vectorStore.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset vector store: %w", err)
	}

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to list uploads: %w", err)
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(s.uploadDir, entry.Name())); err != nil {
			s.log.WithError(err).Warn("Failed to remove uploaded file")
		}
	}

	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()

	s.log.Info("Index, uploads and history cleared")
	return nil
}

// Health reports the index document count.
func (s *Service) Health(ctx context.Context) (*Health, error) {
	count, err := s.vectorStore.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Health{
		Status:         "healthy",
		Initialized:    true,
		DocumentsCount: count,
	}, nil
}

// History returns a copy of the session's question/answer exchanges.
func (s *Service) History() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// citations builds the deduplicated "file (Page N)" source list in order of
// first appearance among the retrieved chunks.
func citations(docs []*schema.Document) []string {
	sources := make([]string, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		name := doc.FileName()
		if name == "" {
			name = "Unknown"
		}
		page := doc.PageLabel()
		if page == "" {
			page = "N/A"
		}
		citation := fmt.Sprintf("%s (Page %s)", name, page)
		if !seen[citation] {
			seen[citation] = true
			sources = append(sources, citation)
		}
	}
	return sources
}
