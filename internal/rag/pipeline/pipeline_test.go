package pipeline

import (
	"context"
	"errors"
	"testing"

	"docchat/internal/rag/ragerr"
	"docchat/internal/rag/ragtest"
	"docchat/internal/rag/schema"
	"docchat/internal/rag/splitters"
	"docchat/internal/rag/vectorstore"
	"docchat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// stubLoader serves fixed pages regardless of path.
type stubLoader struct {
	pages []string
	name  string
}

func (l *stubLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	docs := make([]*schema.Document, len(l.pages))
	for i, text := range l.pages {
		docs[i] = &schema.Document{
			ID:   uuid.New().String(),
			Text: text,
			Metadata: map[string]interface{}{
				schema.MetadataKeyFileName:  l.name,
				schema.MetadataKeyPageLabel: pageLabel(i + 1),
			},
		}
	}
	return docs, nil
}

func pageLabel(n int) string {
	return string(rune('0' + n))
}

func newPipelines(t *testing.T, embedder *ragtest.FakeEmbedder) (*IndexingPipeline, *RetrievalPipeline, *vectorstore.MemoryStore) {
	t.Helper()
	splitter, err := splitters.NewCharacterSplitter(200, 40)
	require.NoError(t, err)
	store := vectorstore.NewMemoryStore()
	log := logger.New("test")
	return NewIndexingPipeline(splitter, embedder, store, log),
		NewRetrievalPipeline(embedder, store, log),
		store
}

func TestIndexingEmbeddingFailureLeavesIndexUnchanged(t *testing.T) {
	ctx := context.Background()
	embedder := &ragtest.FakeEmbedder{Err: errors.New("embedding backend down")}
	indexing, _, store := newPipelines(t, embedder)

	loader := &stubLoader{name: "doc.pdf", pages: []string{"some page text"}}
	_, _, err := indexing.Run(ctx, loader, "doc.pdf", "d1")
	require.Error(t, err)
	require.True(t, errors.Is(err, ragerr.ErrEmbedding))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count, "a failed upload must leave no partial chunks")
}

func TestQueryBeforeAnyUpload(t *testing.T) {
	ctx := context.Background()
	_, retrieval, _ := newPipelines(t, &ragtest.FakeEmbedder{})

	_, err := retrieval.Run(ctx, "anything", 3)
	require.Error(t, err)
	require.True(t, errors.Is(err, ragerr.ErrNoDocuments))
}

func TestUploadThenRetrieveWithPageCitation(t *testing.T) {
	ctx := context.Background()
	embedder := &ragtest.FakeEmbedder{}
	indexing, retrieval, _ := newPipelines(t, embedder)

	loader := &stubLoader{
		name: "facts.pdf",
		pages: []string{
			"The capital of France is Paris. It is a large European city.",
			"Bananas are yellow tropical fruits rich in potassium.",
		},
	}
	pages, chunks, err := indexing.Run(ctx, loader, "facts.pdf", "d1")
	require.NoError(t, err)
	require.Equal(t, 2, pages)
	require.GreaterOrEqual(t, chunks, 2)

	results, err := retrieval.Run(ctx, "What is the capital of France?", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Contains(t, results[0].Text, "capital of France")
	require.Equal(t, "facts.pdf", results[0].FileName())
	require.Equal(t, "1", results[0].PageLabel())
	require.Equal(t, "d1", results[0].DocumentID())
}

func TestDuplicateUploadBothCopiesQueryable(t *testing.T) {
	ctx := context.Background()
	embedder := &ragtest.FakeEmbedder{}
	indexing, retrieval, store := newPipelines(t, embedder)

	loader := &stubLoader{name: "doc.pdf", pages: []string{"The capital of France is Paris."}}

	_, first, err := indexing.Run(ctx, loader, "doc.pdf", "d1")
	require.NoError(t, err)
	_, second, err := indexing.Run(ctx, loader, "doc.pdf", "d2")
	require.NoError(t, err)
	require.Equal(t, first, second)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, first+second, count)

	results, err := retrieval.Run(ctx, "capital of France", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := map[string]bool{results[0].DocumentID(): true, results[1].DocumentID(): true}
	require.True(t, ids["d1"] && ids["d2"], "both copies must be independently queryable")
}

func TestRetrievalReturnsRankedResults(t *testing.T) {
	ctx := context.Background()
	embedder := &ragtest.FakeEmbedder{}
	indexing, retrieval, _ := newPipelines(t, embedder)

	loader := &stubLoader{
		name: "mixed.pdf",
		pages: []string{
			"The capital of France is Paris.",
			"Cooking pasta requires boiling water and salt.",
			"Go routines communicate via channels.",
		},
	}
	_, _, err := indexing.Run(ctx, loader, "mixed.pdf", "d1")
	require.NoError(t, err)

	results, err := retrieval.Run(ctx, "What is the capital of France?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Contains(t, results[0].Text, "France", "most similar chunk must rank first")
}
