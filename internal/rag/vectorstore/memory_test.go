package vectorstore

import (
	"context"
	"testing"

	"docchat/internal/rag/ragtest"
	"docchat/internal/rag/schema"

	"github.com/stretchr/testify/require"
)

func chunk(id, text, docID string) *schema.Document {
	embedder := &ragtest.FakeEmbedder{}
	emb, _ := embedder.Embed(context.Background(), text)
	return &schema.Document{
		ID:        id,
		Text:      text,
		Embedding: emb,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName:   "doc.pdf",
			schema.MetadataKeyPageLabel:  "1",
			schema.MetadataKeyDocumentID: docID,
		},
	}
}

func TestMemoryStoreRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	embedder := &ragtest.FakeEmbedder{}

	require.NoError(t, store.Add(ctx, []*schema.Document{
		chunk("a", "The capital of France is Paris.", "d1"),
		chunk("b", "Bananas are yellow tropical fruits.", "d1"),
		chunk("c", "Go is a statically typed language.", "d1"),
	}))

	query, err := embedder.Embed(ctx, "What is the capital of France?")
	require.NoError(t, err)

	results, err := store.Query(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "a", results[0].ID, "the France chunk should rank first")
	require.NotNil(t, results[0].Metadata[schema.MetadataKeyScore])
}

func TestMemoryStoreQueryClampsTopK(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Add(ctx, []*schema.Document{chunk("a", "only one", "d1")}))

	query, _ := (&ragtest.FakeEmbedder{}).Embed(ctx, "anything")
	results, err := store.Query(ctx, query, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestMemoryStoreDeleteByDocumentID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Add(ctx, []*schema.Document{
		chunk("a", "first upload text", "d1"),
		chunk("b", "second upload text", "d2"),
	}))

	require.NoError(t, store.Delete(ctx, []string{"d1"}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMemoryStoreResetIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Add(ctx, []*schema.Document{chunk("a", "some text", "d1")}))

	require.NoError(t, store.Reset(ctx))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// Resetting an already-empty store is a no-op success.
	require.NoError(t, store.Reset(ctx))
}

func TestMemoryStoreResultCopiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Add(ctx, []*schema.Document{chunk("a", "some text", "d1")}))

	query, _ := (&ragtest.FakeEmbedder{}).Embed(ctx, "some text")
	results, err := store.Query(ctx, query, 1)
	require.NoError(t, err)
	results[0].Metadata["mutated"] = true

	again, err := store.Query(ctx, query, 1)
	require.NoError(t, err)
	_, leaked := again[0].Metadata["mutated"]
	require.False(t, leaked, "query results must not alias stored metadata")
}
