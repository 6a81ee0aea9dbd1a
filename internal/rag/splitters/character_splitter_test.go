package splitters

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docchat/internal/config"
	"docchat/internal/rag/ragerr"
	"docchat/internal/rag/schema"

	"github.com/stretchr/testify/require"
)

func pageDoc(text string) *schema.Document {
	return &schema.Document{
		ID:   "page-1",
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName:  "doc.pdf",
			schema.MetadataKeyPageLabel: "1",
		},
	}
}

func TestCharacterSplitterRejectsBadParams(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"negative overlap", 100, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCharacterSplitter(tc.size, tc.overlap)
			require.Error(t, err)
			require.True(t, errors.Is(err, ragerr.ErrInvalidConfig))
		})
	}
}

func TestCharacterSplitterShortDocumentSingleChunk(t *testing.T) {
	s, err := NewCharacterSplitter(1000, 200)
	require.NoError(t, err)

	chunks, err := s.Split(context.Background(), []*schema.Document{pageDoc("a short page")})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "a short page", chunks[0].Text)
	require.Equal(t, "doc.pdf", chunks[0].FileName())
	require.Equal(t, "1", chunks[0].PageLabel())
}

func TestCharacterSplitterExactOverlap(t *testing.T) {
	// Uniform text without natural boundaries forces hard cuts, making the
	// overlap width exact and checkable.
	text := strings.Repeat("x", 95)
	s, err := NewCharacterSplitter(40, 10)
	require.NoError(t, err)

	chunks, err := s.Split(context.Background(), []*schema.Document{pageDoc(text)})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		overlap := string(prev[len(prev)-10:])
		require.True(t, strings.HasPrefix(string(cur), overlap),
			"chunk %d must start with the last 10 runes of chunk %d", i, i-1)
	}
}

func TestCharacterSplitterCoversFullText(t *testing.T) {
	text := "The capital of France is Paris. " +
		"It has been the political centre of the country for centuries. " +
		"The city sits on the Seine and is known for its museums and cafes. " +
		"Millions of people visit every year to see its monuments."
	s, err := NewCharacterSplitter(60, 15)
	require.NoError(t, err)

	chunks, err := s.Split(context.Background(), []*schema.Document{pageDoc(text)})
	require.NoError(t, err)

	// Stitch chunks back together, dropping each chunk's overlap prefix.
	runes := []rune(text)
	var rebuilt []rune
	for i, chunk := range chunks {
		cr := []rune(chunk.Text)
		if i == 0 {
			rebuilt = append(rebuilt, cr...)
		} else {
			rebuilt = append(rebuilt, cr[15:]...)
		}
	}
	require.Equal(t, string(runes), string(rebuilt))
}

func TestCharacterSplitterPrefersNaturalBoundaries(t *testing.T) {
	text := "First sentence is here. Second sentence follows it. Third sentence closes."
	s, err := NewCharacterSplitter(40, 5)
	require.NoError(t, err)

	chunks, err := s.Split(context.Background(), []*schema.Document{pageDoc(text)})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// The first cut should land after a sentence end, not mid-word.
	first := chunks[0].Text
	require.True(t, strings.HasSuffix(strings.TrimSpace(first), "."),
		"expected first chunk to end at a sentence boundary, got %q", first)
}

func TestCharacterSplitterChunkNumbers(t *testing.T) {
	s, err := NewCharacterSplitter(30, 5)
	require.NoError(t, err)

	chunks, err := s.Split(context.Background(), []*schema.Document{pageDoc(strings.Repeat("y", 80))})
	require.NoError(t, err)
	for i, chunk := range chunks {
		require.Equal(t, i+1, chunk.Metadata[schema.MetadataKeyChunkNumber])
	}
}

func TestCharacterSplitterDoesNotShareMetadata(t *testing.T) {
	s, err := NewCharacterSplitter(30, 5)
	require.NoError(t, err)

	chunks, err := s.Split(context.Background(), []*schema.Document{pageDoc(strings.Repeat("z", 80))})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	chunks[0].Metadata["marker"] = true
	_, shared := chunks[1].Metadata["marker"]
	require.False(t, shared, "chunks must not share metadata maps")
}

func TestNewFromConfigSelectsSplitter(t *testing.T) {
	_, err := NewFromConfig(config.ChunkingConfig{ChunkSize: 100, ChunkOverlap: 20, Splitter: "character"})
	require.NoError(t, err)

	_, err = NewFromConfig(config.ChunkingConfig{ChunkSize: 100, ChunkOverlap: 20, Splitter: "nope"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ragerr.ErrInvalidConfig))
}
