package splitters

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"
	"docchat/internal/rag/schema"

	"github.com/google/uuid"
)

// boundaryWindow is the fraction of the chunk size, counted back from the
// hard cut, inside which a natural boundary may shorten the chunk.
const boundaryWindow = 0.5

// CharacterSplitter implements the Splitter interface by cutting text into
// rune-length chunks. It prefers paragraph, sentence and word boundaries
// near the cut point, falling back to hard cuts, and every chunk after the
// first starts exactly ChunkOverlap runes before the previous chunk's end.
type CharacterSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewCharacterSplitter creates a new CharacterSplitter.
// It rejects degenerate parameter combinations up front.
func NewCharacterSplitter(chunkSize, chunkOverlap int) (*CharacterSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ragerr.ErrInvalidConfig, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", ragerr.ErrInvalidConfig, chunkOverlap, chunkSize)
	}
	return &CharacterSplitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}, nil
}

// Split splits each document into overlapping chunks, copying the source
// document's metadata onto every chunk.
func (s *CharacterSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	var chunks []*schema.Document

	for _, doc := range docs {
		runes := []rune(doc.Text)
		chunkNumber := 1

		for start := 0; start < len(runes); {
			end := start + s.ChunkSize
			if end >= len(runes) {
				end = len(runes)
			} else {
				end = s.naturalEnd(runes, start, end)
			}

			newDoc := &schema.Document{
				ID:       uuid.New().String(),
				Text:     string(runes[start:end]),
				Metadata: copyMetadata(doc.Metadata),
			}
			newDoc.Metadata[schema.MetadataKeyChunkNumber] = chunkNumber
			chunks = append(chunks, newDoc)
			chunkNumber++

			if end == len(runes) {
				break
			}
			// The next chunk re-reads exactly ChunkOverlap runes of this one.
			start = end - s.ChunkOverlap
		}
	}

	return chunks, nil
}

// naturalEnd moves the cut point backwards to the nearest paragraph, line,
// sentence or word boundary, as long as it stays within the boundary window
// and ahead of the overlap region. Returns the hard cut when none is found.
func (s *CharacterSplitter) naturalEnd(runes []rune, start, hardEnd int) int {
	window := int(float64(s.ChunkSize) * boundaryWindow)
	limit := hardEnd - window
	// Never cut so far back that the next chunk would not advance.
	if min := start + s.ChunkOverlap + 1; limit < min {
		limit = min
	}
	if limit >= hardEnd {
		return hardEnd
	}

	section := string(runes[limit:hardEnd])
	for _, sep := range []string{"\n\n", "\n", ". ", "! ", "? ", " "} {
		if i := strings.LastIndex(section, sep); i >= 0 {
			return limit + len([]rune(section[:i+len(sep)]))
		}
	}
	return hardEnd
}

func copyMetadata(md map[string]interface{}) map[string]interface{} {
	newMd := make(map[string]interface{}, len(md))
	for k, v := range md {
		newMd[k] = v
	}
	return newMd
}

// compile-time check to ensure CharacterSplitter implements the Splitter interface
var _ interfaces.Splitter = (*CharacterSplitter)(nil)
