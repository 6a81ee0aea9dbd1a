package loaders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"
	"docchat/internal/rag/schema"

	"github.com/google/uuid"
)

// MarkdownLoader implements the Loader interface for reading Markdown (.md) files.
type MarkdownLoader struct{}

// NewMarkdownLoader creates a new MarkdownLoader.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// imageRegex matches Markdown image syntax (e.g., ![alt text](path/to/image.jpg)).
var imageRegex = regexp.MustCompile(`!\[.*?\]\(.*?\)`)

// Load reads a Markdown file and returns its text content with image
// references stripped, as a single page-1 Document.
func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := imageRegex.ReplaceAllString(string(content), "")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text content in %s", ragerr.ErrUnsupportedFormat, filepath.Base(path))
	}

	doc := &schema.Document{
		ID:   uuid.New().String(),
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName:  filepath.Base(path),
			schema.MetadataKeyPageLabel: "1",
		},
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure MarkdownLoader implements the Loader interface
var _ interfaces.Loader = (*MarkdownLoader)(nil)
