package loaders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"
	"docchat/internal/rag/schema"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// PdfLoader implements the Loader interface for reading PDF files.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load reads a PDF file, extracts the text of each page, and returns a
// Document per page that yielded text. A PDF without any extractable text
// (for example a scanned image) fails with ErrUnsupportedFormat.
func (l *PdfLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable PDF: %v", ragerr.ErrUnsupportedFormat, err)
	}

	var documents []*schema.Document
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the whole document.
			continue
		}
		text = normalizeText(text)
		if text == "" {
			continue
		}

		documents = append(documents, &schema.Document{
			ID:   uuid.New().String(),
			Text: text,
			Metadata: map[string]interface{}{
				schema.MetadataKeyFileName:  filepath.Base(path),
				schema.MetadataKeyPageLabel: fmt.Sprintf("%d", i),
			},
		})
	}

	if len(documents) == 0 {
		return nil, fmt.Errorf("%w: no extractable text in %s", ragerr.ErrUnsupportedFormat, filepath.Base(path))
	}

	return documents, nil
}

// normalizeText collapses carriage returns and strips blank lines, matching
// how extracted PDF text is cleaned before chunking.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
