package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"

	"github.com/gabriel-vasile/mimetype"
)

// ForUpload picks a Loader for an uploaded file based on its extension,
// cross-checked against the sniffed content type. A declared PDF whose bytes
// are not a PDF is rejected here rather than failing deeper in the pipeline.
func ForUpload(filename string, data []byte) (interfaces.Loader, error) {
	mtype := mimetype.Detect(data)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		if !mtype.Is("application/pdf") {
			return nil, fmt.Errorf("%w: %s does not contain PDF data (detected %s)",
				ragerr.ErrUnsupportedFormat, filename, mtype.String())
		}
		return NewPdfLoader(), nil
	case ".md", ".markdown":
		return NewMarkdownLoader(), nil
	case ".txt":
		return NewTxtLoader(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ragerr.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}
