package loaders

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docchat/internal/rag/ragerr"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestForUploadSelectsByExtension(t *testing.T) {
	loader, err := ForUpload("notes.txt", []byte("hello"))
	require.NoError(t, err)
	require.IsType(t, &TxtLoader{}, loader)

	loader, err = ForUpload("README.md", []byte("# hello"))
	require.NoError(t, err)
	require.IsType(t, &MarkdownLoader{}, loader)

	loader, err = ForUpload("paper.PDF", []byte("%PDF-1.4 ..."))
	require.NoError(t, err)
	require.IsType(t, &PdfLoader{}, loader)
}

func TestForUploadRejectsUnknownExtension(t *testing.T) {
	_, err := ForUpload("slides.pptx", []byte("whatever"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ragerr.ErrUnsupportedFormat))
}

func TestForUploadRejectsMislabelledPdf(t *testing.T) {
	_, err := ForUpload("fake.pdf", []byte("just plain text, no pdf header"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ragerr.ErrUnsupportedFormat))
}

func TestTxtLoader(t *testing.T) {
	path := writeFile(t, "notes.txt", "line one\nline two\n")

	docs, err := NewTxtLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "line one\nline two\n", docs[0].Text)
	require.Equal(t, "notes.txt", docs[0].FileName())
	require.Equal(t, "1", docs[0].PageLabel())
}

func TestTxtLoaderEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", "   \n\t\n")

	_, err := NewTxtLoader().Load(context.Background(), path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ragerr.ErrUnsupportedFormat))
}

func TestMarkdownLoaderStripsImages(t *testing.T) {
	path := writeFile(t, "doc.md", "# Title\n\nSome text ![alt text](img/diagram.png) continues here.\n")

	docs, err := NewMarkdownLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Contains(t, docs[0].Text, "Some text")
	require.Contains(t, docs[0].Text, "continues here")
	require.NotContains(t, docs[0].Text, "img/diagram.png")
}
