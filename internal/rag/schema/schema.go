package schema

const (
	// MetadataKeyFileName is the key for the source file name.
	MetadataKeyFileName = "file_name"
	// MetadataKeyPageLabel is the key for the page number from the source document.
	MetadataKeyPageLabel = "page_label"
	// MetadataKeyDocumentID is the key for the upload this chunk came from.
	MetadataKeyDocumentID = "document_id"
	// MetadataKeyChunkNumber is the key for the chunk's ordinal within its page.
	MetadataKeyChunkNumber = "chunk_number"
	// MetadataKeyScore is the key for the similarity score set during retrieval.
	MetadataKeyScore = "score"
)

// Document is the central data structure representing a piece of text and its
// associated data. It is the primary data carrier throughout the RAG pipeline:
// loaders produce one Document per page, the splitter turns pages into chunk
// Documents, and retrieval returns chunk Documents ranked by similarity.
type Document struct {
	// ID is the unique identifier for this document chunk.
	ID string

	// Text is the string content of the document chunk.
	Text string

	// Embedding is the vector representation of the text.
	Embedding []float32

	// Metadata holds arbitrary data about the document, such as
	// file_name, page_label and document_id.
	Metadata map[string]interface{}
}

// FileName returns the source file name from metadata, or "" when absent.
func (d *Document) FileName() string {
	if v, ok := d.Metadata[MetadataKeyFileName].(string); ok {
		return v
	}
	return ""
}

// PageLabel returns the source page label from metadata, or "" when absent.
func (d *Document) PageLabel() string {
	if v, ok := d.Metadata[MetadataKeyPageLabel].(string); ok {
		return v
	}
	return ""
}

// DocumentID returns the owning upload's id from metadata, or "" when absent.
func (d *Document) DocumentID() string {
	if v, ok := d.Metadata[MetadataKeyDocumentID].(string); ok {
		return v
	}
	return ""
}
