package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// Schema fields for the Milvus collection.
	FieldID         = "id"
	FieldEmbedding  = "embedding"
	FieldText       = "text"
	FieldFileName   = "file_name"
	FieldPageLabel  = "page_label"
	FieldDocumentID = "document_id"

	maxTextLength  = 65535
	maxLabelLength = 512
)

// MilvusStore implements the VectorStore interface on top of a Milvus
// collection. Chunk text and citation metadata are stored alongside the
// vector so retrieval needs no secondary lookup.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
	dim        int
}

// NewMilvusStore connects the store to a collection, creating it together
// with its vector index when it does not exist yet.
func NewMilvusStore(ctx context.Context, c client.Client, collection string, dim int, log *logger.Logger) (*MilvusStore, error) {
	if c == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	s := &MilvusStore{log: log, client: c, collection: collection, dim: dim}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("document chunks with embeddings").
			WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim))).
			WithField(entity.NewField().WithName(FieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxTextLength)).
			WithField(entity.NewField().WithName(FieldFileName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxLabelLength)).
			WithField(entity.NewField().WithName(FieldPageLabel).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxLabelLength)).
			WithField(entity.NewField().WithName(FieldDocumentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64))
		if err := s.client.CreateCollection(ctx, collSchema, 1); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to build index definition: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// Add inserts a list of chunk documents into the Milvus collection.
func (s *MilvusStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))
	texts := make([]string, len(docs))
	fileNames := make([]string, len(docs))
	pageLabels := make([]string, len(docs))
	documentIDs := make([]string, len(docs))

	for i, doc := range docs {
		ids[i] = doc.ID
		embeddings[i] = doc.Embedding
		texts[i] = doc.Text
		fileNames[i] = doc.FileName()
		pageLabels[i] = doc.PageLabel()
		documentIDs[i] = doc.DocumentID()
	}

	s.log.Info(fmt.Sprintf("Inserting %d chunks into Milvus collection %s", len(docs), s.collection))
	_, err := s.client.Insert(ctx, s.collection, "", /* default partition */
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldEmbedding, s.dim, embeddings),
		entity.NewColumnVarChar(FieldText, texts),
		entity.NewColumnVarChar(FieldFileName, fileNames),
		entity.NewColumnVarChar(FieldPageLabel, pageLabels),
		entity.NewColumnVarChar(FieldDocumentID, documentIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert data into Milvus: %w", err)
	}
	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	return nil
}

// Query performs a cosine-similarity vector search in the collection.
func (s *MilvusStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	searchParams, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}
	outputFields := []string{FieldID, FieldText, FieldFileName, FieldPageLabel, FieldDocumentID}

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		FieldEmbedding, entity.COSINE, topK, searchParams,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var results []*schema.Document
	for _, res := range searchResults {
		column := func(name string) []string {
			for _, field := range res.Fields {
				if field.Name() == name {
					if col, ok := field.(*entity.ColumnVarChar); ok {
						return col.Data()
					}
				}
			}
			return nil
		}

		idData := column(FieldID)
		textData := column(FieldText)
		fileData := column(FieldFileName)
		pageData := column(FieldPageLabel)
		docIDData := column(FieldDocumentID)
		if idData == nil {
			s.log.Warn("Search result is missing ID field, skipping")
			continue
		}

		for i := 0; i < res.ResultCount; i++ {
			doc := &schema.Document{
				ID: idData[i],
				Metadata: map[string]interface{}{
					schema.MetadataKeyScore: res.Scores[i],
				},
			}
			if textData != nil {
				doc.Text = textData[i]
			}
			if fileData != nil {
				doc.Metadata[schema.MetadataKeyFileName] = fileData[i]
			}
			if pageData != nil {
				doc.Metadata[schema.MetadataKeyPageLabel] = pageData[i]
			}
			if docIDData != nil {
				doc.Metadata[schema.MetadataKeyDocumentID] = docIDData[i]
			}
			results = append(results, doc)
		}
	}

	return results, nil
}

// Delete removes every chunk belonging to the given upload ids.
func (s *MilvusStore) Delete(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	quoted := make([]string, len(documentIDs))
	for i, id := range documentIDs {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	expr := fmt.Sprintf("%s in [%s]", FieldDocumentID, strings.Join(quoted, ", "))
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("failed to delete from Milvus: %w", err)
	}
	return nil
}

// Count reports the number of indexed chunks.
func (s *MilvusStore) Count(ctx context.Context) (int, error) {
	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return 0, fmt.Errorf("failed to flush collection: %w", err)
	}
	stats, err := s.client.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}
	var count int
	if _, err := fmt.Sscanf(stats["row_count"], "%d", &count); err != nil {
		return 0, fmt.Errorf("unexpected row_count %q: %w", stats["row_count"], err)
	}
	return count, nil
}

// Reset drops and recreates the collection.
func (s *MilvusStore) Reset(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		if err := s.client.DropCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}
	return s.ensureCollection(ctx)
}

// compile-time check to ensure MilvusStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MilvusStore)(nil)
