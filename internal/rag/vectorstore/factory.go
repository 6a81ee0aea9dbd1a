package vectorstore

import (
	"context"
	"fmt"

	"docchat/internal/config"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"
	"docchat/pkg/logger"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

// NewFromConfig builds the vector store backend named by the configuration.
// dim is the embedding dimensionality, needed to create a Milvus collection.
func NewFromConfig(ctx context.Context, cfg config.VectorStoreConfig, dim int, log *logger.Logger) (interfaces.VectorStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "chromem":
		return NewChromemStore(cfg.Chromem.Path, cfg.Chromem.Collection, log)
	case "milvus":
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Milvus.Address})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
		}
		return NewMilvusStore(ctx, c, cfg.Milvus.Collection, dim, log)
	default:
		return nil, fmt.Errorf("%w: unknown vector store backend %q", ragerr.ErrInvalidConfig, cfg.Backend)
	}
}
