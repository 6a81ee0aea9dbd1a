package splitters

import (
	"fmt"

	"docchat/internal/config"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragerr"
)

// NewFromConfig builds the splitter named by the chunking configuration.
func NewFromConfig(cfg config.ChunkingConfig) (interfaces.Splitter, error) {
	switch cfg.Splitter {
	case "", "character":
		return NewCharacterSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	case "token":
		return NewTokenSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	default:
		return nil, fmt.Errorf("%w: unknown splitter %q", ragerr.ErrInvalidConfig, cfg.Splitter)
	}
}
