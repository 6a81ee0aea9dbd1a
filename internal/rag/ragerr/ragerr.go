package ragerr

import "errors"

// Sentinel errors for the failure modes the orchestrator surfaces to its
// caller. Handlers translate these into structured HTTP responses; anything
// not wrapping one of them is treated as an internal error.
var (
	// ErrInvalidConfig signals bad chunking or retrieval parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat signals an upload whose text cannot be extracted.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmbedding signals an embedding provider failure during indexing or querying.
	ErrEmbedding = errors.New("embedding provider failure")

	// ErrNoDocuments signals a query against an empty index.
	ErrNoDocuments = errors.New("no documents indexed")
)
