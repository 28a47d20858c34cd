package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrChunkerRequired is returned when a nil chunker is configured.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrInvalidBatchSize is returned when a non-positive batch size is configured.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrEmbeddingMismatch is returned when the embedding count does not match the chunk count.
	ErrEmbeddingMismatch = errors.New("embedding result count mismatch")
)
