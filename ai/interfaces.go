package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// Inputs are sent to the service in fixed-size batches; the returned
	// slice always has the same length and order as the input texts.
	// An empty input yields an empty result without a service call.
	// Returns an error if any batch fails. Implementations do not retry
	// internally - the caller decides whether to retry or abort.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces completions from a hosted language model.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends a system prompt and user message to the model and
	// returns the text of the first response choice.
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
