package search

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/ai"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/storage"
)

const (
	// DefaultTopK is the default number of results returned.
	DefaultTopK = 10
	// DefaultThreshold is the default minimum cosine similarity.
	DefaultThreshold = 0.5
)

// Retriever performs semantic retrieval over indexed chunks.
//
// Retrieval is strictly best-effort: a failure to embed the query or to
// reach the store yields an empty result set, never an error. Callers
// treat "nothing relevant indexed yet" and "retrieval briefly broken"
// the same way, so the distinction only matters in the logs.
type Retriever struct {
	chunks    storage.ChunkRepository
	embedder  ai.Embedder
	topK      int
	threshold float32
	logger    *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "search")
		return nil
	}
}

// WithTopK sets the maximum number of results returned.
func WithTopK(topK int) Option {
	return func(r *Retriever) error {
		if topK <= 0 {
			return ErrInvalidTopK
		}
		r.topK = topK
		return nil
	}
}

// WithThreshold sets the minimum cosine similarity for a chunk to be
// considered relevant.
func WithThreshold(threshold float32) Option {
	return func(r *Retriever) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		r.threshold = threshold
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(chunks storage.ChunkRepository, provider ai.Provider, opts ...Option) (*Retriever, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		chunks:    chunks,
		embedder:  provider.Embedder(),
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Search retrieves the chunks most similar to the query, ranked by
// cosine similarity descending. A non-nil scope restricts the search to
// one briefing's chunks; uuid.Nil searches the whole corpus.
func (r *Retriever) Search(ctx context.Context, query string, scope uuid.UUID) []*core.RetrievalResult {
	return r.SearchWithMonitor(ctx, query, scope, nil)
}

// SearchWithMonitor is Search with observation hooks for each retrieval
// stage.
func (r *Retriever) SearchWithMonitor(ctx context.Context, query string, scope uuid.UUID, monitor RetrievalMonitor) []*core.RetrievalResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	if query == "" {
		monitor.Finish(nil)
		return nil
	}

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		monitor.Finish(nil)
		return nil
	}
	monitor.AfterEmbedding(embedding)

	results, err := r.chunks.FindSimilar(ctx, embedding, r.threshold, r.topK, scope)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		monitor.Finish(nil)
		return nil
	}
	monitor.AfterVectorSearch(results)

	monitor.Finish(results)
	return results
}
