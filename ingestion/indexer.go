package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/warroom/ai"
	"github.com/poiesic/warroom/chunker"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/storage"
)

// DefaultBatchSize is the number of chunks persisted per storage write.
const DefaultBatchSize = 50

// Indexer chunks documents, embeds the chunks, and persists them under a
// briefing ID so later runs can retrieve them.
type Indexer struct {
	chunks      storage.ChunkRepository
	embedder    ai.Embedder
	chunker     *chunker.Chunker
	batchSize   int
	persistPool *ants.Pool
	logger      *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for persistence batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		if ix.persistPool != nil {
			ix.persistPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.persistPool = pool
		return nil
	}
}

// WithBatchSize sets the number of chunks per persistence batch.
func WithBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		ix.batchSize = size
		return nil
	}
}

// WithChunker sets a custom chunker.
// Default uses chunker.New with the package defaults.
func WithChunker(c *chunker.Chunker) Option {
	return func(ix *Indexer) error {
		if c == nil {
			return ErrChunkerRequired
		}
		ix.chunker = c
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewIndexer creates a new indexer.
func NewIndexer(chunks storage.ChunkRepository, provider ai.Provider, opts ...Option) (*Indexer, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		chunks:      chunks,
		embedder:    provider.Embedder(),
		chunker:     chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap),
		batchSize:   DefaultBatchSize,
		persistPool: pool,
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			ix.Release()
			return nil, err
		}
	}

	return ix, nil
}

// IndexDocuments chunks, embeds, and persists all documents under the
// briefing ID. Persistence runs in batches on the worker pool; a failed
// batch is logged and skipped without aborting the rest. Returns the
// number of chunks attempted.
func (ix *Indexer) IndexDocuments(ctx context.Context, briefingID uuid.UUID, docs []core.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	chunked := ix.chunker.ChunkDocuments(briefingID, docs)
	if len(chunked) == 0 {
		return 0, nil
	}
	chunks := make([]*core.Chunk, len(chunked))
	for i := range chunked {
		chunks[i] = &chunked[i]
	}
	ix.logger.Info("indexing documents", "documents", len(docs), "chunks", len(chunks), "briefing", briefingID)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ix.logger.Error("error generating embeddings for chunks", "err", err)
		return 0, err
	}
	if len(embeddings) != len(chunks) {
		return 0, ErrEmbeddingMismatch
	}
	for i := range embeddings {
		chunks[i].Vector = embeddings[i]
	}

	// Persist in batches. Insert order carries no meaning, so batches
	// can run concurrently; only the attempted count is aggregated.
	var (
		wg        sync.WaitGroup
		attempted atomic.Int64
	)
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		submitErr := ix.persistPool.Submit(func() {
			defer wg.Done()
			if _, err := ix.chunks.AddChunks(ctx, batch...); err != nil {
				ix.logger.Error("error persisting chunk batch", "batchSize", len(batch), "err", err)
				return
			}
			attempted.Add(int64(len(batch)))
		})
		if submitErr != nil {
			wg.Done()
			ix.logger.Error("error submitting persistence batch", "err", submitErr)
		}
	}
	wg.Wait()

	ix.logger.Info("indexing complete", "persisted", attempted.Load(), "attempted", len(chunks))
	return len(chunks), nil
}

// Release releases the persistence worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.persistPool != nil {
		ix.persistPool.Release()
	}
}
