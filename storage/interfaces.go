package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing embedded document chunks.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// For chunks with Id=0, allocates a fresh row ID per insert, so
	// storing the same content again appends rather than overwrites.
	// Sets InsertedAt timestamp if not already set.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first). Chunks without vectors
	// are never returned. A non-nil briefingID restricts the search to
	// chunks indexed under that briefing; uuid.Nil searches everything.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, briefingID uuid.UUID) ([]*core.RetrievalResult, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// CountChunks returns the number of chunks stored for a briefing.
	// uuid.Nil counts all chunks.
	CountChunks(ctx context.Context, briefingID uuid.UUID) (int, error)
}

// BriefingRepository provides operations for managing briefings.
type BriefingRepository interface {
	Repository
	// AddBriefing adds a briefing to storage.
	// Returns ErrDuplicateKey if a briefing with the same ID exists.
	AddBriefing(ctx context.Context, briefing *core.Briefing) (*core.Briefing, error)

	// UpdateBriefing updates an existing briefing.
	// Returns ErrNotFound if the briefing doesn't exist.
	UpdateBriefing(ctx context.Context, briefing *core.Briefing) (*core.Briefing, error)

	// GetBriefing retrieves a single briefing by ID.
	// Returns ErrNotFound if the briefing doesn't exist.
	GetBriefing(ctx context.Context, id uuid.UUID) (*core.Briefing, error)

	// ListBriefings retrieves briefings ordered by creation time descending.
	// A non-empty series restricts results to that series. Returns up to
	// limit briefings; limit <= 0 means no limit.
	ListBriefings(ctx context.Context, series string, limit int) ([]*core.Briefing, error)

	// MostRecentBriefing returns the newest briefing in a series,
	// excluding the given ID. Used to pick the comparison baseline for
	// trend analysis. Returns ErrNotFound if the series has no other
	// briefings.
	MostRecentBriefing(ctx context.Context, series string, excluding uuid.UUID) (*core.Briefing, error)
}
