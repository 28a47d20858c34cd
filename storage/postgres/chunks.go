package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/storage"
)

// ChunkRepository implements storage.ChunkRepository on PostgreSQL with
// pgvector.
type ChunkRepository struct {
	store *Store
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(store *Store) *ChunkRepository {
	return &ChunkRepository{store: store}
}

// Close releases repository resources. The shared store stays open.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the store.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage. IDs carry a per-insert
// nonce, so indexing the same content again appends new rows.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, err
		}
		if chunk.Id == 0 {
			chunk.Id = core.NewChunkID(chunk)
		}
		if chunk.InsertedAt.IsZero() {
			chunk.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
		}

		var embedding *string
		if len(chunk.Vector) > 0 {
			lit := pgVector(chunk.Vector)
			embedding = &lit
		}

		batch.Queue(
			`INSERT INTO chunks (id, briefing_id, source_name, sequence, content, embedding, section, speaker, inserted_at)
			 VALUES ($1, $2, $3, $4, $5, $6::vector, $7, $8, $9)
			 ON CONFLICT (id) DO NOTHING`,
			int64(chunk.Id), chunk.BriefingID, chunk.SourceName, int32(chunk.Sequence),
			chunk.Text, embedding, chunk.Section.String(), chunk.Speaker, chunk.InsertedAt,
		)
	}

	results := r.store.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range chunks {
		if _, err := results.Exec(); err != nil {
			return nil, fmt.Errorf("insert chunk: %w", err)
		}
	}
	return chunks, nil
}

// FindSimilar ranks chunks by pgvector cosine similarity.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, briefingID uuid.UUID) ([]*core.RetrievalResult, error) {
	query := `
		SELECT id, briefing_id, source_name, sequence, content, embedding::text, section, speaker, inserted_at,
		       1 - (embedding <=> $1::vector) AS similarity
		FROM chunks
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1::vector) >= $2
		  AND ($3::uuid IS NULL OR briefing_id = $3)
		ORDER BY similarity DESC
		LIMIT $4`

	var scope *uuid.UUID
	if briefingID != uuid.Nil {
		scope = &briefingID
	}

	rows, err := r.store.pool.Query(ctx, query, pgVector(vector), minSimilarity, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	var results []*core.RetrievalResult
	for rows.Next() {
		chunk, similarity, err := scanChunkWithSimilarity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, &core.RetrievalResult{Chunk: chunk, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	query := `
		SELECT id, briefing_id, source_name, sequence, content, embedding::text, section, speaker, inserted_at
		FROM chunks WHERE id = $1`

	row := r.store.pool.QueryRow(ctx, query, int64(id))
	chunk, err := scanChunk(row)
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// CountChunks returns the number of chunks stored for a briefing.
func (r *ChunkRepository) CountChunks(ctx context.Context, briefingID uuid.UUID) (int, error) {
	var scope *uuid.UUID
	if briefingID != uuid.Nil {
		scope = &briefingID
	}

	var count int
	err := r.store.pool.QueryRow(ctx,
		`SELECT count(*) FROM chunks WHERE ($1::uuid IS NULL OR briefing_id = $1)`, scope,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

func scanChunk(row pgx.Row) (*core.Chunk, error) {
	var (
		chunk     core.Chunk
		id        int64
		sequence  int32
		embedding *string
		section   string
	)
	err := row.Scan(&id, &chunk.BriefingID, &chunk.SourceName, &sequence,
		&chunk.Text, &embedding, &section, &chunk.Speaker, &chunk.InsertedAt)
	if err != nil {
		return nil, err
	}
	return finishChunk(&chunk, id, sequence, embedding, section)
}

func scanChunkWithSimilarity(row pgx.Row) (*core.Chunk, float32, error) {
	var (
		chunk      core.Chunk
		id         int64
		sequence   int32
		embedding  *string
		section    string
		similarity float32
	)
	err := row.Scan(&id, &chunk.BriefingID, &chunk.SourceName, &sequence,
		&chunk.Text, &embedding, &section, &chunk.Speaker, &chunk.InsertedAt, &similarity)
	if err != nil {
		return nil, 0, fmt.Errorf("scan chunk: %w", err)
	}
	out, err := finishChunk(&chunk, id, sequence, embedding, section)
	return out, similarity, err
}

func finishChunk(chunk *core.Chunk, id int64, sequence int32, embedding *string, section string) (*core.Chunk, error) {
	chunk.Id = core.ID(id)
	chunk.Sequence = uint32(sequence)
	chunk.Section = sectionFromString(section)
	if embedding != nil {
		vector, err := parseVector(*embedding)
		if err != nil {
			return nil, err
		}
		chunk.Vector = vector
	}
	return chunk, nil
}

func sectionFromString(s string) core.SectionType {
	switch s {
	case "prepared_remarks":
		return core.SectionPreparedRemarks
	case "qa":
		return core.SectionQA
	case "operator":
		return core.SectionOperator
	case "other":
		return core.SectionOther
	default:
		return core.SectionNone
	}
}
