package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/storage"
)

// BriefingRepository implements storage.BriefingRepository on PostgreSQL.
type BriefingRepository struct {
	store *Store
}

var _ storage.BriefingRepository = (*BriefingRepository)(nil)

// NewBriefingRepository creates a new BriefingRepository.
func NewBriefingRepository(store *Store) *BriefingRepository {
	return &BriefingRepository{store: store}
}

// Close releases repository resources. The shared store stays open.
func (r *BriefingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the store.
func (r *BriefingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithTransaction(ctx, fn)
}

// AddBriefing adds a briefing to storage.
func (r *BriefingRepository) AddBriefing(ctx context.Context, briefing *core.Briefing) (*core.Briefing, error) {
	if err := core.ValidateBriefing(briefing); err != nil {
		return nil, err
	}
	if briefing.CreatedAt.IsZero() {
		briefing.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	materiality, questions, trends, phases, err := encodeResults(briefing)
	if err != nil {
		return nil, err
	}

	_, err = r.store.pool.Exec(ctx,
		`INSERT INTO briefings (id, series, title, executive_summary, document_count, total_words, created_at, materiality, questions, trends, phases)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		briefing.Id, briefing.Series, briefing.Title, briefing.ExecutiveSummary,
		briefing.DocumentCount, briefing.TotalWords, briefing.CreatedAt,
		materiality, questions, trends, phases,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, storage.ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert briefing: %w", err)
	}
	return briefing, nil
}

// UpdateBriefing updates an existing briefing. CreatedAt is immutable.
func (r *BriefingRepository) UpdateBriefing(ctx context.Context, briefing *core.Briefing) (*core.Briefing, error) {
	materiality, questions, trends, phases, err := encodeResults(briefing)
	if err != nil {
		return nil, err
	}

	tag, err := r.store.pool.Exec(ctx,
		`UPDATE briefings
		 SET series = $2, title = $3, executive_summary = $4, document_count = $5,
		     total_words = $6, materiality = $7, questions = $8, trends = $9, phases = $10
		 WHERE id = $1`,
		briefing.Id, briefing.Series, briefing.Title, briefing.ExecutiveSummary,
		briefing.DocumentCount, briefing.TotalWords,
		materiality, questions, trends, phases,
	)
	if err != nil {
		return nil, fmt.Errorf("update briefing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	return briefing, nil
}

// GetBriefing retrieves a single briefing by ID.
func (r *BriefingRepository) GetBriefing(ctx context.Context, id uuid.UUID) (*core.Briefing, error) {
	row := r.store.pool.QueryRow(ctx, selectBriefing+` WHERE id = $1`, id)
	briefing, err := scanBriefing(row)
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	return briefing, err
}

// ListBriefings retrieves briefings ordered by creation time descending.
func (r *BriefingRepository) ListBriefings(ctx context.Context, series string, limit int) ([]*core.Briefing, error) {
	var scope *string
	if series != "" {
		scope = &series
	}
	var rowCap *int
	if limit > 0 {
		rowCap = &limit
	}

	rows, err := r.store.pool.Query(ctx,
		selectBriefing+`
		 WHERE ($1::text IS NULL OR series = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		scope, rowCap,
	)
	if err != nil {
		return nil, fmt.Errorf("query briefings: %w", err)
	}
	defer rows.Close()

	var results []*core.Briefing
	for rows.Next() {
		briefing, err := scanBriefing(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, briefing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// MostRecentBriefing returns the newest briefing in a series, excluding
// the given ID.
func (r *BriefingRepository) MostRecentBriefing(ctx context.Context, series string, excluding uuid.UUID) (*core.Briefing, error) {
	row := r.store.pool.QueryRow(ctx,
		selectBriefing+`
		 WHERE series = $1 AND id <> $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		series, excluding,
	)
	briefing, err := scanBriefing(row)
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	return briefing, err
}

const selectBriefing = `
	SELECT id, series, title, executive_summary, document_count, total_words, created_at,
	       materiality, questions, trends, phases
	FROM briefings`

func scanBriefing(row pgx.Row) (*core.Briefing, error) {
	var (
		briefing    core.Briefing
		materiality []byte
		questions   []byte
		trends      []byte
		phases      []byte
	)
	err := row.Scan(&briefing.Id, &briefing.Series, &briefing.Title, &briefing.ExecutiveSummary,
		&briefing.DocumentCount, &briefing.TotalWords, &briefing.CreatedAt,
		&materiality, &questions, &trends, &phases)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(materiality, &briefing.Materiality); err != nil {
		return nil, err
	}
	if err := decodeJSON(questions, &briefing.Questions); err != nil {
		return nil, err
	}
	if err := decodeJSON(trends, &briefing.Trends); err != nil {
		return nil, err
	}
	if len(phases) > 0 {
		if err := json.Unmarshal(phases, &briefing.Phases); err != nil {
			return nil, fmt.Errorf("decode phases: %w", err)
		}
	}
	return &briefing, nil
}

func encodeResults(briefing *core.Briefing) (materiality, questions, trends, phases []byte, err error) {
	if materiality, err = encodeJSON(briefing.Materiality); err != nil {
		return
	}
	if questions, err = encodeJSON(briefing.Questions); err != nil {
		return
	}
	if trends, err = encodeJSON(briefing.Trends); err != nil {
		return
	}
	phases, err = json.Marshal(briefing.Phases)
	return
}

func encodeJSON[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeJSON[T any](data []byte, out **T) error {
	if len(data) == 0 {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode result payload: %w", err)
	}
	*out = v
	return nil
}
