package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store holds the shared connection pool behind the PostgreSQL-backed
// repositories. Vector search runs on pgvector's cosine distance
// operator, so the pgvector extension must be installed.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{
		pool:   pool,
		logger: slog.Default().With("component", "storage"),
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates the tables and extension if they don't exist.
// dims is the embedding dimensionality of the vector columns.
func (s *Store) EnsureSchema(ctx context.Context, dims int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id          BIGINT PRIMARY KEY,
			briefing_id UUID NOT NULL,
			source_name TEXT NOT NULL,
			sequence    INTEGER NOT NULL,
			content     TEXT NOT NULL,
			embedding   vector(%d),
			section     TEXT NOT NULL DEFAULT '',
			speaker     TEXT NOT NULL DEFAULT '',
			inserted_at TIMESTAMPTZ NOT NULL
		)`, dims),
		`CREATE INDEX IF NOT EXISTS chunks_briefing_idx ON chunks (briefing_id)`,
		`CREATE TABLE IF NOT EXISTS briefings (
			id                UUID PRIMARY KEY,
			series            TEXT NOT NULL,
			title             TEXT NOT NULL DEFAULT '',
			executive_summary TEXT NOT NULL DEFAULT '',
			document_count    INTEGER NOT NULL,
			total_words       INTEGER NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL,
			materiality       JSONB,
			questions         JSONB,
			trends            JSONB,
			phases            JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS briefings_series_created_idx ON briefings (series, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// WithTransaction executes a function within a transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(ctx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// pgVector formats a float32 slice as a pgvector-compatible string
// literal, e.g. "[0.1,0.2,0.3]". Suitable for passing to a
// parameterized query targeting a vector column.
func pgVector(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVector parses pgvector's text representation back into floats.
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed vector literal %q", s)
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector element %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
