// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/warroom"
	"github.com/poiesic/warroom/ai"
	"github.com/poiesic/warroom/analysis"
	"github.com/poiesic/warroom/api"
	"github.com/poiesic/warroom/chunker"
	"github.com/poiesic/warroom/config"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/ingestion"
	"github.com/poiesic/warroom/search"
	"github.com/poiesic/warroom/storage"
	"github.com/poiesic/warroom/storage/badger"
	"github.com/poiesic/warroom/storage/postgres"
)

func main() {
	// .env is optional; environment wins either way.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "warroom",
		Usage: "Retrieval-augmented earnings analysis pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "config.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
			},
			{
				Name:      "index",
				Usage:     "Chunk, embed, and store documents for retrieval",
				ArgsUsage: "FILE [FILE...]",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "briefing",
						Usage: "Briefing ID to index under (defaults to a new one)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search indexed chunks by semantic similarity",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "briefing",
						Usage: "Restrict the search to one briefing's chunks",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	chunks, briefings, closeStore, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	retriever, err := search.NewRetriever(chunks, provider,
		search.WithTopK(cfg.Pipeline.TopK),
		search.WithThreshold(float32(cfg.Pipeline.Threshold)))
	if err != nil {
		return err
	}

	indexer, err := ingestion.NewIndexer(chunks, provider,
		ingestion.WithChunker(chunker.New(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)))
	if err != nil {
		return err
	}
	defer indexer.Release()

	runner, err := analysis.NewRunner(briefings, retriever, indexer, provider,
		analysis.WithProfile(profileFromConfig(cfg)))
	if err != nil {
		return err
	}

	server, err := api.NewServer(runner, briefings, api.WithPort(cfg.Server.Port))
	if err != nil {
		return err
	}
	return server.Start()
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	briefingID := uuid.New()
	if raw := c.String("briefing"); raw != "" {
		briefingID, err = uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid briefing id %q: %w", raw, err)
		}
	}

	docs := make([]core.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, core.Document{
			Name:    filepath.Base(path),
			Content: string(content),
			Type:    "text",
			Size:    int64(len(content)),
		})
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	chunks, _, closeStore, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	indexer, err := ingestion.NewIndexer(chunks, provider,
		ingestion.WithChunker(chunker.New(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)))
	if err != nil {
		return err
	}
	defer indexer.Release()

	count, err := indexer.IndexDocuments(ctx, briefingID, docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Indexed %d chunks from %d documents under briefing %s\n", count, len(docs), briefingID)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	scope := uuid.Nil
	if raw := c.String("briefing"); raw != "" {
		scope, err = uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid briefing id %q: %w", raw, err)
		}
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	chunks, _, closeStore, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	retriever, err := search.NewRetriever(chunks, provider,
		search.WithTopK(cfg.Pipeline.TopK),
		search.WithThreshold(float32(cfg.Pipeline.Threshold)))
	if err != nil {
		return err
	}

	results := retriever.Search(ctx, query, scope)
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for _, res := range results {
		text := res.Chunk.Text
		if len(text) > 160 {
			text = text[:160] + "..."
		}
		fmt.Printf("%3.0f%%  [%s #%d] %s\n", res.Similarity*100, res.Chunk.SourceName, res.Chunk.Sequence, text)
	}
	return nil
}

// buildProvider assembles the production AI clients from configuration.
func buildProvider(cfg *config.Config) (ai.Provider, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithEmbeddingDimensions(cfg.AI.EmbeddingDimensions),
		ai.WithEmbeddingKey(cfg.AI.EmbeddingKey),
		ai.WithGenerationModel(cfg.AI.GenerationModel),
		ai.WithGenerationKey(cfg.AI.GenerationKey),
	)
	return warroom.NewProvider(aiConfig)
}

// openRepositories opens the configured store backend and returns its
// repositories plus a close function.
func openRepositories(ctx context.Context, cfg *config.Config) (storage.ChunkRepository, storage.BriefingRepository, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		store, err := postgres.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		if err := store.EnsureSchema(ctx, cfg.AI.EmbeddingDimensions); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("failed to ensure postgres schema: %w", err)
		}
		return postgres.NewChunkRepository(store), postgres.NewBriefingRepository(store), store.Close, nil

	default:
		backend, err := badger.OpenBackend(cfg.Storage.Path, false)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return badger.NewChunkRepository(backend), badger.NewBriefingRepository(backend), backend.Close, nil
	}
}

// profileFromConfig maps the configured company profile onto prompt
// parameters, falling back to the generic defaults for unset fields.
func profileFromConfig(cfg *config.Config) analysis.Profile {
	profile := analysis.DefaultProfile()
	if cfg.Pipeline.Company != "" {
		profile.Company = cfg.Pipeline.Company
	}
	if cfg.Pipeline.Positioning != "" {
		profile.Positioning = cfg.Pipeline.Positioning
	}
	if cfg.Pipeline.Sector != "" {
		profile.Sector = cfg.Pipeline.Sector
	}
	return profile
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
