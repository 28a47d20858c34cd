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


// Package warroom wires the badger store, AI clients, retriever,
// indexer, and analysis pipeline into one system. It is the entry
// point library consumers and cmd/warroom build on.
package warroom

import (
	"log/slog"

	"github.com/poiesic/warroom/ai"
	"github.com/poiesic/warroom/analysis"
	"github.com/poiesic/warroom/api"
	"github.com/poiesic/warroom/chunker"
	"github.com/poiesic/warroom/ingestion"
	"github.com/poiesic/warroom/search"
	"github.com/poiesic/warroom/storage"
	"github.com/poiesic/warroom/storage/badger"
)

// System is the assembled pipeline over an embedded badger store.
type System struct {
	backend   *badger.Backend
	chunks    storage.ChunkRepository
	briefings storage.BriefingRepository
	provider  ai.Provider
	retriever *search.Retriever
	indexer   *ingestion.Indexer
	runner    *analysis.Runner
	logger    *slog.Logger
}

// Option configures a System.
type Option func(*systemOptions)

type systemOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	profile      analysis.Profile
	haveProfile  bool
	inMemory     bool
	chunkSize    int
	chunkOverlap int
	topK         int
	threshold    float32
}

// WithAIConfig sets the AI client configuration.
func WithAIConfig(config *ai.Config) Option {
	return func(o *systemOptions) { o.aiConfig = config }
}

// WithProvider injects a pre-built AI provider, bypassing the
// production clients. Used by tests and offline tooling.
func WithProvider(p ai.Provider) Option {
	return func(o *systemOptions) { o.provider = p }
}

// WithProfile sets the company profile the analysis prompts speak for.
func WithProfile(profile analysis.Profile) Option {
	return func(o *systemOptions) {
		o.profile = profile
		o.haveProfile = true
	}
}

// WithChunking overrides the chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(o *systemOptions) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithRetrieval overrides the retrieval top-K and similarity threshold.
func WithRetrieval(topK int, threshold float32) Option {
	return func(o *systemOptions) {
		o.topK = topK
		o.threshold = threshold
	}
}

// WithInMemory keeps the store in memory, discarding data on Close.
func WithInMemory() Option {
	return func(o *systemOptions) { o.inMemory = true }
}

// Open assembles a System over the badger store at filePath.
func Open(filePath string, opts ...Option) (*System, error) {
	options := &systemOptions{
		aiConfig:     ai.DefaultConfig(),
		chunkSize:    chunker.DefaultChunkSize,
		chunkOverlap: chunker.DefaultOverlap,
		topK:         search.DefaultTopK,
		threshold:    search.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunks := badger.NewChunkRepository(backend)
	briefings := badger.NewBriefingRepository(backend)

	aiProvider := options.provider
	if aiProvider == nil {
		aiProvider, err = NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	retriever, err := search.NewRetriever(chunks, aiProvider,
		search.WithTopK(options.topK),
		search.WithThreshold(options.threshold))
	if err != nil {
		aiProvider.Close()
		backend.Close()
		return nil, err
	}

	indexer, err := ingestion.NewIndexer(chunks, aiProvider,
		ingestion.WithChunker(chunker.New(options.chunkSize, options.chunkOverlap)))
	if err != nil {
		aiProvider.Close()
		backend.Close()
		return nil, err
	}

	runnerOpts := []analysis.Option{}
	if options.haveProfile {
		runnerOpts = append(runnerOpts, analysis.WithProfile(options.profile))
	}
	runner, err := analysis.NewRunner(briefings, retriever, indexer, aiProvider, runnerOpts...)
	if err != nil {
		indexer.Release()
		aiProvider.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:   backend,
		chunks:    chunks,
		briefings: briefings,
		provider:  aiProvider,
		retriever: retriever,
		indexer:   indexer,
		runner:    runner,
		logger:    slog.Default(),
	}, nil
}

// Close releases the pipeline and the store.
func (s *System) Close() error {
	s.indexer.Release()
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChunkRepository exposes the chunk store.
func (s *System) ChunkRepository() storage.ChunkRepository {
	return s.chunks
}

// BriefingRepository exposes the briefing store.
func (s *System) BriefingRepository() storage.BriefingRepository {
	return s.briefings
}

// Retriever exposes the similarity searcher.
func (s *System) Retriever() *search.Retriever {
	return s.retriever
}

// Indexer exposes the document indexer.
func (s *System) Indexer() *ingestion.Indexer {
	return s.indexer
}

// Runner exposes the analysis pipeline.
func (s *System) Runner() *analysis.Runner {
	return s.runner
}

// NewServer builds the HTTP API over this system.
func (s *System) NewServer(opts ...api.Option) (*api.Server, error) {
	return api.NewServer(s.runner, s.briefings, opts...)
}
