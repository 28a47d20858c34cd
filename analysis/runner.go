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


package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/ai"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/ingestion"
	"github.com/poiesic/warroom/search"
	"github.com/poiesic/warroom/storage"
)

// digestLength is how many leading characters of each document feed the
// historical-retrieval query.
const digestLength = 500

// Runner executes the analysis pipeline: materiality analysis, analyst
// question prediction, trend comparison against the most recent prior
// briefing in the series, and background indexing of the input
// documents for future retrieval.
//
// Each run is sequential; concurrent runs share nothing but the store.
// A Runner is safe for concurrent use.
type Runner struct {
	briefings storage.BriefingRepository
	retriever *search.Retriever
	indexer   *ingestion.Indexer
	generator ai.Generator
	profile   Profile
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// WithProfile sets the company profile the prompts are anchored to.
func WithProfile(profile Profile) Option {
	return func(r *Runner) error {
		r.profile = profile
		return nil
	}
}

// NewRunner creates a pipeline runner.
func NewRunner(briefings storage.BriefingRepository, retriever *search.Retriever, indexer *ingestion.Indexer, provider ai.Provider, opts ...Option) (*Runner, error) {
	if briefings == nil {
		return nil, ErrBriefingRepositoryRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Runner{
		briefings: briefings,
		retriever: retriever,
		indexer:   indexer,
		generator: provider.Generator(),
		profile:   DefaultProfile(),
		logger:    slog.Default().With("component", "analysis"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Request describes one pipeline run.
type Request struct {
	// Series groups briefings for trend lookups, e.g. "arlp-monthly".
	// Required.
	Series string

	// Documents are the parsed inputs. At least one is required.
	Documents []core.Document
}

// runState is the mutable state one run threads through its phases.
type runState struct {
	briefing  *core.Briefing
	documents []core.Document
	sink      Sink
	persisted bool
}

func (st *runState) emit(event Event) {
	st.sink.Emit(event)
}

// Run executes the full pipeline and streams progress to sink. A nil
// sink discards events. The returned briefing reflects everything the
// run produced, including failed phase markers.
//
// The stream always terminates with exactly one done or error event.
// Only invalid input (a missing series or an empty document set) and a
// materiality phase that still fails after its structured-output retry
// abort a run. Every later failure is logged, marked on the briefing,
// and skipped.
func (r *Runner) Run(ctx context.Context, req Request, sink Sink) (*core.Briefing, error) {
	if sink == nil {
		sink = discardSink{}
	}

	if req.Series == "" {
		sink.Emit(Event{Type: EventError, Message: "No series provided"})
		return nil, ErrNoSeries
	}
	if len(req.Documents) == 0 {
		sink.Emit(Event{Type: EventError, Message: "No documents provided"})
		return nil, ErrNoDocuments
	}

	st := &runState{
		briefing:  core.NewBriefing(req.Series, len(req.Documents), core.CountWords(req.Documents)),
		documents: req.Documents,
		sink:      sink,
	}

	logger := r.logger.With("briefing_id", st.briefing.Id, "series", req.Series)
	logger.Info("starting analysis run", "documents", len(req.Documents), "total_words", st.briefing.TotalWords)

	for _, phase := range r.phases() {
		err := phase.Run(ctx, st)
		if err == nil {
			st.briefing.Phases[phase.Name] = core.PhaseDone
			continue
		}
		if errors.Is(err, errPhaseSkipped) {
			logger.Debug("phase skipped", "phase", phase.Name)
			continue
		}

		st.briefing.Phases[phase.Name] = core.PhaseFailed
		if phase.Fatal {
			logger.Error("fatal phase failed, aborting run", "phase", phase.Name, "err", err)
			st.emit(Event{Type: EventError, Message: fmt.Sprintf("%s: %s", phase.FatalPrefix, err)})
			return st.briefing, fmt.Errorf("%w: %w", ErrMaterialityFailed, err)
		}

		logger.Warn("phase failed, continuing", "phase", phase.Name, "err", err)
		if phase.FailureMessage != "" {
			st.emit(Event{Type: EventPhase, Message: phase.FailureMessage})
		}
	}

	r.saveBriefing(ctx, st)

	st.emit(Event{Type: EventDone, Metadata: &RunMetadata{
		DocumentsAnalyzed: len(req.Documents),
		TotalWords:        st.briefing.TotalWords,
		AnalyzedAt:        time.Now().UTC().Format(time.RFC3339),
		BriefingID:        st.briefing.Id.String(),
	}})
	logger.Info("analysis run complete")
	return st.briefing, nil
}

func (r *Runner) runMateriality(ctx context.Context, st *runState) error {
	st.emit(Event{Type: EventPhase, Message: "Running materiality analysis across all documents..."})

	var sb strings.Builder
	for i, doc := range st.documents {
		fmt.Fprintf(&sb, "\n--- DOCUMENT %d: %s ---\n%s\n--- END %s ---", i+1, doc.Name, doc.Content, doc.Name)
	}
	documentsText := sb.String()

	ragContext := r.historicalContext(ctx, st)

	userMessage := fmt.Sprintf(
		"Here are %d documents for executive briefing analysis:\n%s%s\n\nAnalyze all documents and produce the executive materiality briefing.",
		len(st.documents), documentsText, ragContext)

	result, err := ai.GenerateStructured[core.MaterialityResult](ctx, r.generator, materialityPrompt(r.profile), userMessage)
	if err != nil {
		return err
	}
	if result.DocumentCount == 0 {
		result.DocumentCount = len(st.documents)
	}
	if result.GeneratedAt == "" {
		result.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}

	st.briefing.Materiality = &result
	st.briefing.Title = result.BriefingTitle
	st.briefing.ExecutiveSummary = result.ExecutiveSummary
	r.saveBriefing(ctx, st)

	st.emit(Event{Type: EventBriefing, Data: result, BriefingID: st.briefing.Id.String()})
	return nil
}

// historicalContext retrieves chunks from previously indexed briefings
// that are relevant to the current documents. Retrieval is best-effort:
// an empty index or a failed embedding yields an empty context.
func (r *Runner) historicalContext(ctx context.Context, st *runState) string {
	var parts []string
	for _, doc := range st.documents {
		digest := doc.Content
		if len(digest) > digestLength {
			digest = digest[:digestLength]
		}
		parts = append(parts, digest)
	}

	results := r.retriever.Search(ctx, strings.Join(parts, " "), uuid.Nil)
	if len(results) == 0 {
		return ""
	}

	st.emit(Event{Type: EventPhase, Message: fmt.Sprintf("Found %d relevant historical chunks...", len(results))})

	entries := make([]string, len(results))
	for i, res := range results {
		entries[i] = fmt.Sprintf("[%s] (relevance: %d%%): %s",
			res.Chunk.SourceName, int(res.Similarity*100), res.Chunk.Text)
	}
	return "\n\nHISTORICAL CONTEXT (from previous briefings — use to identify trends):\n" +
		strings.Join(entries, "\n\n")
}

func (r *Runner) runQuestions(ctx context.Context, st *runState) error {
	st.emit(Event{Type: EventPhase, Message: "Predicting analyst questions for the earnings call..."})

	briefingJSON, err := json.MarshalIndent(st.briefing.Materiality, "", "  ")
	if err != nil {
		return err
	}
	userMessage := "Here is the executive materiality briefing:\n" + string(briefingJSON) +
		"\n\nPredict the analyst questions for the upcoming call."

	result, err := ai.GenerateStructured[core.QuestionsResult](ctx, r.generator, analystQuestionsPrompt(r.profile), userMessage)
	if err != nil {
		return err
	}

	st.briefing.Questions = &result
	r.saveBriefing(ctx, st)

	st.emit(Event{Type: EventQuestions, Data: result})
	return nil
}

func (r *Runner) runTrends(ctx context.Context, st *runState) error {
	prior, err := r.briefings.MostRecentBriefing(ctx, st.briefing.Series, st.briefing.Id)
	if errors.Is(err, storage.ErrNotFound) {
		return errPhaseSkipped
	}
	if err != nil {
		return err
	}
	if prior.Materiality == nil {
		return errPhaseSkipped
	}

	st.emit(Event{Type: EventPhase, Message: "Comparing with previous period..."})

	previousJSON, err := json.MarshalIndent(prior.Materiality, "", "  ")
	if err != nil {
		return err
	}
	currentJSON, err := json.MarshalIndent(st.briefing.Materiality, "", "  ")
	if err != nil {
		return err
	}
	userMessage := "PREVIOUS PERIOD BRIEFING:\n" + string(previousJSON) +
		"\n\nCURRENT PERIOD BRIEFING:\n" + string(currentJSON) +
		"\n\nCompare these two periods."

	result, err := ai.GenerateStructured[core.TrendsResult](ctx, r.generator, trendComparisonPrompt(r.profile), userMessage)
	if err != nil {
		return err
	}

	st.briefing.Trends = &result
	r.saveBriefing(ctx, st)

	st.emit(Event{Type: EventTrends, Data: result})
	return nil
}

func (r *Runner) runIndexing(ctx context.Context, st *runState) error {
	st.emit(Event{Type: EventPhase, Message: "Indexing documents for future intelligence..."})

	count, err := r.indexer.IndexDocuments(ctx, st.briefing.Id, st.documents)
	if err != nil {
		return err
	}
	r.logger.Info("indexed documents for retrieval", "briefing_id", st.briefing.Id, "chunks", count)
	return nil
}

// saveBriefing persists the run's current state. Persistence here is
// non-critical: a storage failure is logged and the pipeline continues,
// since downstream phases only need the in-memory briefing.
func (r *Runner) saveBriefing(ctx context.Context, st *runState) {
	var err error
	if st.persisted {
		_, err = r.briefings.UpdateBriefing(ctx, st.briefing)
	} else {
		_, err = r.briefings.AddBriefing(ctx, st.briefing)
		if err == nil {
			st.persisted = true
		}
	}
	if err != nil {
		r.logger.Warn("persisting briefing failed", "briefing_id", st.briefing.Id, "err", err)
	}
}
