package analysis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/ai/mock"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/ingestion"
	"github.com/poiesic/warroom/search"
	"github.com/poiesic/warroom/storage"
	"github.com/poiesic/warroom/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const materialityJSON = `{
  "briefing_title": "Executive Materiality Briefing — August 2025",
  "generated_at": "2025-08-31T12:00:00Z",
  "document_count": 2,
  "bullets": [
    {
      "rank": 1,
      "materiality_score": 9,
      "category": "Financial",
      "finding": "Coal sales price realizations fell 8.2% sequentially.",
      "source_document": "10-Q.txt",
      "so_what": "Margin pressure will dominate the call.",
      "action_needed": true
    }
  ],
  "executive_summary": "Pricing pressure partially offset by record sales volumes."
}`

const questionsJSON = `{
  "predicted_questions": [
    {
      "rank": 1,
      "question": "What is driving the sequential decline in price realizations?",
      "triggered_by": "Coal sales price realizations fell 8.2% sequentially.",
      "suggested_response": "Mix shift toward export tons; domestic contracts reprice in Q1.",
      "difficulty": "Hard",
      "likely_asker_type": "Sell-side"
    }
  ],
  "call_risk_assessment": "A challenging call centered on pricing."
}`

const trendsJSON = `{
  "trend_analysis": {
    "improved": [
      {"item": "Sales volumes", "previous": "8.1M tons", "current": "8.9M tons", "change_pct": "9.9%"}
    ],
    "deteriorated": [
      {"item": "Price realizations", "previous": "$64.20", "current": "$58.95", "change_pct": "-8.2%"}
    ],
    "new_items": [],
    "resolved": []
  },
  "overall_trajectory": "Mixed: volume strength against softening prices."
}`

// recordingSink captures every emitted event for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) count(t EventType) int {
	n := 0
	for _, e := range s.all() {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (s *recordingSink) messages() []string {
	var out []string
	for _, e := range s.all() {
		if e.Message != "" {
			out = append(out, e.Message)
		}
	}
	return out
}

type testEnv struct {
	runner    *Runner
	provider  *mock.MockProvider
	chunks    storage.ChunkRepository
	briefings storage.BriefingRepository
}

func newTestEnv(t *testing.T, responses ...string) *testEnv {
	t.Helper()

	chunks, briefings, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockGenerator().Responses = responses

	retriever, err := search.NewRetriever(chunks, provider)
	require.NoError(t, err)

	indexer, err := ingestion.NewIndexer(chunks, provider)
	require.NoError(t, err)
	t.Cleanup(indexer.Release)

	runner, err := NewRunner(briefings, retriever, indexer, provider)
	require.NoError(t, err)

	return &testEnv{runner: runner, provider: provider, chunks: chunks, briefings: briefings}
}

func testRequest() Request {
	return Request{
		Series: "arlp-monthly",
		Documents: []core.Document{
			{Name: "10-Q.txt", Content: "Total revenues decreased 5.4% to $593.1 million.\n\nCoal sales price realizations fell 8.2% sequentially while tons sold rose to a record 8.9 million."},
			{Name: "press-release.txt", Content: "The partnership declared a quarterly cash distribution of $0.70 per unit, unchanged from the prior quarter."},
		},
	}
}

func TestNewRunner_Validation(t *testing.T) {
	env := newTestEnv(t)
	retriever, err := search.NewRetriever(env.chunks, env.provider)
	require.NoError(t, err)
	indexer, err := ingestion.NewIndexer(env.chunks, env.provider)
	require.NoError(t, err)
	defer indexer.Release()

	_, err = NewRunner(nil, retriever, indexer, env.provider)
	assert.ErrorIs(t, err, ErrBriefingRepositoryRequired)

	_, err = NewRunner(env.briefings, nil, indexer, env.provider)
	assert.ErrorIs(t, err, ErrRetrieverRequired)

	_, err = NewRunner(env.briefings, retriever, nil, env.provider)
	assert.ErrorIs(t, err, ErrIndexerRequired)

	_, err = NewRunner(env.briefings, retriever, indexer, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestRun_EmptyDocuments(t *testing.T) {
	env := newTestEnv(t)
	sink := &recordingSink{}

	briefing, err := env.runner.Run(context.Background(), Request{Series: "arlp-monthly"}, sink)
	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.Nil(t, briefing)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
	assert.Equal(t, "No documents provided", events[0].Message)
}

func TestRun_EmptySeries(t *testing.T) {
	env := newTestEnv(t, materialityJSON, questionsJSON)
	sink := &recordingSink{}

	req := testRequest()
	req.Series = ""

	briefing, err := env.runner.Run(context.Background(), req, sink)
	assert.ErrorIs(t, err, ErrNoSeries)
	assert.Nil(t, briefing)

	// Rejected before any phase runs: no model calls made.
	assert.Equal(t, 0, env.provider.GetMockGenerator().CallCount())

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
	assert.Equal(t, "No series provided", events[0].Message)
}

func TestRun_FullPipeline(t *testing.T) {
	env := newTestEnv(t, materialityJSON, questionsJSON)
	sink := &recordingSink{}

	briefing, err := env.runner.Run(context.Background(), testRequest(), sink)
	require.NoError(t, err)
	require.NotNil(t, briefing)

	assert.Equal(t, "Executive Materiality Briefing — August 2025", briefing.Title)
	assert.Equal(t, "Pricing pressure partially offset by record sales volumes.", briefing.ExecutiveSummary)
	require.NotNil(t, briefing.Materiality)
	require.NotNil(t, briefing.Questions)
	assert.Nil(t, briefing.Trends)

	assert.Equal(t, core.PhaseDone, briefing.Phases[core.PhaseMateriality])
	assert.Equal(t, core.PhaseDone, briefing.Phases[core.PhaseQuestions])
	assert.Equal(t, core.PhasePending, briefing.Phases[core.PhaseTrends], "no prior briefing, trends should be skipped")
	assert.Equal(t, core.PhaseDone, briefing.Phases[core.PhaseIndexing])

	// First run in a series: materiality + questions only.
	assert.Equal(t, 2, env.provider.GetMockGenerator().CallCount())

	assert.Equal(t, 1, sink.count(EventBriefing))
	assert.Equal(t, 1, sink.count(EventQuestions))
	assert.Equal(t, 0, sink.count(EventTrends))
	assert.Equal(t, 0, sink.count(EventError))
	assert.Equal(t, 1, sink.count(EventDone))

	events := sink.all()
	done := events[len(events)-1]
	assert.Equal(t, EventDone, done.Type)
	require.NotNil(t, done.Metadata)
	assert.Equal(t, 2, done.Metadata.DocumentsAnalyzed)
	assert.Equal(t, briefing.TotalWords, done.Metadata.TotalWords)
	assert.Equal(t, briefing.Id.String(), done.Metadata.BriefingID)
	_, err = time.Parse(time.RFC3339, done.Metadata.AnalyzedAt)
	assert.NoError(t, err)

	stored, err := env.briefings.GetBriefing(context.Background(), briefing.Id)
	require.NoError(t, err)
	require.NotNil(t, stored.Materiality)
	assert.Equal(t, briefing.Title, stored.Title)

	count, err := env.chunks.CountChunks(context.Background(), briefing.Id)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "documents should be indexed under the new briefing")
}

func TestRun_MaterialityFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	env.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, systemPrompt, userMessage string) (string, error) {
		return "I could not produce the analysis.", nil
	}
	sink := &recordingSink{}

	briefing, err := env.runner.Run(context.Background(), testRequest(), sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaterialityFailed)
	require.NotNil(t, briefing)
	assert.Equal(t, core.PhaseFailed, briefing.Phases[core.PhaseMateriality])

	// One structured-output retry, then abort.
	assert.Equal(t, 2, env.provider.GetMockGenerator().CallCount())

	events := sink.all()
	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	assert.True(t, strings.HasPrefix(last.Message, "Materiality analysis failed:"), "message %q", last.Message)
	assert.Equal(t, 0, sink.count(EventDone))

	// Nothing persisted for an aborted run.
	_, err = env.briefings.GetBriefing(context.Background(), briefing.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRun_QuestionsFailureContinues(t *testing.T) {
	// The questions phase keeps getting non-JSON back and fails; the
	// pipeline marks it failed and still reaches done.
	env := newTestEnv(t, materialityJSON, "not valid json")
	sink := &recordingSink{}

	briefing, err := env.runner.Run(context.Background(), testRequest(), sink)
	require.NoError(t, err)

	assert.Equal(t, core.PhaseDone, briefing.Phases[core.PhaseMateriality])
	assert.Equal(t, core.PhaseFailed, briefing.Phases[core.PhaseQuestions])
	assert.Equal(t, core.PhaseDone, briefing.Phases[core.PhaseIndexing])
	assert.Nil(t, briefing.Questions)

	assert.Contains(t, sink.messages(), "Analyst questions unavailable, continuing...")
	assert.Equal(t, 0, sink.count(EventQuestions))
	assert.Equal(t, 0, sink.count(EventError))
	assert.Equal(t, 1, sink.count(EventDone))

	stored, err := env.briefings.GetBriefing(context.Background(), briefing.Id)
	require.NoError(t, err)
	assert.Equal(t, core.PhaseFailed, stored.Phases[core.PhaseQuestions])
}

func TestRun_TrendsAgainstPriorBriefing(t *testing.T) {
	env := newTestEnv(t, materialityJSON, questionsJSON, trendsJSON)

	prior := core.NewBriefing("arlp-monthly", 2, 4000)
	prior.Title = "Executive Materiality Briefing — July 2025"
	prior.CreatedAt = time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC)
	prior.Materiality = &core.MaterialityResult{
		BriefingTitle:    prior.Title,
		DocumentCount:    2,
		ExecutiveSummary: "Stable quarter with strong volumes.",
		Bullets: []core.Bullet{
			{Rank: 1, MaterialityScore: 8, Category: "Financial", Finding: "Sales volumes reached 8.1M tons.", SourceDocument: "10-Q.txt", SoWhat: "Volume trend intact."},
		},
	}
	_, err := env.briefings.AddBriefing(context.Background(), prior)
	require.NoError(t, err)

	sink := &recordingSink{}
	briefing, err := env.runner.Run(context.Background(), testRequest(), sink)
	require.NoError(t, err)

	require.NotNil(t, briefing.Trends)
	assert.Equal(t, "Mixed: volume strength against softening prices.", briefing.Trends.OverallTrajectory)
	assert.Equal(t, core.PhaseDone, briefing.Phases[core.PhaseTrends])
	assert.Equal(t, 3, env.provider.GetMockGenerator().CallCount())

	assert.Contains(t, sink.messages(), "Comparing with previous period...")
	assert.Equal(t, 1, sink.count(EventTrends))
	assert.Equal(t, 1, sink.count(EventDone))
}

func TestRun_HistoricalContextFeedsMaterialityPrompt(t *testing.T) {
	env := newTestEnv(t, materialityJSON, questionsJSON)

	// Index a chunk whose text matches the document digest so the
	// deterministic mock embedder scores it at similarity 1.0.
	docText := "Coal inventories declined to 0.6 million tons at quarter end."
	vector, err := env.provider.Embedder().EmbedText(context.Background(), docText)
	require.NoError(t, err)
	chunk := &core.Chunk{
		BriefingID: uuid.New(),
		SourceName: "june-report.txt",
		Text:       docText,
		Vector:     vector,
	}
	_, err = env.chunks.AddChunks(context.Background(), chunk)
	require.NoError(t, err)

	sink := &recordingSink{}
	req := Request{
		Series:    "arlp-monthly",
		Documents: []core.Document{{Name: "july-report.txt", Content: docText}},
	}
	_, err = env.runner.Run(context.Background(), req, sink)
	require.NoError(t, err)

	assert.Contains(t, sink.messages(), "Found 1 relevant historical chunks...")

	calls := env.provider.GetMockGenerator().Calls()
	require.NotEmpty(t, calls)
	assert.Contains(t, calls[0].UserMessage, "HISTORICAL CONTEXT")
	assert.Contains(t, calls[0].UserMessage, "june-report.txt")
}
