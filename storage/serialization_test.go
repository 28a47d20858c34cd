package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	briefingID := uuid.New()

	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "minimal chunk",
			chunk: &core.Chunk{
				Id:         core.ID(1),
				BriefingID: briefingID,
				SourceName: "10-K.pdf",
				Sequence:   0,
				Text:       "Revenue increased 12% year over year.",
				InsertedAt: now,
			},
		},
		{
			name: "chunk with vector",
			chunk: &core.Chunk{
				Id:         core.ID(2),
				BriefingID: briefingID,
				SourceName: "transcript.txt",
				Sequence:   7,
				Text:       "We delivered strong results this quarter.",
				Vector:     []float32{0.1, 0.2, 0.3, 0.4, 0.5},
				InsertedAt: now,
			},
		},
		{
			name: "transcript chunk with section and speaker",
			chunk: &core.Chunk{
				Id:         core.ID(3),
				BriefingID: briefingID,
				SourceName: "q3-call.txt",
				Sequence:   12,
				Text:       "Can you walk us through the margin outlook?",
				Vector:     make([]float32, 1536), // typical OpenAI embedding size
				Section:    core.SectionQA,
				Speaker:    "David Park",
				InsertedAt: now,
			},
		},
		{
			name: "unicode text",
			chunk: &core.Chunk{
				Id:         core.ID(4),
				BriefingID: briefingID,
				SourceName: "annual-report.pdf",
				Sequence:   3,
				Text:       "Umsatz stieg um 12 % — 収益は増加しました",
				InsertedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.BriefingID, decoded.BriefingID)
			assert.Equal(t, tt.chunk.SourceName, decoded.SourceName)
			assert.Equal(t, tt.chunk.Sequence, decoded.Sequence)
			assert.Equal(t, tt.chunk.Text, decoded.Text)
			assert.Equal(t, tt.chunk.Section, decoded.Section)
			assert.Equal(t, tt.chunk.Speaker, decoded.Speaker)
			assert.True(t, tt.chunk.InsertedAt.Equal(decoded.InsertedAt))
			// Handle nil vs empty slice
			if len(tt.chunk.Vector) == 0 {
				assert.Empty(t, decoded.Vector)
			} else {
				assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			}
		})
	}
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalChunk(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalBriefing(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		briefing *core.Briefing
	}{
		{
			name: "pending briefing",
			briefing: &core.Briefing{
				Id:            uuid.New(),
				Series:        "acme-earnings",
				DocumentCount: 3,
				TotalWords:    12840,
				CreatedAt:     now,
				Phases: map[core.PhaseName]core.PhaseStatus{
					core.PhaseMateriality: core.PhasePending,
					core.PhaseQuestions:   core.PhasePending,
				},
			},
		},
		{
			name: "completed briefing with results",
			briefing: &core.Briefing{
				Id:               uuid.New(),
				Series:           "acme-earnings",
				Title:            "Q3 2025 Earnings Review",
				ExecutiveSummary: "Margins expanded on contracted repricing.",
				DocumentCount:    2,
				TotalWords:       9310,
				CreatedAt:        now,
				Materiality: &core.MaterialityResult{
					BriefingTitle:    "Q3 2025 Earnings Review",
					DocumentCount:    2,
					ExecutiveSummary: "Margins expanded on contracted repricing.",
					Bullets: []core.Bullet{
						{Rank: 1, MaterialityScore: 8, Category: "Revenue", Finding: "Realized pricing beat the high end of guidance.", SourceDocument: "10-Q.pdf", SoWhat: "Supports full-year raise.", ActionNeeded: false},
					},
				},
				Questions: &core.QuestionsResult{
					PredictedQuestions: []core.PredictedQuestion{
						{Rank: 1, Question: "Is the pricing uplift durable?", TriggeredBy: "Contract mix shifted.", SuggestedResponse: "Point to contracted tonnage.", Difficulty: "hard", LikelyAskerType: "sell-side analyst"},
					},
					CallRiskAssessment: "Moderate",
				},
				Phases: map[core.PhaseName]core.PhaseStatus{
					core.PhaseMateriality: core.PhaseDone,
					core.PhaseQuestions:   core.PhaseDone,
					core.PhaseTrends:      core.PhaseFailed,
					core.PhaseIndexing:    core.PhaseDone,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalBriefing(tt.briefing)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalBriefing(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.briefing.Id, decoded.Id)
			assert.Equal(t, tt.briefing.Series, decoded.Series)
			assert.Equal(t, tt.briefing.Title, decoded.Title)
			assert.Equal(t, tt.briefing.ExecutiveSummary, decoded.ExecutiveSummary)
			assert.Equal(t, tt.briefing.DocumentCount, decoded.DocumentCount)
			assert.Equal(t, tt.briefing.TotalWords, decoded.TotalWords)
			assert.True(t, tt.briefing.CreatedAt.Equal(decoded.CreatedAt))
			assert.Equal(t, tt.briefing.Materiality, decoded.Materiality)
			assert.Equal(t, tt.briefing.Questions, decoded.Questions)
			assert.Equal(t, tt.briefing.Trends, decoded.Trends)
			assert.Equal(t, tt.briefing.Phases, decoded.Phases)
		})
	}
}

func TestUnmarshalBriefing_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalBriefing(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestRoundTripConsistency(t *testing.T) {
	t.Run("multiple marshal-unmarshal cycles", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		original := &core.Chunk{
			Id:         core.ID(999),
			BriefingID: uuid.New(),
			SourceName: "q3-call.txt",
			Sequence:   5,
			Text:       "Testing consistency",
			Vector:     []float32{0.1, 0.2, 0.3},
			Section:    core.SectionPreparedRemarks,
			Speaker:    "Maria Chen",
			InsertedAt: now,
		}

		current := original
		for i := 0; i < 3; i++ {
			data := MarshalChunk(current)
			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			current = decoded
		}

		assert.Equal(t, original.Id, current.Id)
		assert.Equal(t, original.BriefingID, current.BriefingID)
		assert.Equal(t, original.Text, current.Text)
		assert.Equal(t, original.Vector, current.Vector)
		assert.Equal(t, original.Speaker, current.Speaker)
	})
}
