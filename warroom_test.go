package warroom

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/warroom/ai/mock"
	"github.com/poiesic/warroom/analysis"
	"github.com/poiesic/warroom/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const systemTestMateriality = `{"briefing_title":"Executive Materiality Briefing — August 2025","generated_at":"2025-08-31T12:00:00Z","document_count":1,"bullets":[{"rank":1,"materiality_score":8,"category":"Financial","finding":"Distribution held at $0.70 per unit.","source_document":"press-release.txt","so_what":"Signals balance sheet confidence.","action_needed":false}],"executive_summary":"Steady distribution."}`

func TestOpen(t *testing.T) {
	t.Run("assembles the system", func(t *testing.T) {
		sys, err := Open(filepath.Join(t.TempDir(), "warroom_db"),
			WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, sys)
		defer sys.Close()

		assert.NotNil(t, sys.ChunkRepository())
		assert.NotNil(t, sys.BriefingRepository())
		assert.NotNil(t, sys.Retriever())
		assert.NotNil(t, sys.Indexer())
		assert.NotNil(t, sys.Runner())

		server, err := sys.NewServer()
		require.NoError(t, err)
		assert.NotNil(t, server.Handler())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

		_, err := Open(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
	})

	t.Run("invalid retrieval options", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "warroom_db"),
			WithProvider(mock.NewMockProvider()),
			WithRetrieval(0, 0.5))
		assert.Error(t, err)
	})
}

func TestSystem_EndToEndRun(t *testing.T) {
	mockProvider := mock.NewMockProvider().(*mock.MockProvider)
	mockProvider.GetMockGenerator().Responses = []string{systemTestMateriality}

	sys, err := Open("", WithInMemory(), WithProvider(mockProvider))
	require.NoError(t, err)
	defer sys.Close()

	briefing, err := sys.Runner().Run(context.Background(), analysis.Request{
		Series: "arlp-monthly",
		Documents: []core.Document{
			{Name: "press-release.txt", Content: "The partnership declared a quarterly cash distribution of $0.70 per unit, unchanged from the prior quarter."},
		},
	}, nil)
	require.NoError(t, err)

	stored, err := sys.BriefingRepository().GetBriefing(context.Background(), briefing.Id)
	require.NoError(t, err)
	assert.Equal(t, "Executive Materiality Briefing — August 2025", stored.Title)

	count, err := sys.ChunkRepository().CountChunks(context.Background(), briefing.Id)
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}
