package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestEmbedText_UnitVectors(t *testing.T) {
	embedder := NewMockEmbedder()

	t.Run("vectors are unit length", func(t *testing.T) {
		for _, text := range []string{"coal production", "distribution per unit", "x"} {
			vector, err := embedder.EmbedText(context.Background(), text)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, dot(vector, vector), 1e-5, "text %q", text)
		}
	})

	t.Run("identical text scores self-similarity 1.0", func(t *testing.T) {
		a, err := embedder.EmbedText(context.Background(), "Total revenues decreased 5.4%.")
		require.NoError(t, err)
		b, err := embedder.EmbedText(context.Background(), "Total revenues decreased 5.4%.")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, dot(a, b), 1e-5)
	})

	t.Run("different text differs", func(t *testing.T) {
		a, err := embedder.EmbedText(context.Background(), "coal volumes")
		require.NoError(t, err)
		b, err := embedder.EmbedText(context.Background(), "oil futures")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestEmbedTexts_OrderPreserving(t *testing.T) {
	embedder := NewMockEmbedder()

	texts := []string{"alpha", "beta", "gamma"}
	vectors, err := embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		single, err := embedder.EmbedText(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i], "index %d", i)
	}
}
