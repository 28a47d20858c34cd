package badger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/core"
	"github.com/poiesic/warroom/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBriefing(series string, createdAt time.Time) *core.Briefing {
	b := core.NewBriefing(series, 2, 9000)
	b.CreatedAt = createdAt
	return b
}

func TestAddGetBriefing(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	briefing := core.NewBriefing("acme-earnings", 3, 12840)
	briefing.Title = "Q3 2025 Earnings Review"

	_, err := repo.AddBriefing(ctx, briefing)
	require.NoError(t, err)

	got, err := repo.GetBriefing(ctx, briefing.Id)
	require.NoError(t, err)
	assert.Equal(t, briefing.Series, got.Series)
	assert.Equal(t, briefing.Title, got.Title)
	assert.Equal(t, briefing.DocumentCount, got.DocumentCount)
	assert.Equal(t, briefing.TotalWords, got.TotalWords)
	assert.Equal(t, briefing.Phases, got.Phases)
}

func TestAddBriefing_Duplicate(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	briefing := core.NewBriefing("acme-earnings", 1, 100)
	_, err := repo.AddBriefing(ctx, briefing)
	require.NoError(t, err)

	_, err = repo.AddBriefing(ctx, briefing)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestAddBriefing_Invalid(t *testing.T) {
	_, repo := newTestRepos(t)

	_, err := repo.AddBriefing(context.Background(), &core.Briefing{Id: uuid.New()})
	assert.ErrorIs(t, err, core.ErrInvalidBriefing)
}

func TestUpdateBriefing(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	briefing := core.NewBriefing("acme-earnings", 2, 9310)
	_, err := repo.AddBriefing(ctx, briefing)
	require.NoError(t, err)
	created := briefing.CreatedAt

	briefing.Title = "Q3 2025 Earnings Review"
	briefing.Materiality = &core.MaterialityResult{BriefingTitle: "Q3 2025 Earnings Review"}
	briefing.Phases[core.PhaseMateriality] = core.PhaseDone

	_, err = repo.UpdateBriefing(ctx, briefing)
	require.NoError(t, err)

	got, err := repo.GetBriefing(ctx, briefing.Id)
	require.NoError(t, err)
	assert.Equal(t, "Q3 2025 Earnings Review", got.Title)
	require.NotNil(t, got.Materiality)
	assert.Equal(t, core.PhaseDone, got.Phases[core.PhaseMateriality])
	assert.True(t, created.Equal(got.CreatedAt), "CreatedAt must be immutable")
}

func TestAddBriefing_CreatedAtRoundTrips(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	t.Run("caller stamped", func(t *testing.T) {
		briefing := core.NewBriefing("acme-earnings", 1, 100)
		stamped := briefing.CreatedAt

		_, err := repo.AddBriefing(ctx, briefing)
		require.NoError(t, err)

		got, err := repo.GetBriefing(ctx, briefing.Id)
		require.NoError(t, err)
		assert.True(t, stamped.Equal(got.CreatedAt), "CreatedAt must survive storage unchanged")
	})

	t.Run("repository stamped", func(t *testing.T) {
		briefing := testBriefing("acme-earnings", time.Time{})

		_, err := repo.AddBriefing(ctx, briefing)
		require.NoError(t, err)
		stamped := briefing.CreatedAt
		require.False(t, stamped.IsZero())

		got, err := repo.GetBriefing(ctx, briefing.Id)
		require.NoError(t, err)
		assert.True(t, stamped.Equal(got.CreatedAt), "CreatedAt must survive storage unchanged")
	})
}

func TestUpdateBriefing_NotFound(t *testing.T) {
	_, repo := newTestRepos(t)

	_, err := repo.UpdateBriefing(context.Background(), core.NewBriefing("acme-earnings", 1, 100))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetBriefing_NotFound(t *testing.T) {
	_, repo := newTestRepos(t)

	_, err := repo.GetBriefing(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListBriefings(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	oldest := testBriefing("acme-earnings", base)
	middle := testBriefing("acme-earnings", base.Add(time.Hour))
	newest := testBriefing("acme-earnings", base.Add(2*time.Hour))
	otherSeries := testBriefing("globex-earnings", base.Add(30*time.Minute))

	for _, b := range []*core.Briefing{oldest, middle, newest, otherSeries} {
		_, err := repo.AddBriefing(ctx, b)
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := repo.ListBriefings(ctx, "acme-earnings", 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, newest.Id, got[0].Id)
		assert.Equal(t, middle.Id, got[1].Id)
		assert.Equal(t, oldest.Id, got[2].Id)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := repo.ListBriefings(ctx, "acme-earnings", 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, newest.Id, got[0].Id)
	})

	t.Run("all series", func(t *testing.T) {
		got, err := repo.ListBriefings(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})
}

func TestMostRecentBriefing(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	prior := testBriefing("acme-earnings", base)
	current := testBriefing("acme-earnings", base.Add(time.Hour))

	for _, b := range []*core.Briefing{prior, current} {
		_, err := repo.AddBriefing(ctx, b)
		require.NoError(t, err)
	}

	got, err := repo.MostRecentBriefing(ctx, "acme-earnings", current.Id)
	require.NoError(t, err)
	assert.Equal(t, prior.Id, got.Id)
}

func TestMostRecentBriefing_OnlySelf(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	only := core.NewBriefing("acme-earnings", 1, 100)
	_, err := repo.AddBriefing(ctx, only)
	require.NoError(t, err)

	_, err = repo.MostRecentBriefing(ctx, "acme-earnings", only.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
