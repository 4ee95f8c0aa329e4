package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

func newTestEngine(t *testing.T) (*Engine, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	engine := New(store)
	engine.now = store.Now
	return engine, store
}

func TestUpdateIncrementsCommute(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	// la somme des deltas ne dépend pas de l'ordre
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 30, true)
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", -10, true)
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 25, true)

	position := engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "u1")
	require.NotNil(t, position)
	assert.Equal(t, float64(45), position.Score)
}

func TestAbsoluteSetOverwrites(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 100, true)
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 40, false)

	position := engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "u1")
	require.NotNil(t, position)
	assert.Equal(t, float64(40), position.Score)
}

func TestGetUserPositionUnranked(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	// non classé : nil, pas rang 0
	assert.Nil(t, engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "ghost"))

	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "ghost", 1, true)
	assert.NotNil(t, engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "ghost"))
}

func TestGetTopOrderingAndRanks(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 50, true)
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u2", 200, true)
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u3", 120, true)

	top := engine.GetTop(ctx, ScopeGlobal, PeriodAllTime, 10)
	require.Len(t, top, 3)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
	}
	assert.Equal(t, []model.LeaderboardEntry{
		{UserID: "u2", Score: 200, Rank: 1},
		{UserID: "u3", Score: 120, Rank: 2},
		{UserID: "u1", Score: 50, Rank: 3},
	}, top)
}

func TestGetAroundUserClampsAtTop(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	for i, user := range []string{"a", "b", "c", "d", "e"} {
		engine.Update(ctx, ScopeGlobal, PeriodAllTime, user, float64(100-i*10), true)
	}

	// "b" est 2e : fenêtre de rayon 2 bornée au rang 1
	window := engine.GetAroundUser(ctx, ScopeGlobal, PeriodAllTime, "b", 2)
	require.Len(t, window, 4)
	assert.Equal(t, "a", window[0].UserID)
	assert.EqualValues(t, 1, window[0].Rank)
	assert.Equal(t, "d", window[3].UserID)
	assert.EqualValues(t, 4, window[3].Rank)

	assert.Empty(t, engine.GetAroundUser(ctx, ScopeGlobal, PeriodAllTime, "ghost", 2))
}

func TestSizeAndRemove(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 10, true)
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u2", 20, true)
	assert.EqualValues(t, 2, engine.Size(ctx, ScopeGlobal, PeriodAllTime))

	engine.Remove(ctx, ScopeGlobal, PeriodAllTime, "u1")
	assert.EqualValues(t, 1, engine.Size(ctx, ScopeGlobal, PeriodAllTime))
	assert.Nil(t, engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "u1"))
}

func TestSyncFromSourceReplaces(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "stale", 999, true)

	engine.SyncFromSource(ctx, ScopeGlobal, PeriodAllTime, []model.ScoreEntry{
		{UserID: "u1", Score: 100},
		{UserID: "u2", Score: 50},
	})

	assert.EqualValues(t, 2, engine.Size(ctx, ScopeGlobal, PeriodAllTime))
	assert.Nil(t, engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "stale"))
	position := engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "u1")
	require.NotNil(t, position)
	assert.EqualValues(t, 1, position.Rank)
}

func TestDailyBucketExpires(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	day := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return day }
	engine := New(store)
	engine.now = store.Now

	engine.Update(ctx, ScopeGlobal, PeriodDaily, "u1", 10, true)
	assert.EqualValues(t, 1, engine.Size(ctx, ScopeGlobal, PeriodDaily))

	// jour D+3 : le bucket du jour D a expiré (TTL 48h) et le bucket courant
	// est un autre label
	later := day.Add(72 * time.Hour)
	store.Now = func() time.Time { return later }
	engine.now = store.Now

	assert.EqualValues(t, 0, engine.Size(ctx, ScopeGlobal, PeriodDaily))
	oldKey := kv.LeaderboardKey(ScopeGlobal, string(PeriodDaily), "2025-01-15")
	assert.Empty(t, store.ZRevRangeWithScores(ctx, oldKey, 0, -1))
}

func TestWeeklyBucketLabel(t *testing.T) {
	engine, _ := newTestEngine(t)
	// 2025-01-15 tombe dans la semaine ISO 3
	assert.Equal(t, "2025-W03", engine.bucket(PeriodWeekly))
	assert.Equal(t, "2025-01-15", engine.bucket(PeriodDaily))
	assert.Equal(t, "", engine.bucket(PeriodAllTime))
}

func TestScopesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 10, true)
	engine.Update(ctx, GameScope("tetris"), PeriodAllTime, "u1", 99, true)

	global := engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "u1")
	game := engine.GetUserPosition(ctx, GameScope("tetris"), PeriodAllTime, "u1")
	require.NotNil(t, global)
	require.NotNil(t, game)
	assert.Equal(t, float64(10), global.Score)
	assert.Equal(t, float64(99), game.Score)
}

func TestEndToEndSingleUser(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 100, true)
	engine.Update(ctx, ScopeGlobal, PeriodAllTime, "u1", 50, true)

	position := engine.GetUserPosition(ctx, ScopeGlobal, PeriodAllTime, "u1")
	require.NotNil(t, position)
	assert.Equal(t, float64(150), position.Score)
	assert.EqualValues(t, 1, position.Rank)
}
