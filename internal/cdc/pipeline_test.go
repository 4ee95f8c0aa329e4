package cdc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/cache"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/docstore"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/leaderboard"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logstream"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

func newTestPipeline(t *testing.T) (*Pipeline, *kv.MemoryStore, *docstore.Memory, *cache.Cache, *leaderboard.Engine) {
	t.Helper()
	store := kv.NewMemoryStore()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	docs := docstore.NewMemory()
	boards := leaderboard.New(store)
	caches := cache.New(store)
	logs := logstream.New(store, docs)
	pipeline := New(store, docs, boards, caches, logs)
	pipeline.now = store.Now
	return pipeline, store, docs, caches, boards
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestCaptureChangeValidation(t *testing.T) {
	pipeline, _, _, _, _ := newTestPipeline(t)
	ctx := context.Background()
	doc := json.RawMessage(`{}`)

	tests := []struct {
		name  string
		event model.ChangeEvent
	}{
		{"missing collection", model.ChangeEvent{DocumentID: "d1", Operation: model.OpCreate, After: doc}},
		{"missing documentId", model.ChangeEvent{Collection: "orders", Operation: model.OpCreate, After: doc}},
		{"create with before", model.ChangeEvent{Collection: "orders", DocumentID: "d1", Operation: model.OpCreate, Before: doc, After: doc}},
		{"create without after", model.ChangeEvent{Collection: "orders", DocumentID: "d1", Operation: model.OpCreate}},
		{"update without before", model.ChangeEvent{Collection: "orders", DocumentID: "d1", Operation: model.OpUpdate, After: doc}},
		{"delete with after", model.ChangeEvent{Collection: "orders", DocumentID: "d1", Operation: model.OpDelete, Before: doc, After: doc}},
		{"unknown operation", model.ChangeEvent{Collection: "orders", DocumentID: "d1", Operation: "upsert", After: doc}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pipeline.CaptureChange(ctx, tc.event)
			assert.True(t, errors.Is(err, ErrInvalidEvent))
		})
	}
}

func TestCaptureChangeAppendsAndPublishes(t *testing.T) {
	pipeline, store, _, _, _ := newTestPipeline(t)
	ctx := context.Background()

	order := model.OrderDoc{UserID: "u1", Items: []model.OrderItem{{ProductID: "p1", Quantity: 1}}}
	_, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionOrders,
		DocumentID: "o1",
		Operation:  model.OpCreate,
		After:      mustJSON(t, order),
		UserID:     "u1",
	})
	require.NoError(t, err)

	entries := store.XRevRangeN(ctx, kv.ChangeStreamKey(model.CollectionOrders), 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "o1", entries[0].Values["documentId"])

	published := store.Published()
	require.Len(t, published, 1)
	assert.Equal(t, kv.ChangeChannel(model.CollectionOrders), published[0].Channel)
}

func TestOrderCreateFanoutIsolation(t *testing.T) {
	pipeline, store, docs, _, _ := newTestPipeline(t)
	ctx := context.Background()

	// le décrément du produit p1 échoue, celui de p2 et l'analytics doivent
	// quand même passer
	docs.FailIncrements["p1"] = true

	order := model.OrderDoc{
		UserID: "u9",
		Items: []model.OrderItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
	}
	results, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionOrders,
		DocumentID: "o1",
		Operation:  model.OpCreate,
		After:      mustJSON(t, order),
		UserID:     "u9",
	})
	require.NoError(t, err)
	require.Len(t, results, 4) // 2 décréments + analytics + orderCount

	var failed []string
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result.Name)
		}
	}
	assert.Equal(t, []string{"inventory.decrement:p1"}, failed)

	// p2 décrémenté, orderCount incrémenté
	var stockDelta, orderCount int64
	for _, inc := range docs.Increments() {
		switch {
		case inc.Collection == model.CollectionProducts && inc.ID == "p2":
			stockDelta = inc.Delta
		case inc.Collection == model.CollectionUsers && inc.ID == "u9":
			orderCount = inc.Delta
		}
	}
	assert.EqualValues(t, -3, stockDelta)
	assert.EqualValues(t, 1, orderCount)

	// compteur analytics du jour
	assert.Equal(t, "1", store.Get(ctx, kv.AnalyticsKey("orders", "2025-01-15")))

	// l'échec est passé par l'agrégateur de logs (promu en error)
	assert.Len(t, docs.ErrorLogs(), 1)
	assert.Equal(t, "cdc.side_effect_failed", docs.ErrorLogs()[0].Event)
}

func TestUserUpdateSideEffects(t *testing.T) {
	pipeline, _, _, caches, boards := newTestPipeline(t)
	ctx := context.Background()

	caches.Set(ctx, "user", "u1", model.UserDoc{ID: "u1", Name: "Alice"}, 0)

	before := model.UserDoc{ID: "u1", TotalXP: 100}
	after := model.UserDoc{ID: "u1", TotalXP: 250, PhoneNumber: "+3361112233"}
	results, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionUsers,
		DocumentID: "u1",
		Operation:  model.OpUpdate,
		Before:     mustJSON(t, before),
		After:      mustJSON(t, after),
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, result := range results {
		assert.NoError(t, result.Err)
	}

	// cache invalidé
	var cached model.UserDoc
	assert.False(t, caches.Get(ctx, "user", "u1", &cached))

	// tag has-phone
	assert.True(t, pipeline.HasPhone(ctx, "u1"))

	// nouveau totalXP posé en absolu sur la vue all-time
	position := boards.GetUserPosition(ctx, leaderboard.ScopeGlobal, leaderboard.PeriodAllTime, "u1")
	require.NotNil(t, position)
	assert.Equal(t, float64(250), position.Score)
}

func TestUserUpdateWithoutChangesOnlyInvalidates(t *testing.T) {
	pipeline, _, _, _, boards := newTestPipeline(t)
	ctx := context.Background()

	same := model.UserDoc{ID: "u1", TotalXP: 100}
	results, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionUsers,
		DocumentID: "u1",
		Operation:  model.OpUpdate,
		Before:     mustJSON(t, same),
		After:      mustJSON(t, same),
	})
	require.NoError(t, err)
	assert.Len(t, results, 1) // uniquement l'invalidation du cache
	assert.Nil(t, boards.GetUserPosition(ctx, leaderboard.ScopeGlobal, leaderboard.PeriodAllTime, "u1"))
}

func TestGameResultCreateSideEffects(t *testing.T) {
	pipeline, store, docs, _, boards := newTestPipeline(t)
	ctx := context.Background()

	result := model.GameResultDoc{UserID: "u1", GameType: "tetris", Score: 900, XPEarned: 45}
	results, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionGameResults,
		DocumentID: "g1",
		Operation:  model.OpCreate,
		After:      mustJSON(t, result),
		UserID:     "u1",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}

	// classement global incrémenté de l'XP, classement du jeu du score
	global := boards.GetUserPosition(ctx, leaderboard.ScopeGlobal, leaderboard.PeriodAllTime, "u1")
	require.NotNil(t, global)
	assert.Equal(t, float64(45), global.Score)
	game := boards.GetUserPosition(ctx, leaderboard.GameScope("tetris"), leaderboard.PeriodDaily, "u1")
	require.NotNil(t, game)
	assert.Equal(t, float64(900), game.Score)

	// stats utilisateur
	var gamesPlayed, xp int64
	for _, inc := range docs.Increments() {
		if inc.Collection == model.CollectionUsers && inc.ID == "u1" {
			switch inc.Field {
			case "gamesPlayed":
				gamesPlayed = inc.Delta
			case "totalXP":
				xp = inc.Delta
			}
		}
	}
	assert.EqualValues(t, 1, gamesPlayed)
	assert.EqualValues(t, 45, xp)

	assert.Equal(t, "1", store.Get(ctx, kv.AnalyticsKey("games_played", "2025-01-15")))
}

func TestEventUpdateInvalidatesCaches(t *testing.T) {
	pipeline, _, _, caches, _ := newTestPipeline(t)
	ctx := context.Background()

	caches.Set(ctx, "event", "e1", model.EventDoc{ID: "e1", Title: "Launch"}, 0)
	caches.Set(ctx, "events", "upcoming", []string{"e1", "e2"}, 0)

	before := model.EventDoc{ID: "e1", Title: "Launch"}
	after := model.EventDoc{ID: "e1", Title: "Launch party"}
	results, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionEvents,
		DocumentID: "e1",
		Operation:  model.OpUpdate,
		Before:     mustJSON(t, before),
		After:      mustJSON(t, after),
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	var event model.EventDoc
	assert.False(t, caches.Get(ctx, "event", "e1", &event))
	var upcoming []string
	assert.False(t, caches.Get(ctx, "events", "upcoming", &upcoming))
}

func TestUnknownCollectionIsSilentNoop(t *testing.T) {
	pipeline, store, _, _, _ := newTestPipeline(t)
	ctx := context.Background()

	results, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: "reviews",
		DocumentID: "r1",
		Operation:  model.OpCreate,
		After:      json.RawMessage(`{"stars":5}`),
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	// l'événement est quand même capturé dans le stream
	assert.Len(t, store.XRevRangeN(ctx, kv.ChangeStreamKey("reviews"), 10), 1)
}

func TestGetRecentChangesRoundTrip(t *testing.T) {
	pipeline, _, _, _, _ := newTestPipeline(t)
	ctx := context.Background()

	for i, id := range []string{"o1", "o2", "o3"} {
		order := model.OrderDoc{UserID: "u1", Items: []model.OrderItem{{ProductID: "p1", Quantity: i + 1}}}
		_, err := pipeline.CaptureChange(ctx, model.ChangeEvent{
			Collection: model.CollectionOrders,
			DocumentID: id,
			Operation:  model.OpCreate,
			After:      mustJSON(t, order),
			UserID:     "u1",
		})
		require.NoError(t, err)
	}

	changes := pipeline.GetRecentChanges(ctx, model.CollectionOrders, 2)
	require.Len(t, changes, 2)
	assert.Equal(t, "o3", changes[0].DocumentID)
	assert.Equal(t, "o2", changes[1].DocumentID)
	assert.Equal(t, model.OpCreate, changes[0].Operation)

	var order model.OrderDoc
	require.NoError(t, json.Unmarshal(changes[0].After, &order))
	assert.EqualValues(t, 3, order.Items[0].Quantity)
}

func TestGetRecentChangesEmptyStream(t *testing.T) {
	pipeline, _, _, _, _ := newTestPipeline(t)
	assert.Empty(t, pipeline.GetRecentChanges(context.Background(), "nothing", 10))
}
