package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	c := New(store)

	user := model.UserDoc{ID: "u1", Name: "Alice", TotalXP: 500}
	c.Set(ctx, "user", "u1", user, 0)

	var got model.UserDoc
	require.True(t, c.Get(ctx, "user", "u1", &got))
	assert.Equal(t, user, got)
}

func TestCacheDefaultTTL(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	store.Now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	c := New(store)

	c.Set(ctx, "user", "u1", "v", 0)
	assert.Equal(t, DefaultTTL, store.TTL(kv.CacheKey("user", "u1")))
}

func TestCacheMiss(t *testing.T) {
	ctx := context.Background()
	c := New(kv.NewMemoryStore())

	var got string
	assert.False(t, c.Get(ctx, "user", "absent", &got))
}

func TestCacheInvalidJSONIsMiss(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	c := New(store)

	store.Set(ctx, kv.CacheKey("user", "u1"), "{not json", 0)

	var got model.UserDoc
	assert.False(t, c.Get(ctx, "user", "u1", &got))
}

func TestCacheDel(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	c := New(store)

	c.Set(ctx, "user", "u1", "v", 0)
	c.Del(ctx, "user", "u1")

	var got string
	assert.False(t, c.Get(ctx, "user", "u1", &got))
}

func TestCacheOfflineIsAdvisory(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	store.Offline = true
	c := New(store)

	// aucune panique, aucun résultat : le cache est advisory
	c.Set(ctx, "user", "u1", "v", 0)
	var got string
	assert.False(t, c.Get(ctx, "user", "u1", &got))
}
