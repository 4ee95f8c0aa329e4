package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "k", "v", time.Hour)
	assert.Equal(t, "v", store.Get(ctx, "k"))

	store.Advance(2 * time.Hour)
	assert.Equal(t, "", store.Get(ctx, "k"))
}

func TestMemoryStoreZRevRangeOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.ZAdd(ctx, "z", 10, "a")
	store.ZAdd(ctx, "z", 30, "b")
	store.ZAdd(ctx, "z", 20, "c")
	// égalité de score : ordre lexical inverse, comme ZREVRANGE
	store.ZAdd(ctx, "z", 30, "d")

	members := store.ZRevRangeWithScores(ctx, "z", 0, -1)
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Member
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, names)
}

func TestMemoryStoreStreamReverse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.XAdd(ctx, "s", map[string]interface{}{"n": "1"})
	store.XAdd(ctx, "s", map[string]interface{}{"n": "2"})
	store.XAdd(ctx, "s", map[string]interface{}{"n": "3"})

	entries := store.XRevRangeN(ctx, "s", 2)
	assert.Len(t, entries, 2)
	assert.Equal(t, "3", entries[0].Values["n"])
	assert.Equal(t, "2", entries[1].Values["n"])
}

func TestMemoryStoreOffline(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Offline = true

	store.Set(ctx, "k", "v", 0)
	assert.Equal(t, "", store.Get(ctx, "k"))
	assert.EqualValues(t, 0, store.Incr(ctx, "n"))
	assert.False(t, store.Available(ctx))
}

func TestMemoryStoreIncr(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	assert.EqualValues(t, 1, store.Incr(ctx, "n"))
	assert.EqualValues(t, 2, store.Incr(ctx, "n"))
	assert.Equal(t, "2", store.Get(ctx, "n"))
}
