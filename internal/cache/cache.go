// Package cache fournit un cache typé JSON au-dessus du key-value store.
// Le cache est purement advisory : toute erreur (store, sérialisation) est
// loggée et traitée comme un miss, jamais remontée au caller.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logger"
)

// DefaultTTL est la durée de vie par défaut d'une entrée.
const DefaultTTL = 300 * time.Second

type Cache struct {
	store kv.Store
}

func New(store kv.Store) *Cache {
	return &Cache{store: store}
}

// Get décode l'entrée cache:{type}:{id} dans dest. Renvoie false sur miss,
// store indisponible ou JSON invalide.
func (c *Cache) Get(ctx context.Context, typ, id string, dest interface{}) bool {
	raw := c.store.Get(ctx, kv.CacheKey(typ, id))
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Warning("cache: invalid JSON for %s:%s, treating as miss: %v", typ, id, err)
		return false
	}
	return true
}

// Set sérialise value sous cache:{type}:{id}. Un ttl <= 0 applique DefaultTTL.
func (c *Cache) Set(ctx context.Context, typ, id string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warning("cache: could not encode %s:%s: %v", typ, id, err)
		return
	}
	c.store.Set(ctx, kv.CacheKey(typ, id), string(data), ttl)
}

// Del supprime l'entrée cache:{type}:{id}.
func (c *Cache) Del(ctx context.Context, typ, id string) {
	c.store.Del(ctx, kv.CacheKey(typ, id))
}
