package kv

import (
	"context"
	"time"
)

// Member représente un membre d'un sorted set avec son score
type Member struct {
	Member string
	Score  float64
}

// StreamEntry représente une entrée d'un stream (xadd/xrevrange)
type StreamEntry struct {
	ID     string
	Values map[string]interface{}
}

// Store expose les primitives du key-value store (strings, hashes, sorted
// sets, streams, pub/sub). Toutes les méthodes sont fail-open : si le store
// est injoignable ou non configuré, les écritures sont des no-op silencieux
// et les lectures renvoient la valeur vide/zéro. Aucune méthode ne renvoie
// d'erreur au caller — le data plane ne doit jamais bloquer le chemin
// d'écriture principal.
type Store interface {
	// Strings
	Get(ctx context.Context, key string) string
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Incr(ctx context.Context, key string) int64
	Del(ctx context.Context, keys ...string)
	Expire(ctx context.Context, key string, ttl time.Duration)

	// Hashes
	HSet(ctx context.Context, key string, fields map[string]string)
	HGetAll(ctx context.Context, key string) map[string]string

	// Sorted sets
	ZAdd(ctx context.Context, key string, score float64, member string)
	ZIncrBy(ctx context.Context, key string, delta float64, member string) float64
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) []Member
	ZRevRank(ctx context.Context, key, member string) (int64, bool)
	ZScore(ctx context.Context, key, member string) (float64, bool)
	ZRem(ctx context.Context, key string, members ...string)
	ZRemRangeByScore(ctx context.Context, key, min, max string)
	ZCard(ctx context.Context, key string) int64

	// Streams
	XAdd(ctx context.Context, stream string, values map[string]interface{})
	XRevRangeN(ctx context.Context, stream string, count int64) []StreamEntry

	// Pub/sub
	Publish(ctx context.Context, channel, payload string)

	// Available indique si le store répond (utilisé par /health uniquement,
	// jamais pour court-circuiter une opération)
	Available(ctx context.Context) bool
}
