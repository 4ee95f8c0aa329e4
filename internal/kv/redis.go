package kv

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/logger"
)

// redisStore implémente Store au-dessus de go-redis. Toute erreur du client
// (store injoignable, timeout) est absorbée : un warning est loggé une seule
// fois pour tout le process, puis les opérations deviennent des no-op.
type redisStore struct {
	client   *redis.Client
	warnOnce sync.Once
}

// NewRedisStore crée le substrate. Un addr vide signifie "non configuré" :
// le store démarre directement en mode dégradé (fail-open).
func NewRedisStore(addr, password string, db int) Store {
	s := &redisStore{}
	if addr == "" {
		s.warn(nil)
		return s
	}
	s.client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return s
}

func (s *redisStore) warn(err error) {
	s.warnOnce.Do(func() {
		if err != nil {
			logger.Warning("key-value store unreachable, data plane running degraded (fail-open): %v", err)
		} else {
			logger.Warning("key-value store not configured, data plane running degraded (fail-open)")
		}
	})
}

// fail absorbe une erreur client. redis.Nil (clé absente) est un résultat
// normal, pas une panne.
func (s *redisStore) fail(err error) {
	if err != nil && err != redis.Nil {
		s.warn(err)
	}
}

func (s *redisStore) Get(ctx context.Context, key string) string {
	if s.client == nil {
		return ""
	}
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		s.fail(err)
		return ""
	}
	return v
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if s.client == nil {
		return
	}
	s.fail(s.client.Set(ctx, key, value, ttl).Err())
}

func (s *redisStore) Incr(ctx context.Context, key string) int64 {
	if s.client == nil {
		return 0
	}
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.fail(err)
		return 0
	}
	return n
}

func (s *redisStore) Del(ctx context.Context, keys ...string) {
	if s.client == nil || len(keys) == 0 {
		return
	}
	s.fail(s.client.Del(ctx, keys...).Err())
}

func (s *redisStore) Expire(ctx context.Context, key string, ttl time.Duration) {
	if s.client == nil {
		return
	}
	s.fail(s.client.Expire(ctx, key, ttl).Err())
}

func (s *redisStore) HSet(ctx context.Context, key string, fields map[string]string) {
	if s.client == nil || len(fields) == 0 {
		return
	}
	s.fail(s.client.HSet(ctx, key, fields).Err())
}

func (s *redisStore) HGetAll(ctx context.Context, key string) map[string]string {
	if s.client == nil {
		return map[string]string{}
	}
	m, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		s.fail(err)
		return map[string]string{}
	}
	return m
}

func (s *redisStore) ZAdd(ctx context.Context, key string, score float64, member string) {
	if s.client == nil {
		return
	}
	s.fail(s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err())
}

func (s *redisStore) ZIncrBy(ctx context.Context, key string, delta float64, member string) float64 {
	if s.client == nil {
		return 0
	}
	n, err := s.client.ZIncrBy(ctx, key, delta, member).Result()
	if err != nil {
		s.fail(err)
		return 0
	}
	return n
}

func (s *redisStore) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) []Member {
	if s.client == nil {
		return nil
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		s.fail(err)
		return nil
	}
	members := make([]Member, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		members = append(members, Member{Member: name, Score: z.Score})
	}
	return members
}

func (s *redisStore) ZRevRank(ctx context.Context, key, member string) (int64, bool) {
	if s.client == nil {
		return 0, false
	}
	rank, err := s.client.ZRevRank(ctx, key, member).Result()
	if err != nil {
		s.fail(err)
		return 0, false
	}
	return rank, true
}

func (s *redisStore) ZScore(ctx context.Context, key, member string) (float64, bool) {
	if s.client == nil {
		return 0, false
	}
	score, err := s.client.ZScore(ctx, key, member).Result()
	if err != nil {
		s.fail(err)
		return 0, false
	}
	return score, true
}

func (s *redisStore) ZRem(ctx context.Context, key string, members ...string) {
	if s.client == nil || len(members) == 0 {
		return
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	s.fail(s.client.ZRem(ctx, key, args...).Err())
}

func (s *redisStore) ZRemRangeByScore(ctx context.Context, key, min, max string) {
	if s.client == nil {
		return
	}
	s.fail(s.client.ZRemRangeByScore(ctx, key, min, max).Err())
}

func (s *redisStore) ZCard(ctx context.Context, key string) int64 {
	if s.client == nil {
		return 0
	}
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		s.fail(err)
		return 0
	}
	return n
}

func (s *redisStore) XAdd(ctx context.Context, stream string, values map[string]interface{}) {
	if s.client == nil {
		return
	}
	s.fail(s.client.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: values}).Err())
}

func (s *redisStore) XRevRangeN(ctx context.Context, stream string, count int64) []StreamEntry {
	if s.client == nil {
		return nil
	}
	msgs, err := s.client.XRevRangeN(ctx, stream, "+", "-", count).Result()
	if err != nil {
		s.fail(err)
		return nil
	}
	entries := make([]StreamEntry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, StreamEntry{ID: m.ID, Values: m.Values})
	}
	return entries
}

func (s *redisStore) Publish(ctx context.Context, channel, payload string) {
	if s.client == nil {
		return
	}
	s.fail(s.client.Publish(ctx, channel, payload).Err())
}

func (s *redisStore) Available(ctx context.Context) bool {
	if s.client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err() == nil
}
