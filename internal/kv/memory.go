package kv

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// PubMessage est un message publié capturé par le fake mémoire
type PubMessage struct {
	Channel string
	Payload string
}

// MemoryStore est une implémentation en mémoire de Store utilisée par les
// tests : TTL simulée via une horloge injectable, messages pub/sub capturés,
// et un mode Offline pour vérifier le comportement fail-open.
type MemoryStore struct {
	mu sync.Mutex

	// Now est l'horloge du store (time.Now par défaut)
	Now func() time.Time
	// Offline force le mode dégradé : écritures no-op, lectures vides
	Offline bool

	strings  map[string]string
	hashes   map[string]map[string]string
	zsets    map[string]map[string]float64
	streams  map[string][]StreamEntry
	expiries map[string]time.Time
	pubs     []PubMessage
	seq      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Now:      time.Now,
		strings:  make(map[string]string),
		hashes:   make(map[string]map[string]string),
		zsets:    make(map[string]map[string]float64),
		streams:  make(map[string][]StreamEntry),
		expiries: make(map[string]time.Time),
	}
}

// Advance avance l'horloge du store (remplace Now par une horloge fixe)
func (s *MemoryStore) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now().Add(d)
	s.Now = func() time.Time { return now }
}

// Published renvoie une copie des messages pub/sub émis
func (s *MemoryStore) Published() []PubMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PubMessage, len(s.pubs))
	copy(out, s.pubs)
	return out
}

// TTL renvoie la durée de vie restante d'une clé (0 si aucune)
func (s *MemoryStore) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expiries[key]
	if !ok {
		return 0
	}
	return exp.Sub(s.Now())
}

// purge supprime la clé si elle est expirée. Appelé sous verrou.
func (s *MemoryStore) purge(key string) {
	exp, ok := s.expiries[key]
	if !ok || s.Now().Before(exp) {
		return
	}
	delete(s.strings, key)
	delete(s.hashes, key)
	delete(s.zsets, key)
	delete(s.streams, key)
	delete(s.expiries, key)
}

func (s *MemoryStore) Get(ctx context.Context, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return ""
	}
	s.purge(key)
	return s.strings[key]
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.strings[key] = value
	if ttl > 0 {
		s.expiries[key] = s.Now().Add(ttl)
	} else {
		delete(s.expiries, key)
	}
}

func (s *MemoryStore) Incr(ctx context.Context, key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return 0
	}
	s.purge(key)
	n, _ := strconv.ParseInt(s.strings[key], 10, 64)
	n++
	s.strings[key] = strconv.FormatInt(n, 10)
	return n
}

func (s *MemoryStore) Del(ctx context.Context, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	for _, key := range keys {
		delete(s.strings, key)
		delete(s.hashes, key)
		delete(s.zsets, key)
		delete(s.streams, key)
		delete(s.expiries, key)
	}
}

func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.expiries[key] = s.Now().Add(ttl)
}

func (s *MemoryStore) HSet(ctx context.Context, key string, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.purge(key)
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
}

func (s *MemoryStore) HGetAll(ctx context.Context, key string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	if s.Offline {
		return out
	}
	s.purge(key)
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) zset(key string) map[string]float64 {
	z, ok := s.zsets[key]
	if !ok {
		z = make(map[string]float64)
		s.zsets[key] = z
	}
	return z
}

func (s *MemoryStore) ZAdd(ctx context.Context, key string, score float64, member string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.purge(key)
	s.zset(key)[member] = score
}

func (s *MemoryStore) ZIncrBy(ctx context.Context, key string, delta float64, member string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return 0
	}
	s.purge(key)
	z := s.zset(key)
	z[member] += delta
	return z[member]
}

// sortedMembers renvoie les membres triés comme ZREVRANGE : score décroissant,
// égalité départagée par ordre lexical inverse du membre. Appelé sous verrou.
func (s *MemoryStore) sortedMembers(key string) []Member {
	z := s.zsets[key]
	members := make([]Member, 0, len(z))
	for m, sc := range z {
		members = append(members, Member{Member: m, Score: sc})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].Member > members[j].Member
	})
	return members
}

func (s *MemoryStore) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return nil
	}
	s.purge(key)
	members := s.sortedMembers(key)
	n := int64(len(members))
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = 0
	}
	if start >= n {
		return nil
	}
	if stop >= n {
		stop = n - 1
	}
	if stop < start {
		return nil
	}
	return members[start : stop+1]
}

func (s *MemoryStore) ZRevRank(ctx context.Context, key, member string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return 0, false
	}
	s.purge(key)
	for i, m := range s.sortedMembers(key) {
		if m.Member == member {
			return int64(i), true
		}
	}
	return 0, false
}

func (s *MemoryStore) ZScore(ctx context.Context, key, member string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return 0, false
	}
	s.purge(key)
	score, ok := s.zsets[key][member]
	return score, ok
}

func (s *MemoryStore) ZRem(ctx context.Context, key string, members ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.purge(key)
	for _, m := range members {
		delete(s.zsets[key], m)
	}
}

func (s *MemoryStore) ZRemRangeByScore(ctx context.Context, key, min, max string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.purge(key)
	lo := parseScoreBound(min, false)
	hi := parseScoreBound(max, true)
	for m, sc := range s.zsets[key] {
		if sc >= lo && sc <= hi {
			delete(s.zsets[key], m)
		}
	}
}

func parseScoreBound(bound string, upper bool) float64 {
	switch bound {
	case "-inf":
		return -1e308
	case "+inf":
		return 1e308
	}
	f, err := strconv.ParseFloat(bound, 64)
	if err != nil {
		if upper {
			return 1e308
		}
		return -1e308
	}
	return f
}

func (s *MemoryStore) ZCard(ctx context.Context, key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return 0
	}
	s.purge(key)
	return int64(len(s.zsets[key]))
}

func (s *MemoryStore) XAdd(ctx context.Context, stream string, values map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.seq++
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	s.streams[stream] = append(s.streams[stream], StreamEntry{
		ID:     fmt.Sprintf("%d-0", s.seq),
		Values: copied,
	})
}

func (s *MemoryStore) XRevRangeN(ctx context.Context, stream string, count int64) []StreamEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return nil
	}
	entries := s.streams[stream]
	out := make([]StreamEntry, 0, count)
	for i := len(entries) - 1; i >= 0 && int64(len(out)) < count; i-- {
		out = append(out, entries[i])
	}
	return out
}

func (s *MemoryStore) Publish(ctx context.Context, channel, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return
	}
	s.pubs = append(s.pubs, PubMessage{Channel: channel, Payload: payload})
}

func (s *MemoryStore) Available(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.Offline
}
