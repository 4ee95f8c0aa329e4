// Package logstream agrège les logs applicatifs dans le key-value store :
// entrées éphémères par niveau (24h), index temporel, compteurs du jour.
// Les entrées error sont en plus persistées définitivement dans le store de
// référence — la seule donnée du data plane garantie de ne pas expirer.
package logstream

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/docstore"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logger"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// retention est la durée de vie des entrées éphémères et des compteurs du jour.
const retention = 24 * time.Hour

// DefaultRecentLimit est la taille par défaut de GetRecent.
const DefaultRecentLimit = 100

var levels = []string{model.LogLevelInfo, model.LogLevelWarn, model.LogLevelError}

type Aggregator struct {
	store kv.Store
	docs  docstore.Store
	now   func() time.Time
}

func New(store kv.Store, docs docstore.Store) *Aggregator {
	return &Aggregator{store: store, docs: docs, now: time.Now}
}

// Log écrit l'entrée dans le store : record 24h, index temporel, compteurs,
// et persistance permanente pour le niveau error. Les quatre écritures sont
// indépendantes ; si la persistance permanente échoue, l'entrée est émise sur
// la console pour ne jamais perdre une erreur.
func (a *Aggregator) Log(ctx context.Context, entry model.LogEntry) {
	if entry.Timestamp == 0 {
		entry.Timestamp = a.now().UnixMilli()
	}
	switch entry.Level {
	case model.LogLevelInfo, model.LogLevelWarn, model.LogLevelError:
	default:
		entry.Level = model.LogLevelInfo
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Error("logstream: could not encode entry %q: %v", entry.Event, err)
		return
	}

	key := kv.LogEntryKey(entry.Level, entry.Timestamp)
	a.store.Set(ctx, key, string(data), retention)
	a.store.ZAdd(ctx, kv.LogTimelineKey(entry.Level), float64(entry.Timestamp), key)

	if n := a.store.Incr(ctx, kv.LogCountKey(entry.Level)); n == 1 {
		a.store.Expire(ctx, kv.LogCountKey(entry.Level), retention)
	}
	a.store.Incr(ctx, kv.LogCountTotalKey)

	if entry.Level == model.LogLevelError {
		if err := a.docs.InsertErrorLog(ctx, entry); err != nil {
			// fallback console : une erreur ne doit jamais être perdue
			logger.Error("logstream: permanent write failed, entry follows: %s (%v)", string(data), err)
		}
	}
}

// GetRecent renvoie les entrées les plus récentes d'un niveau, ou de tous les
// niveaux fusionnés par timestamp décroissant pour level="all". Les clés
// expirées sont filtrées, jamais une erreur.
func (a *Aggregator) GetRecent(ctx context.Context, level string, limit int) []model.LogEntry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	if level == "all" {
		var merged []model.LogEntry
		for _, lvl := range levels {
			merged = append(merged, a.recentForLevel(ctx, lvl, limit)...)
		}
		sort.Slice(merged, func(i, j int) bool {
			return merged[i].Timestamp > merged[j].Timestamp
		})
		if len(merged) > limit {
			merged = merged[:limit]
		}
		return merged
	}

	return a.recentForLevel(ctx, level, limit)
}

func (a *Aggregator) recentForLevel(ctx context.Context, level string, limit int) []model.LogEntry {
	keys := a.store.ZRevRangeWithScores(ctx, kv.LogTimelineKey(level), 0, int64(limit)-1)
	entries := make([]model.LogEntry, 0, len(keys))
	for _, member := range keys {
		raw := a.store.Get(ctx, member.Member)
		if raw == "" {
			// record expiré, l'index le référence encore
			continue
		}
		var entry model.LogEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// GetStats renvoie les compteurs du jour par niveau et le total cumulé,
// chaque compteur absent valant 0.
func (a *Aggregator) GetStats(ctx context.Context) model.LogStats {
	count := func(key string) int64 {
		n, _ := strconv.ParseInt(a.store.Get(ctx, key), 10, 64)
		return n
	}
	return model.LogStats{
		Info:  count(kv.LogCountKey(model.LogLevelInfo)),
		Warn:  count(kv.LogCountKey(model.LogLevelWarn)),
		Error: count(kv.LogCountKey(model.LogLevelError)),
		Total: count(kv.LogCountTotalKey),
	}
}

// ClearOldLogs purge des index temporels les entrées plus vieilles que 24h.
// À lancer sur un scheduler, pas à chaque écriture.
func (a *Aggregator) ClearOldLogs(ctx context.Context) {
	cutoff := a.now().Add(-retention).UnixMilli()
	for _, level := range levels {
		a.store.ZRemRangeByScore(ctx, kv.LogTimelineKey(level), "-inf", fmt.Sprintf("%d", cutoff))
	}
}
