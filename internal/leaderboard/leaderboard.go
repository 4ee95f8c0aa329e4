// Package leaderboard gère les classements par scope et par période sur les
// sorted sets du key-value store. Les vues daily/weekly vivent dans des
// buckets calendaires à durée de vie bornée et expirent indépendamment de la
// vue all-time.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// Period est la fenêtre temporelle d'un classement.
type Period string

const (
	PeriodAllTime Period = "alltime"
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
)

// Periods liste toutes les périodes, pour les mises à jour en cascade.
var Periods = []Period{PeriodAllTime, PeriodDaily, PeriodWeekly}

// ScopeGlobal est le classement global ; un jeu a son propre scope via GameScope.
const ScopeGlobal = "global"

// GameScope construit le scope d'un jeu : game:{name}
func GameScope(name string) string {
	return "game:" + name
}

const (
	dailyTTL  = 48 * time.Hour
	weeklyTTL = 14 * 24 * time.Hour
	// DefaultTopLimit est la taille par défaut d'un top
	DefaultTopLimit = 100
)

type Engine struct {
	store kv.Store
	now   func() time.Time
}

func New(store kv.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// bucket renvoie le label du bucket courant ("" pour all-time,
// YYYY-MM-DD pour daily, YYYY-Www ISO pour weekly).
func (e *Engine) bucket(period Period) string {
	now := e.now()
	switch period {
	case PeriodDaily:
		return now.Format("2006-01-02")
	case PeriodWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return ""
	}
}

func (e *Engine) key(scope string, period Period) string {
	return kv.LeaderboardKey(scope, string(period), e.bucket(period))
}

// refreshTTL repose la TTL du bucket (refresh idempotent à chaque update).
func (e *Engine) refreshTTL(ctx context.Context, key string, period Period) {
	switch period {
	case PeriodDaily:
		e.store.Expire(ctx, key, dailyTTL)
	case PeriodWeekly:
		e.store.Expire(ctx, key, weeklyTTL)
	}
}

// Update applique delta au score de l'utilisateur. increment=true ajoute au
// score existant (zincrby, chemin par défaut), increment=false pose la valeur
// absolue (zadd, chemin resync).
func (e *Engine) Update(ctx context.Context, scope string, period Period, userID string, delta float64, increment bool) {
	key := e.key(scope, period)
	if increment {
		e.store.ZIncrBy(ctx, key, delta, userID)
	} else {
		e.store.ZAdd(ctx, key, delta, userID)
	}
	e.refreshTTL(ctx, key, period)
}

// UpdateAllPeriods applique la même mise à jour aux trois périodes d'un scope.
func (e *Engine) UpdateAllPeriods(ctx context.Context, scope, userID string, delta float64, increment bool) {
	for _, period := range Periods {
		e.Update(ctx, scope, period, userID, delta, increment)
	}
}

// GetTop renvoie les limit premières entrées, meilleur score d'abord. Les
// rangs sont assignés par position d'énumération ; les égalités suivent
// l'ordre natif du sorted set (score décroissant puis membre lexical).
func (e *Engine) GetTop(ctx context.Context, scope string, period Period, limit int) []model.LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	members := e.store.ZRevRangeWithScores(ctx, e.key(scope, period), 0, int64(limit)-1)
	entries := make([]model.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		entries = append(entries, model.LeaderboardEntry{
			UserID: m.Member,
			Score:  m.Score,
			Rank:   int64(i) + 1,
		})
	}
	return entries
}

// GetUserPosition renvoie la position de l'utilisateur, ou nil s'il n'a
// jamais été scoré dans ce (scope, period) — non classé, pas rang 0.
func (e *Engine) GetUserPosition(ctx context.Context, scope string, period Period, userID string) *model.UserPosition {
	key := e.key(scope, period)
	score, ok := e.store.ZScore(ctx, key, userID)
	if !ok {
		return nil
	}
	rank, ok := e.store.ZRevRank(ctx, key, userID)
	if !ok {
		return nil
	}
	return &model.UserPosition{
		UserID: userID,
		Score:  score,
		Rank:   rank + 1,
	}
}

// GetAroundUser renvoie une fenêtre de 2*rng+1 entrées centrée sur le rang de
// l'utilisateur, bornée à zéro. Vide si l'utilisateur est non classé.
func (e *Engine) GetAroundUser(ctx context.Context, scope string, period Period, userID string, rng int) []model.LeaderboardEntry {
	if rng <= 0 {
		rng = 5
	}
	key := e.key(scope, period)
	rank, ok := e.store.ZRevRank(ctx, key, userID)
	if !ok {
		return nil
	}

	start := rank - int64(rng)
	if start < 0 {
		start = 0
	}
	stop := rank + int64(rng)

	members := e.store.ZRevRangeWithScores(ctx, key, start, stop)
	entries := make([]model.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		entries = append(entries, model.LeaderboardEntry{
			UserID: m.Member,
			Score:  m.Score,
			Rank:   start + int64(i) + 1,
		})
	}
	return entries
}

// Size renvoie la cardinalité du classement.
func (e *Engine) Size(ctx context.Context, scope string, period Period) int64 {
	return e.store.ZCard(ctx, e.key(scope, period))
}

// Remove retire l'utilisateur du classement.
func (e *Engine) Remove(ctx context.Context, scope string, period Period, userID string) {
	e.store.ZRem(ctx, e.key(scope, period), userID)
}

// SyncFromSource reconstruit le classement depuis le store de référence :
// suppression du set, ré-ajout de chaque paire, repose de la TTL.
// Pas de verrou : un resync concurrent d'un incrément live peut perdre cet
// incrément. Compromis assumé, à n'utiliser qu'en reprise/migration.
func (e *Engine) SyncFromSource(ctx context.Context, scope string, period Period, entries []model.ScoreEntry) {
	key := e.key(scope, period)
	e.store.Del(ctx, key)
	for _, entry := range entries {
		e.store.ZAdd(ctx, key, entry.Score, entry.UserID)
	}
	e.refreshTTL(ctx, key, period)
}
