// Package cdc capture les mutations des collections suivies, les journalise
// dans un stream par collection, publie une notification, puis déclenche les
// side effects de la collection avec isolation des échecs : la capture est
// une augmentation best-effort d'une écriture qui a déjà réussi dans le store
// de référence, elle ne doit jamais la faire échouer.
package cdc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/cache"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/docstore"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/leaderboard"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logstream"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// ErrInvalidEvent signale un événement mal formé (violation de contrat côté
// appelant, fail-fast). C'est la seule erreur qui remonte de CaptureChange.
var ErrInvalidEvent = errors.New("invalid change event")

// SideEffectResult est le résultat d'un side effect, échec compris. Les
// échecs sont loggés et exposés ici, jamais propagés : un side effect qui
// tombe n'annule ni ses voisins ni l'écriture d'origine.
type SideEffectResult struct {
	Name string
	Err  error
}

// DefaultChangesLimit est la taille par défaut de GetRecentChanges.
const DefaultChangesLimit = 50

type Pipeline struct {
	store  kv.Store
	docs   docstore.Store
	boards *leaderboard.Engine
	cache  *cache.Cache
	logs   *logstream.Aggregator
	now    func() time.Time
}

func New(store kv.Store, docs docstore.Store, boards *leaderboard.Engine, c *cache.Cache, logs *logstream.Aggregator) *Pipeline {
	return &Pipeline{
		store:  store,
		docs:   docs,
		boards: boards,
		cache:  c,
		logs:   logs,
		now:    time.Now,
	}
}

func validate(event model.ChangeEvent) error {
	if event.Collection == "" || event.DocumentID == "" {
		return fmt.Errorf("%w: collection and documentId are required", ErrInvalidEvent)
	}
	switch event.Operation {
	case model.OpCreate:
		if event.Before != nil || event.After == nil {
			return fmt.Errorf("%w: create requires after only", ErrInvalidEvent)
		}
	case model.OpUpdate:
		if event.Before == nil || event.After == nil {
			return fmt.Errorf("%w: update requires before and after", ErrInvalidEvent)
		}
	case model.OpDelete:
		if event.Before == nil || event.After != nil {
			return fmt.Errorf("%w: delete requires before only", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidEvent, event.Operation)
	}
	return nil
}

// CaptureChange journalise l'événement dans cdc:{collection}, le publie sur
// changes:{collection}, puis exécute les side effects de la collection en
// parallèle. Renvoie le résultat de chaque side effect ; la seule erreur
// possible est ErrInvalidEvent (événement mal formé).
func (p *Pipeline) CaptureChange(ctx context.Context, event model.ChangeEvent) ([]SideEffectResult, error) {
	if err := validate(event); err != nil {
		return nil, err
	}
	if event.Timestamp == 0 {
		event.Timestamp = p.now().UnixMilli()
	}

	values := map[string]interface{}{
		"documentId": event.DocumentID,
		"operation":  string(event.Operation),
		"timestamp":  strconv.FormatInt(event.Timestamp, 10),
	}
	if event.UserID != "" {
		values["userId"] = event.UserID
	}
	if event.Before != nil {
		values["before"] = string(event.Before)
	}
	if event.After != nil {
		values["after"] = string(event.After)
	}
	p.store.XAdd(ctx, kv.ChangeStreamKey(event.Collection), values)

	if payload, err := marshalEvent(event); err == nil {
		p.store.Publish(ctx, kv.ChangeChannel(event.Collection), payload)
	}

	results := p.dispatch(ctx, event)
	for _, result := range results {
		if result.Err != nil {
			p.logs.Log(ctx, model.LogEntry{
				Level:  model.LogLevelError,
				Event:  "cdc.side_effect_failed",
				UserID: event.UserID,
				Data: map[string]interface{}{
					"collection": event.Collection,
					"documentId": event.DocumentID,
					"operation":  string(event.Operation),
					"sideEffect": result.Name,
					"error":      result.Err.Error(),
				},
			})
		}
	}
	return results, nil
}

// GetRecentChanges lit le stream d'une collection en sens inverse (plus
// récent d'abord) et reparse les payloads before/after. Liste vide, jamais
// une erreur, si le stream est vide ou illisible.
func (p *Pipeline) GetRecentChanges(ctx context.Context, collection string, limit int) []model.ChangeEvent {
	if limit <= 0 {
		limit = DefaultChangesLimit
	}
	entries := p.store.XRevRangeN(ctx, kv.ChangeStreamKey(collection), int64(limit))
	events := make([]model.ChangeEvent, 0, len(entries))
	for _, entry := range entries {
		event := model.ChangeEvent{Collection: collection}
		if v, ok := entry.Values["documentId"].(string); ok {
			event.DocumentID = v
		}
		if v, ok := entry.Values["operation"].(string); ok {
			event.Operation = model.Operation(v)
		}
		if v, ok := entry.Values["timestamp"].(string); ok {
			event.Timestamp, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := entry.Values["userId"].(string); ok {
			event.UserID = v
		}
		if v, ok := entry.Values["before"].(string); ok {
			event.Before = []byte(v)
		}
		if v, ok := entry.Values["after"].(string); ok {
			event.After = []byte(v)
		}
		events = append(events, event)
	}
	return events
}

// sideEffect est un effet nommé exécuté lors du fan-out.
type sideEffect struct {
	name string
	fn   func(context.Context) error
}

// runParallel exécute les side effects en parallèle, chacun avec son propre
// résultat : l'équivalent d'un "settle all", aucun échec n'interrompt les autres.
func (p *Pipeline) runParallel(ctx context.Context, effects []sideEffect) []SideEffectResult {
	results := make([]SideEffectResult, len(effects))
	var wg sync.WaitGroup
	for i, effect := range effects {
		wg.Add(1)
		go func(i int, effect sideEffect) {
			defer wg.Done()
			results[i] = SideEffectResult{Name: effect.name, Err: effect.fn(ctx)}
		}(i, effect)
	}
	wg.Wait()
	return results
}

// bumpAnalytics incrémente analytics:{metric}:{YYYY-MM-DD}.
func (p *Pipeline) bumpAnalytics(ctx context.Context, metric string) {
	day := p.now().Format("2006-01-02")
	p.store.Incr(ctx, kv.AnalyticsKey(metric, day))
}
