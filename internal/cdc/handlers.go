package cdc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/leaderboard"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// hasPhoneSetKey est le hash des utilisateurs ayant renseigné un téléphone.
const hasPhoneSetKey = "users:has-phone"

func marshalEvent(event model.ChangeEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// dispatch route l'événement vers le handler de sa collection. Une collection
// sans handler est un no-op volontaire (routage, pas un cas manquant).
func (p *Pipeline) dispatch(ctx context.Context, event model.ChangeEvent) []SideEffectResult {
	switch event.Collection {
	case model.CollectionOrders:
		if event.Operation == model.OpCreate {
			return p.handleOrderCreate(ctx, event)
		}
	case model.CollectionUsers:
		if event.Operation == model.OpUpdate {
			return p.handleUserUpdate(ctx, event)
		}
	case model.CollectionGameResults:
		if event.Operation == model.OpCreate {
			return p.handleGameResultCreate(ctx, event)
		}
	case model.CollectionEvents:
		if event.Operation == model.OpUpdate {
			return p.handleEventUpdate(ctx, event)
		}
	}
	return nil
}

// handleOrderCreate : décrément du stock par ligne de commande, compteur
// analytics, stat orderCount de l'utilisateur — trois effets indépendants.
func (p *Pipeline) handleOrderCreate(ctx context.Context, event model.ChangeEvent) []SideEffectResult {
	var order model.OrderDoc
	if err := json.Unmarshal(event.After, &order); err != nil {
		return []SideEffectResult{{Name: "orders.decode", Err: fmt.Errorf("could not decode order: %w", err)}}
	}

	var effects []sideEffect
	for _, item := range order.Items {
		item := item
		effects = append(effects, sideEffect{
			name: "inventory.decrement:" + item.ProductID,
			fn: func(ctx context.Context) error {
				return p.docs.IncrementField(ctx, model.CollectionProducts, item.ProductID, "stock", -int64(item.Quantity))
			},
		})
	}
	effects = append(effects, sideEffect{
		name: "analytics.orders",
		fn: func(ctx context.Context) error {
			p.bumpAnalytics(ctx, "orders")
			return nil
		},
	})
	userID := order.UserID
	if userID == "" {
		userID = event.UserID
	}
	if userID != "" {
		effects = append(effects, sideEffect{
			name: "users.order_count",
			fn: func(ctx context.Context) error {
				return p.docs.IncrementField(ctx, model.CollectionUsers, userID, "orderCount", 1)
			},
		})
	}
	return p.runParallel(ctx, effects)
}

// handleUserUpdate : invalidation du cache utilisateur, tag has-phone si le
// téléphone vient d'être renseigné, mise à jour du classement si totalXP a changé.
func (p *Pipeline) handleUserUpdate(ctx context.Context, event model.ChangeEvent) []SideEffectResult {
	var before, after model.UserDoc
	if err := json.Unmarshal(event.Before, &before); err != nil {
		return []SideEffectResult{{Name: "users.decode", Err: fmt.Errorf("could not decode user before: %w", err)}}
	}
	if err := json.Unmarshal(event.After, &after); err != nil {
		return []SideEffectResult{{Name: "users.decode", Err: fmt.Errorf("could not decode user after: %w", err)}}
	}

	effects := []sideEffect{
		{
			name: "cache.invalidate_user",
			fn: func(ctx context.Context) error {
				p.cache.Del(ctx, "user", event.DocumentID)
				return nil
			},
		},
	}
	if after.PhoneNumber != before.PhoneNumber && after.PhoneNumber != "" {
		effects = append(effects, sideEffect{
			name: "users.tag_has_phone",
			fn: func(ctx context.Context) error {
				p.store.HSet(ctx, hasPhoneSetKey, map[string]string{event.DocumentID: after.PhoneNumber})
				return nil
			},
		})
	}
	if after.TotalXP != before.TotalXP {
		effects = append(effects, sideEffect{
			name: "leaderboard.sync_xp",
			fn: func(ctx context.Context) error {
				// totalXP est un cumul : pose absolue sur la vue all-time
				p.boards.Update(ctx, leaderboard.ScopeGlobal, leaderboard.PeriodAllTime,
					event.DocumentID, float64(after.TotalXP), false)
				return nil
			},
		})
	}
	return p.runParallel(ctx, effects)
}

// handleGameResultCreate : classements (global + scope du jeu), analytics,
// stats utilisateur (gamesPlayed, totalXP).
func (p *Pipeline) handleGameResultCreate(ctx context.Context, event model.ChangeEvent) []SideEffectResult {
	var result model.GameResultDoc
	if err := json.Unmarshal(event.After, &result); err != nil {
		return []SideEffectResult{{Name: "gameResults.decode", Err: fmt.Errorf("could not decode game result: %w", err)}}
	}

	effects := []sideEffect{
		{
			name: "leaderboard.update",
			fn: func(ctx context.Context) error {
				p.boards.UpdateAllPeriods(ctx, leaderboard.ScopeGlobal, result.UserID, float64(result.XPEarned), true)
				p.boards.UpdateAllPeriods(ctx, leaderboard.GameScope(result.GameType), result.UserID, float64(result.Score), true)
				return nil
			},
		},
		{
			name: "analytics.games_played",
			fn: func(ctx context.Context) error {
				p.bumpAnalytics(ctx, "games_played")
				return nil
			},
		},
		{
			name: "users.game_stats",
			fn: func(ctx context.Context) error {
				if err := p.docs.IncrementField(ctx, model.CollectionUsers, result.UserID, "gamesPlayed", 1); err != nil {
					return err
				}
				return p.docs.IncrementField(ctx, model.CollectionUsers, result.UserID, "totalXP", result.XPEarned)
			},
		},
	}
	return p.runParallel(ctx, effects)
}

// handleEventUpdate : invalidation du cache de l'événement et de la liste
// des événements à venir.
func (p *Pipeline) handleEventUpdate(ctx context.Context, event model.ChangeEvent) []SideEffectResult {
	effects := []sideEffect{
		{
			name: "cache.invalidate_event",
			fn: func(ctx context.Context) error {
				p.cache.Del(ctx, "event", event.DocumentID)
				return nil
			},
		},
		{
			name: "cache.invalidate_upcoming",
			fn: func(ctx context.Context) error {
				p.cache.Del(ctx, "events", "upcoming")
				return nil
			},
		},
	}
	return p.runParallel(ctx, effects)
}

// HasPhone indique si l'utilisateur est taggé dans le set has-phone.
func (p *Pipeline) HasPhone(ctx context.Context, userID string) bool {
	_, ok := p.store.HGetAll(ctx, hasPhoneSetKey)[userID]
	return ok
}
