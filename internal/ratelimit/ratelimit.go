// Package ratelimit implémente un rate limiter à fenêtre fixe par
// (endpoint, identifiant), adossé au key-value store. Fail-open : si le store
// est indisponible, toutes les requêtes passent avec le quota complet.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// Preset est une politique de limitation (constantes métier, pas mécanisme).
type Preset struct {
	Endpoint string
	Limit    int
	Window   time.Duration
}

var (
	// GamePreset limite les endpoints de jeu
	GamePreset = Preset{Endpoint: "game", Limit: 10, Window: 60 * time.Second}
	// APIPreset limite l'API générale
	APIPreset = Preset{Endpoint: "api", Limit: 30, Window: 60 * time.Second}
	// ReadPreset limite les endpoints en lecture seule
	ReadPreset = Preset{Endpoint: "read", Limit: 100, Window: 60 * time.Second}
	// AuthPreset limite les endpoints sensibles (auth)
	AuthPreset = Preset{Endpoint: "auth", Limit: 5, Window: 300 * time.Second}
)

type Limiter struct {
	store kv.Store
	now   func() time.Time
}

func New(store kv.Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// Check compte la requête dans la fenêtre courante et renvoie le verdict.
// Le compteur est incrémenté atomiquement côté store ; la TTL n'est posée
// qu'à la première requête de la fenêtre (count == 1), la clé expire donc
// d'elle-même en fin de fenêtre.
func (l *Limiter) Check(ctx context.Context, endpoint, identifier string, limit int, window time.Duration) model.RateLimitResult {
	windowSec := int64(window / time.Second)
	windowStart := l.now().Unix() / windowSec * windowSec

	key := kv.RateLimitKey(endpoint, identifier, windowStart)
	count := l.store.Incr(ctx, key)
	if count == 1 {
		l.store.Expire(ctx, key, window)
	}

	// count == 0 : store indisponible, fail-open avec quota complet
	if count == 0 {
		return model.RateLimitResult{
			Success:   true,
			Limit:     limit,
			Remaining: limit,
			Reset:     windowStart + windowSec,
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return model.RateLimitResult{
		Success:   int(count) <= limit,
		Limit:     limit,
		Remaining: remaining,
		Reset:     windowStart + windowSec,
	}
}

// CheckPreset applique une politique prédéfinie.
func (l *Limiter) CheckPreset(ctx context.Context, preset Preset, identifier string) model.RateLimitResult {
	return l.Check(ctx, preset.Endpoint, identifier, preset.Limit, preset.Window)
}

// ClientIP résout l'IP cliente au mieux depuis les headers de proxy, dans
// l'ordre de priorité, puis RemoteAddr, sinon "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// premier hop de la chaîne
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
