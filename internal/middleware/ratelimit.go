package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/ratelimit"
)

func nowUnix() int64 {
	return time.Now().Unix()
}

// RateLimitMiddleware applique une politique de limitation à un groupe de
// routes : pose les headers X-RateLimit-* sur chaque réponse et court-circuite
// en 429 avec un message retry-after quand la fenêtre est épuisée.
func RateLimitMiddleware(limiter *ratelimit.Limiter, preset ratelimit.Preset) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := limiter.CheckPreset(r.Context(), preset, ratelimit.ClientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

			if !result.Success {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"success":false,"error":"too many requests, retry after %d seconds"}`, result.Reset-nowUnix())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
