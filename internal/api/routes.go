package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/handler"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logger"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/middleware"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/ratelimit"
)

// SetupRouter construit le routeur avec les politiques de rate limiting par
// groupe de routes : lecture seule pour les classements, politique jeu pour
// la soumission de résultats, politique API pour le reste.
func SetupRouter(h *handler.Handler, limiter *ratelimit.Limiter, rateLimitEnabled bool) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware)

	limit := func(preset ratelimit.Preset) mux.MiddlewareFunc {
		if !rateLimitEnabled {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimitMiddleware(limiter, preset)
	}

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	// Leaderboard (lecture seule)
	readRoutes := r.PathPrefix("/").Subrouter()
	readRoutes.Use(limit(ratelimit.ReadPreset))
	readRoutes.HandleFunc("/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	readRoutes.HandleFunc("/leaderboard/top", h.GetTopPerformers).Methods(http.MethodGet)
	readRoutes.HandleFunc("/leaderboard/users/{userId}", h.GetUserRank).Methods(http.MethodGet)
	readRoutes.HandleFunc("/leaderboard/users/{userId}/nearby", h.GetNearbyUsers).Methods(http.MethodGet)
	readRoutes.HandleFunc("/games/{game}/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	readRoutes.HandleFunc("/games/{game}/leaderboard/top", h.GetTopPerformers).Methods(http.MethodGet)

	// Jeux (écriture)
	gameRoutes := r.PathPrefix("/games").Subrouter()
	gameRoutes.Use(limit(ratelimit.GamePreset))
	gameRoutes.HandleFunc("/{game}/results", h.SubmitGameResult).Methods(http.MethodPost)

	// Commandes
	apiRoutes := r.PathPrefix("/").Subrouter()
	apiRoutes.Use(limit(ratelimit.APIPreset))
	apiRoutes.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)

	// Administration / observabilité
	adminRoutes := r.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(limit(ratelimit.APIPreset))
	adminRoutes.HandleFunc("/logs", h.GetRecentLogs).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/logs/stats", h.GetLogStats).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/changes/{collection}", h.GetRecentChanges).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/leaderboard/{period}/sync", h.SyncLeaderboard).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warning("404 Not Found: %s %s", r.Method, r.URL.Path)
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
