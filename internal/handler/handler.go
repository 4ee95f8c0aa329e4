package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/cdc"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/docstore"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/leaderboard"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logstream"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/utils"
)

// Handler regroupe les dépendances injectées des handlers HTTP.
type Handler struct {
	DB       *pgxpool.Pool
	Store    kv.Store
	Docs     docstore.Store
	Boards   *leaderboard.Engine
	Logs     *logstream.Aggregator
	Pipeline *cdc.Pipeline
}

func New(db *pgxpool.Pool, store kv.Store, docs docstore.Store, boards *leaderboard.Engine, logs *logstream.Aggregator, pipeline *cdc.Pipeline) *Handler {
	return &Handler{
		DB:       db,
		Store:    store,
		Docs:     docs,
		Boards:   boards,
		Logs:     logs,
		Pipeline: pipeline,
	}
}

// HealthCheck vérifie la base et remonte l'état du key-value store.
// Un store indisponible n'est pas une erreur : le data plane est fail-open.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Ping(r.Context()); err != nil {
		utils.Error(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	utils.Success(w, map[string]interface{}{
		"status":    "ok",
		"dataPlane": h.Store.Available(r.Context()),
	})
}
