package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/utils"
)

// GetRecentLogs récupère les derniers logs d'un niveau (ou "all")
func (h *Handler) GetRecentLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	level := query.Get("level")
	if level == "" {
		level = "all"
	}

	limit := 100
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	utils.Success(w, h.Logs.GetRecent(r.Context(), level, limit))
}

// GetLogStats récupère les compteurs de logs du jour et le total
func (h *Handler) GetLogStats(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, h.Logs.GetStats(r.Context()))
}

// GetRecentChanges récupère les derniers événements capturés d'une collection
func (h *Handler) GetRecentChanges(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	utils.Success(w, h.Pipeline.GetRecentChanges(r.Context(), collection, limit))
}
