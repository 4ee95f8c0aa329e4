package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/leaderboard"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/utils"
)

// parsePeriod mappe le paramètre de requête sur une période du data plane.
// Toute valeur inconnue (dont l'ancien "monthly") retombe sur all-time.
func parsePeriod(value string) leaderboard.Period {
	switch value {
	case "daily":
		return leaderboard.PeriodDaily
	case "weekly":
		return leaderboard.PeriodWeekly
	default:
		return leaderboard.PeriodAllTime
	}
}

func parseScope(r *http.Request) string {
	if game := mux.Vars(r)["game"]; game != "" {
		return leaderboard.GameScope(game)
	}
	return leaderboard.ScopeGlobal
}

// GetLeaderboard récupère le classement (global ou d'un jeu)
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	period := parsePeriod(query.Get("period"))

	limit := 50
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	entries := h.Boards.GetTop(r.Context(), parseScope(r), period, limit)
	utils.Success(w, entries)
}

// GetTopPerformers récupère les 3 meilleurs utilisateurs
func (h *Handler) GetTopPerformers(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r.URL.Query().Get("period"))
	entries := h.Boards.GetTop(r.Context(), parseScope(r), period, 3)
	utils.Success(w, entries)
}

// GetUserRank récupère le rang d'un utilisateur dans le classement
func (h *Handler) GetUserRank(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	period := parsePeriod(r.URL.Query().Get("period"))

	position := h.Boards.GetUserPosition(r.Context(), parseScope(r), period, userID)
	if position == nil {
		// non classé : distinct d'un rang 0
		utils.Error(w, http.StatusNotFound, "user is not ranked for this period")
		return
	}
	utils.Success(w, position)
}

// GetNearbyUsers récupère les utilisateurs proches dans le classement
func (h *Handler) GetNearbyUsers(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	query := r.URL.Query()
	period := parsePeriod(query.Get("period"))

	rangeVal := 5
	if rangeStr := query.Get("range"); rangeStr != "" {
		if v, err := strconv.Atoi(rangeStr); err == nil {
			rangeVal = v
		}
	}

	entries := h.Boards.GetAroundUser(r.Context(), parseScope(r), period, userID, rangeVal)
	utils.Success(w, entries)
}

// SyncLeaderboard reconstruit un classement depuis le store de référence.
// Opération d'administration : un resync concurrent d'incréments live peut
// en perdre, ne l'utiliser qu'en reprise.
func (h *Handler) SyncLeaderboard(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(mux.Vars(r)["period"])

	entries, err := h.Docs.LeaderboardSource(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not read leaderboard source")
		return
	}

	h.Boards.SyncFromSource(r.Context(), leaderboard.ScopeGlobal, period, entries)
	utils.Success(w, map[string]interface{}{
		"synced": len(entries),
		"size":   h.Boards.Size(r.Context(), leaderboard.ScopeGlobal, period),
	})
}
