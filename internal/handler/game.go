package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/utils"
)

// SubmitGameResult enregistre un résultat de partie puis capture l'événement.
// L'écriture dans le store de référence est le chemin principal ; la capture
// (classements, analytics, stats) est best-effort et ne peut pas la faire échouer.
func (h *Handler) SubmitGameResult(w http.ResponseWriter, r *http.Request) {
	game := mux.Vars(r)["game"]

	var result model.GameResultDoc
	if err := utils.DecodeJSON(r, &result); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid game result payload")
		return
	}
	if result.UserID == "" {
		utils.Error(w, http.StatusBadRequest, "userId is required")
		return
	}
	result.GameType = game
	result.ID = uuid.NewString()

	ctx := r.Context()
	attempts := utils.CountGameAttempt(ctx, h.Store, game, result.UserID)

	if err := h.Docs.Create(ctx, model.CollectionGameResults, result.ID, result); err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not save game result")
		return
	}

	after, _ := json.Marshal(result)
	if _, err := h.Pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionGameResults,
		DocumentID: result.ID,
		Operation:  model.OpCreate,
		After:      after,
		UserID:     result.UserID,
	}); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.Success(w, map[string]interface{}{
		"id":            result.ID,
		"attemptsToday": attempts,
	})
}
