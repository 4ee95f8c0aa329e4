package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/utils"
)

// CreateOrder enregistre une commande puis capture l'événement (décrément du
// stock, analytics, stat orderCount — tous best-effort, isolés).
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var order model.OrderDoc
	if err := utils.DecodeJSON(r, &order); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid order payload")
		return
	}
	if order.UserID == "" || len(order.Items) == 0 {
		utils.Error(w, http.StatusBadRequest, "userId and items are required")
		return
	}
	order.ID = uuid.NewString()
	order.Status = "pending"

	ctx := r.Context()
	if err := h.Docs.Create(ctx, model.CollectionOrders, order.ID, order); err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not save order")
		return
	}

	after, _ := json.Marshal(order)
	if _, err := h.Pipeline.CaptureChange(ctx, model.ChangeEvent{
		Collection: model.CollectionOrders,
		DocumentID: order.ID,
		Operation:  model.OpCreate,
		After:      after,
		UserID:     order.UserID,
	}); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.Success(w, map[string]string{"id": order.ID, "status": order.Status})
}
