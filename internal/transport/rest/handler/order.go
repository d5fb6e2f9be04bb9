package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"reportai/internal/service"
)

// OrderHandler proxies upstream order lookups for the report wizard
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Get handles GET /v1/orders/{orderId}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	snapshot, err := h.orderSvc.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
