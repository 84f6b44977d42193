package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rigforge/rigforge/pkg/application/services/order"
	"go.uber.org/zap"
)

type orderHandler struct {
	orders *order.Service
	logger *zap.Logger
}

func (h *orderHandler) register(r *mux.Router) {
	r.HandleFunc("/checkout", h.checkoutCart).Methods(http.MethodPost)
	r.HandleFunc("/checkout/build/{id}", h.checkoutBuild).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.list).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.get).Methods(http.MethodGet)
}

func (h *orderHandler) registerAdmin(r *mux.Router) {
	r.HandleFunc("/orders/{id}/status", h.updateStatus).Methods(http.MethodPut)
}

func (h *orderHandler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	var body struct {
		ItemIDs       []uuid.UUID `json:"item_ids"`
		PaymentMethod string      `json:"payment_method"`
		Notes         string      `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	placed, err := h.orders.CheckoutCart(r.Context(), identity.UserID, body.ItemIDs, body.PaymentMethod, body.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": orderView(placed)})
}

func (h *orderHandler) checkoutBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var body struct {
		PaymentMethod string `json:"payment_method"`
		Notes         string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	placed, err := h.orders.CheckoutSavedBuild(r.Context(), identity.UserID, id, body.PaymentMethod, body.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": orderView(placed)})
}

func (h *orderHandler) list(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	orders, err := h.orders.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	views := make([]map[string]any, 0, len(orders))
	for _, placed := range orders {
		views = append(views, orderView(placed))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": views})
}

func (h *orderHandler) get(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	placed, err := h.orders.Get(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := h.orders.ListItems(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	itemViews := make([]map[string]any, 0, len(items))
	for _, item := range items {
		itemViews = append(itemViews, orderItemView(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": orderView(placed), "items": itemViews})
}

func (h *orderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": orderView(updated)})
}
