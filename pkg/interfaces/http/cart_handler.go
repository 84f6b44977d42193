package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rigforge/rigforge/pkg/application/services/cart"
	"go.uber.org/zap"
)

type cartHandler struct {
	cart   *cart.Service
	logger *zap.Logger
}

func (h *cartHandler) register(r *mux.Router) {
	r.HandleFunc("/cart", h.list).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", h.add).Methods(http.MethodPost)
	r.HandleFunc("/cart/add-build/{id}", h.addBuild).Methods(http.MethodPost)
	r.HandleFunc("/cart/addTempBuild", h.addTempBuild).Methods(http.MethodPost)
	r.HandleFunc("/cart/deleteRow/{id}", h.deleteRow).Methods(http.MethodDelete)
	r.HandleFunc("/cart/{id}", h.decrement).Methods(http.MethodDelete)
}

func (h *cartHandler) list(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	view, err := h.cart.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cartViewJSON(view))
}

func (h *cartHandler) add(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	var body struct {
		ComponentID uuid.UUID `json:"componentId"`
		Quantity    int       `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.cart.AddComponent(r.Context(), identity.UserID, body.ComponentID, body.Quantity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": cartItemView(item)})
}

func (h *cartHandler) addBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.cart.AddBuild(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": cartItemView(item)})
}

func (h *cartHandler) addTempBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	items, err := h.cart.AddWorkspace(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, cartItemView(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": views})
}

func (h *cartHandler) decrement(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.cart.Decrement(r.Context(), identity.UserID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *cartHandler) deleteRow(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.cart.DeleteRow(r.Context(), identity.UserID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
