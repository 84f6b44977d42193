package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// adminHandler exposes the minimal catalog mutations: enough to manage
// components and their specs, with the C1 cache invalidated on every
// write.
type adminHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

func (h *adminHandler) register(r *mux.Router) {
	r.HandleFunc("/components", h.create).Methods(http.MethodPost)
	r.HandleFunc("/components/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/components/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/components/{id}/specs", h.upsertSpecs).Methods(http.MethodPut)
}

func (h *adminHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category  string          `json:"category"`
		Name      string          `json:"name"`
		Brand     string          `json:"brand"`
		Price     decimal.Decimal `json:"price"`
		Stock     int             `json:"stock"`
		Vendor    string          `json:"vendor"`
		ImagePath string          `json:"image_path"`
		Specs     json.RawMessage `json:"specs"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	slug, err := entities.ParseSlug(body.Category)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	component, err := entities.NewComponent(slug, body.Name, body.Brand, body.Price, body.Stock)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	component.Vendor = body.Vendor
	component.ImagePath = body.ImagePath

	if err := h.catalog.CreateComponent(r.Context(), component); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(body.Specs) > 0 {
		specs, err := entities.DecodeSpecs(slug, body.Specs)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if err := h.catalog.UpsertSpecs(r.Context(), component.ID, specs); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	detail, err := h.catalog.GetComponentByID(r.Context(), component.ID)
	if err != nil || detail == nil {
		writeError(w, h.logger, fmt.Errorf("failed to reload component: %w", err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "component": componentView(detail)})
}

func (h *adminHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	detail, err := h.catalog.GetComponentByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if detail == nil {
		writeError(w, h.logger, fmt.Errorf("component %s: %w", id, entities.ErrNotFound))
		return
	}

	component := detail.Component
	var body struct {
		Name      *string          `json:"name"`
		Brand     *string          `json:"brand"`
		Price     *decimal.Decimal `json:"price"`
		Stock     *int             `json:"stock"`
		Status    *string          `json:"status"`
		Vendor    *string          `json:"vendor"`
		ImagePath *string          `json:"image_path"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if body.Name != nil {
		component.Name = *body.Name
	}
	if body.Brand != nil {
		component.Brand = *body.Brand
	}
	if body.Price != nil {
		component.Price = body.Price.Round(2)
	}
	if body.Stock != nil {
		component.Stock = *body.Stock
	}
	if body.Status != nil {
		status, err := entities.ParseComponentStatus(*body.Status)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		component.Status = status
	}
	if body.Vendor != nil {
		component.Vendor = *body.Vendor
	}
	if body.ImagePath != nil {
		component.ImagePath = *body.ImagePath
	}

	if err := h.catalog.UpdateComponent(r.Context(), &component); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *adminHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.catalog.DeleteComponent(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *adminHandler) upsertSpecs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	detail, err := h.catalog.GetComponentByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if detail == nil {
		writeError(w, h.logger, fmt.Errorf("component %s: %w", id, entities.ErrNotFound))
		return
	}

	var payload json.RawMessage
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, h.logger, err)
		return
	}
	specs, err := entities.DecodeSpecs(detail.Category, payload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.catalog.UpsertSpecs(r.Context(), id, specs); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
