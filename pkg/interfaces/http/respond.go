// Package http exposes the storefront over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rigforge/rigforge/pkg/domain/entities"
	"go.uber.org/zap"
)

// writeJSON renders v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the error envelope: {error} at minimum, plus
// {reason} for compatibility rejections. Internal errors are logged and
// masked with a generic message.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if compatErr, ok := entities.AsCompatibilityError(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Incompatible component",
			"reason": compatErr.Reason,
		})
		return
	}
	if stockErr, ok := entities.AsStockError(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": stockErr.Error()})
		return
	}
	if errors.Is(err, entities.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
		return
	}
	if errors.Is(err, entities.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error"})
}

// decodeBody parses a JSON request body into v. An empty body leaves v
// at its zero value so optional-body endpoints stay simple.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", entities.ErrValidation)
	}
	return nil
}
