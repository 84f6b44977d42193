package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rigforge/rigforge/pkg/application/services/autobuild"
	"github.com/rigforge/rigforge/pkg/application/services/workspace"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// builderHandler serves the configurator: workspace mutations, saved
// builds and the auto-builder.
type builderHandler struct {
	workspace *workspace.Service
	builder   *autobuild.Builder
	checker   *services.CompatibilityChecker
	logger    *zap.Logger
}

func (h *builderHandler) register(r *mux.Router) {
	r.HandleFunc("/builder/components", h.listComponents).Methods(http.MethodGet)
	r.HandleFunc("/builder/temp", h.getWorkspace).Methods(http.MethodGet)
	r.HandleFunc("/builder/temp/add", h.addComponent).Methods(http.MethodPost)
	r.HandleFunc("/builder/temp/remove", h.removeComponent).Methods(http.MethodPost)
	r.HandleFunc("/builder/temp/reset", h.resetWorkspace).Methods(http.MethodPost)
	r.HandleFunc("/builder/save", h.saveBuild).Methods(http.MethodPost)
	r.HandleFunc("/builder/my", h.listBuilds).Methods(http.MethodGet)
	r.HandleFunc("/builder/my/{id}", h.getBuild).Methods(http.MethodGet)
	r.HandleFunc("/builder/my/{id}", h.deleteBuild).Methods(http.MethodDelete)
	r.HandleFunc("/builder/my/{id}/duplicate", h.duplicateBuild).Methods(http.MethodPost)
	r.HandleFunc("/builder/load/{id}", h.loadBuild).Methods(http.MethodPost)
	r.HandleFunc("/builder/update/{id}", h.updateBuild).Methods(http.MethodPut)
	r.HandleFunc("/builder/autobuild", h.autoBuild).Methods(http.MethodPost)
	r.HandleFunc("/builder/autocomplete", h.autoComplete).Methods(http.MethodPost)
}

func (h *builderHandler) listComponents(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	slug, err := entities.ParseSlug(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	pickable, err := h.workspace.ListPickable(r.Context(), identity.UserID, slug)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	views := make([]map[string]any, 0, len(pickable))
	for _, detail := range pickable {
		views = append(views, componentView(detail))
	}
	response := map[string]any{"components": views}
	if len(views) == 0 {
		response["message"] = fmt.Sprintf("No compatible %s components available", slug)
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *builderHandler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	ws, err := h.workspace.Get(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	expanded, err := h.workspace.Expand(r.Context(), ws.Components, true)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceView(ws, expanded, h.workspace.Summary(expanded)))
}

func (h *builderHandler) addComponent(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	var body struct {
		Category    string    `json:"category"`
		ComponentID uuid.UUID `json:"componentId"`
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

	ws, err := h.workspace.Add(r.Context(), identity.UserID, slug, body.ComponentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.respondWorkspace(w, r, ws)
}

func (h *builderHandler) removeComponent(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	var body struct {
		Category string `json:"category"`
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

	ws, err := h.workspace.Remove(r.Context(), identity.UserID, slug)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.respondWorkspace(w, r, ws)
}

func (h *builderHandler) resetWorkspace(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if err := h.workspace.Reset(r.Context(), identity.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *builderHandler) saveBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	build, err := h.workspace.Save(r.Context(), identity.UserID, body.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "build": savedBuildView(build)})
}

func (h *builderHandler) listBuilds(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	builds, err := h.workspace.ListSaved(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	views := make([]map[string]any, 0, len(builds))
	for _, build := range builds {
		views = append(views, savedBuildView(build))
	}
	writeJSON(w, http.StatusOK, map[string]any{"builds": views})
}

func (h *builderHandler) getBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	build, err := h.workspace.GetSaved(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"build": savedBuildView(build)})
}

func (h *builderHandler) deleteBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.workspace.Delete(r.Context(), identity.UserID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *builderHandler) duplicateBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	build, err := h.workspace.Duplicate(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "build": savedBuildView(build)})
}

func (h *builderHandler) loadBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	ws, err := h.workspace.Load(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.respondWorkspace(w, r, ws)
}

func (h *builderHandler) updateBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	build, err := h.workspace.UpdateSaved(r.Context(), identity.UserID, id, body.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "build": savedBuildView(build)})
}

func (h *builderHandler) autoBuild(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	var body struct {
		Purpose string          `json:"purpose"`
		Budget  decimal.Decimal `json:"budget"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	purpose, err := autobuild.ParsePurpose(body.Purpose)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.builder.Build(r.Context(), autobuild.Request{
		Purpose: purpose,
		Budget:  body.Budget,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.finalizeGenerated(w, r, identity.UserID, result)
}

func (h *builderHandler) autoComplete(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	ws, err := h.workspace.Get(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.builder.AutoComplete(r.Context(), ws.Components)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.finalizeGenerated(w, r, identity.UserID, result)
}

// finalizeGenerated validates a generated build before persisting it:
// an incompatible result is surfaced as an error, never written.
func (h *builderHandler) finalizeGenerated(w http.ResponseWriter, r *http.Request, userID string, result autobuild.Result) {
	components := make(map[entities.Slug]uuid.UUID)
	for slug, id := range result {
		if id != nil {
			components[slug] = *id
		}
	}

	expanded, err := h.workspace.Expand(r.Context(), components, false)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if verdict := h.checker.CheckWholeBuild(expanded); !verdict.OK {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "AutoBuild generated an incompatible build",
			"reason": verdict.Reason,
		})
		return
	}

	ws := entities.NewWorkspace(userID)
	ws.Components = components
	if err := h.workspace.Replace(r.Context(), ws); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.respondWorkspace(w, r, ws)
}

func (h *builderHandler) respondWorkspace(w http.ResponseWriter, r *http.Request, ws *entities.Workspace) {
	expanded, err := h.workspace.Expand(r.Context(), ws.Components, true)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceView(ws, expanded, h.workspace.Summary(expanded)))
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", entities.ErrValidation, raw)
	}
	return id, nil
}
