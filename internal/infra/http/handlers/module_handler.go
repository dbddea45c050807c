package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type ModuleHandler struct {
	ModuleUC *usecase.ModuleUseCase
}

func NewModuleHandler(uc *usecase.ModuleUseCase) *ModuleHandler {
	return &ModuleHandler{ModuleUC: uc}
}

// List (GET /modules)
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	mods, err := h.ModuleUC.List(r.Context(), identity(r).ClinicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mods)
}

// Toggle (PUT /modules/{modulo})
func (h *ModuleHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Active bool `json:"ativo"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ok, err := h.ModuleUC.Toggle(r.Context(), identity(r).ClinicID, chi.URLParam(r, "modulo"), input.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// UpdateConfig (PUT /modules/{modulo}/config)
func (h *ModuleHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Config map[string]any `json:"configuracao"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ok, err := h.ModuleUC.UpdateConfig(r.Context(), identity(r).ClinicID, chi.URLParam(r, "modulo"), input.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// Activate (POST /modules/activate)
func (h *ModuleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Modules []string `json:"modulos"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	ok, err := h.ModuleUC.ActivateModules(r.Context(), identity(r).ClinicID, input.Modules)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// Initialize (POST /modules/initialize)
func (h *ModuleHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	if err := h.ModuleUC.Initialize(r.Context(), identity(r).ClinicID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
