package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/bemquerer-hub/internal/infra/http/middleware"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type InviteHandler struct {
	InviteUC *usecase.InviteUseCase
}

func NewInviteHandler(uc *usecase.InviteUseCase) *InviteHandler {
	return &InviteHandler{InviteUC: uc}
}

func identity(r *http.Request) middleware.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

// List (GET /invites)
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	invites, err := h.InviteUC.List(r.Context(), identity(r).ClinicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

// CreateEmail (POST /invites/email)
func (h *InviteHandler) CreateEmail(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateEmailInviteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	id := identity(r)
	input.ClinicID, input.CreatedBy = id.ClinicID, id.UserID

	invite, err := h.InviteUC.CreateEmail(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("mail")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "convite": invite})
}

// CreateCode (POST /invites/code)
func (h *InviteHandler) CreateCode(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateCodeInviteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	id := identity(r)
	input.ClinicID, input.CreatedBy = id.ClinicID, id.UserID

	invite, err := h.InviteUC.CreateCode(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "convite": invite})
}

// Validate (POST /invites/validate)
func (h *InviteHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var input usecase.ValidateInviteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	v, err := h.InviteUC.Validate(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Cancel (POST /invites/{id}/cancel)
func (h *InviteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.InviteUC.Cancel(r.Context(), identity(r).ClinicID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkUsed (POST /invites/{id}/use)
func (h *InviteHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	ok, err := h.InviteUC.MarkUsed(r.Context(), chi.URLParam(r, "id"), identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}
