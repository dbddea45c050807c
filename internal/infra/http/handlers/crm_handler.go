package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/http/middleware"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type CRMHandler struct {
	ListDealsUC    *usecase.ListDealsUseCase
	UpdateStatusUC *usecase.UpdateDealStatusUseCase
	ClinicID       string
	FunnelConfig   *entity.Funnel
}

func NewCRMHandler(list *usecase.ListDealsUseCase, update *usecase.UpdateDealStatusUseCase, defaultClinicID string) *CRMHandler {
	return &CRMHandler{ListDealsUC: list, UpdateStatusUC: update, ClinicID: defaultClinicID}
}

// ListDeals (GET /crm/deals)
func (h *CRMHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := h.ListDealsUC.Execute(r.Context(), middleware.ClinicID(r.Context(), h.ClinicID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

// UpdateStatus (PUT /crm/deals/{id}/status)
func (h *CRMHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "id")
	if dealID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "ID is required"})
		return
	}

	var input usecase.UpdateDealStatusInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.UpdateStatusUC.Execute(r.Context(), dealID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordDealStatusUpdate(string(out.NewStatus))
	writeJSON(w, http.StatusOK, out)
}

// Funnel (GET /crm/funnel)
func (h *CRMHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	funnel := h.FunnelConfig
	if funnel == nil {
		funnel = entity.DefaultFunnel()
	}
	writeJSON(w, http.StatusOK, map[string]any{"stages": funnel.Stages()})
}
