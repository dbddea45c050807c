package handlers

import (
	"net/http"

	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type DashboardHandler struct {
	DashboardUC *usecase.DashboardUseCase
}

func NewDashboardHandler(uc *usecase.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{DashboardUC: uc}
}

// Metrics (GET /dashboard/metrics?tipo=&periodo=)
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.DashboardUC.Execute(r.Context(), identity(r).ClinicID, usecase.DashboardInput{
		Type:   q.Get("tipo"),
		Period: q.Get("periodo"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
