package handlers

import (
	"errors"
	"net/http"

	"github.com/xavierca1/bemquerer-hub/internal/infra/http/middleware"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type IntegrationHandler struct {
	WhatsAppUC  *usecase.WhatsAppUseCase
	ClinicorpUC *usecase.ConfigureClinicorpUseCase
	ScheduleUC  *usecase.ClinicorpScheduleUseCase
	ClinicID    string
}

func NewIntegrationHandler(
	wa *usecase.WhatsAppUseCase,
	clinicorp *usecase.ConfigureClinicorpUseCase,
	schedule *usecase.ClinicorpScheduleUseCase,
	defaultClinicID string,
) *IntegrationHandler {
	return &IntegrationHandler{WhatsAppUC: wa, ClinicorpUC: clinicorp, ScheduleUC: schedule, ClinicID: defaultClinicID}
}

// ConfigureClinicorp (POST /integrations/clinicorp/configure)
func (h *IntegrationHandler) ConfigureClinicorp(w http.ResponseWriter, r *http.Request) {
	var input usecase.ConfigureClinicorpInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.ClinicorpUC.Execute(r.Context(), middleware.ClinicID(r.Context(), h.ClinicID), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("clinicorp")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Availability (POST /integrations/clinicorp/availability)
func (h *IntegrationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	var input usecase.AvailabilityInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.ScheduleUC.Availability(r.Context(), middleware.ClinicID(r.Context(), h.ClinicID), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Schedule (POST /integrations/clinicorp/appointments)
func (h *IntegrationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var input usecase.ScheduleAppointmentInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.ScheduleUC.Schedule(r.Context(), middleware.ClinicID(r.Context(), h.ClinicID), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("clinicorp")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// ConnectWhatsApp (POST /integrations/whatsapp/connect)
func (h *IntegrationHandler) ConnectWhatsApp(w http.ResponseWriter, r *http.Request) {
	out, err := h.WhatsAppUC.Connect(r.Context())
	if err != nil {
		middleware.RecordWhatsAppConnect("error")
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("uazapi")
		}
		writeError(w, err)
		return
	}
	if out.Status != nil && out.Status.Connected {
		middleware.RecordWhatsAppConnect("connected")
	} else {
		middleware.RecordWhatsAppConnect("qrcode")
	}
	writeJSON(w, http.StatusOK, out)
}

// WhatsAppStatus (GET /integrations/whatsapp/status). Em 401 o corpo ainda leva o campo error.
func (h *IntegrationHandler) WhatsAppStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.WhatsAppUC.Status(r.Context())
	if err != nil {
		var te *usecase.TechnicalError
		if out != nil && errors.As(err, &te) {
			writeJSON(w, statusFor(te.Code), out)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DisconnectWhatsApp (POST /integrations/whatsapp/disconnect)
func (h *IntegrationHandler) DisconnectWhatsApp(w http.ResponseWriter, r *http.Request) {
	out, err := h.WhatsAppUC.Disconnect(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
