package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type WebhookHandler struct {
	ReceiveUC *usecase.ReceiveWebhookUseCase
	log       *zap.SugaredLogger
}

func NewWebhookHandler(uc *usecase.ReceiveWebhookUseCase, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{ReceiveUC: uc, log: log.Sugar()}
}

// Handle (POST /webhooks/whatsapp). Sempre 200 para a UazAPI não reenviar em loop.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var event uazapi.WebhookEvent
	if !decodeJSON(w, r, &event) {
		return
	}

	out, err := h.ReceiveUC.Execute(r.Context(), event)
	if err != nil {
		h.log.Errorw("❌ Erro ao processar webhook", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}
	writeJSON(w, http.StatusOK, out)
}
