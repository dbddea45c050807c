package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/bemquerer-hub/internal/infra/http/middleware"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type ChatHandler struct {
	ChatUC   *usecase.ChatUseCase
	ClinicID string
}

func NewChatHandler(uc *usecase.ChatUseCase, defaultClinicID string) *ChatHandler {
	return &ChatHandler{ChatUC: uc, ClinicID: defaultClinicID}
}

// List (GET /chat/list)
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.ChatUC.List(r.Context(), middleware.ClinicID(r.Context(), h.ClinicID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// Messages (GET /chat/{chatId}/messages)
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.ChatUC.Messages(r.Context(), chi.URLParam(r, "chatId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// Send (POST /chat/message)
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendMessageInput
	if !decodeJSON(w, r, &input) {
		return
	}
	out, err := h.ChatUC.Send(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
