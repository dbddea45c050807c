package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type ConversationHandler struct {
	ConversationUC *usecase.ConversationUseCase
}

func NewConversationHandler(uc *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{ConversationUC: uc}
}

// Chat (POST /conversations/chat)
func (h *ConversationHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var input usecase.ThreadChatInput
	if !decodeJSON(w, r, &input) {
		return
	}
	id := identity(r)
	input.ClinicID, input.UserID = id.ClinicID, id.UserID

	out, err := h.ConversationUC.Chat(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Threads (GET /conversations/threads?limit=)
func (h *ConversationHandler) Threads(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	threads, err := h.ConversationUC.ListThreads(r.Context(), identity(r).ClinicID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

// Messages (GET /conversations/threads/{id}/messages)
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.ConversationUC.Messages(r.Context(), identity(r).ClinicID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Archive (DELETE /conversations/threads/{id})
func (h *ConversationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if err := h.ConversationUC.Archive(r.Context(), identity(r).ClinicID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Thread arquivada"})
}
