package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/http/middleware"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

// maxUploadBytes limita o arquivo enviado para a base de conhecimento.
const maxUploadBytes = 10 << 20

type KnowledgeHandler struct {
	KnowledgeUC *usecase.KnowledgeUseCase
}

func NewKnowledgeHandler(uc *usecase.KnowledgeUseCase) *KnowledgeHandler {
	return &KnowledgeHandler{KnowledgeUC: uc}
}

// Upload (POST /knowledge/documents/upload) multipart com file, titulo e tipo.
func (h *KnowledgeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Formulário inválido: " + err.Error(), Code: usecase.CodeValidation})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Arquivo é obrigatório", Code: usecase.CodeValidation})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Erro ao ler arquivo", Code: usecase.CodeValidation})
		return
	}

	out, err := h.KnowledgeUC.Upload(r.Context(), usecase.KnowledgeUploadInput{
		ClinicID: identity(r).ClinicID,
		Filename: header.Filename,
		Title:    r.FormValue("titulo"),
		Type:     entity.DocumentType(r.FormValue("tipo")),
		Data:     data,
	})
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("embeddings")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "documento": out})
}

// CreateText (POST /knowledge/documents/text)
func (h *KnowledgeHandler) CreateText(w http.ResponseWriter, r *http.Request) {
	var input usecase.KnowledgeTextInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.ClinicID = identity(r).ClinicID

	out, err := h.KnowledgeUC.AddText(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("embeddings")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "documento": out})
}

// List (GET /knowledge/documents)
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.KnowledgeUC.List(r.Context(), identity(r).ClinicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Delete (DELETE /knowledge/documents/{id})
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.KnowledgeUC.Delete(r.Context(), identity(r).ClinicID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Documento desativado"})
}

// Search (POST /knowledge/search)
func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	var input usecase.KnowledgeSearchInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.ClinicID = identity(r).ClinicID

	results, err := h.KnowledgeUC.Search(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
