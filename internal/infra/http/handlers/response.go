package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "JSON inválido: " + err.Error(), Code: usecase.CodeValidation})
		return false
	}
	return true
}

func statusFor(code string) int {
	switch code {
	case usecase.CodeValidation, usecase.CodeInvalidStatus, usecase.CodeInvalidModule, usecase.CodeNotConfigured, usecase.CodeUnsupportedFile:
		return http.StatusBadRequest
	case usecase.CodeInvalidCredentials, usecase.CodeGatewayUnauthorized:
		return http.StatusUnauthorized
	case usecase.CodeDealNotFound, usecase.CodeChatNotFound, usecase.CodeInviteNotFound, usecase.CodeProfileNotFound,
		usecase.CodeDocumentNotFound, usecase.CodeThreadNotFound:
		return http.StatusNotFound
	case usecase.CodeInviteNotPending, usecase.CodeThreadArchived:
		return http.StatusConflict
	case usecase.CodeGatewayUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError traduz DomainError/TechnicalError em status HTTP.
func writeError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, statusFor(de.Code), errorBody{Error: de.Message, Code: de.Code})
		return
	}
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		writeJSON(w, statusFor(te.Code), errorBody{Error: te.Message, Code: te.Code})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Erro interno"})
}
