package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/infra/http/middleware"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Error: message})
}

// writeError maps use case errors to HTTP statuses. Technical details are
// logged, never returned.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		de *usecase.DomainError
		te *usecase.TechnicalError
	)
	switch {
	case errors.As(err, &de):
		resp := ErrorResponse{Code: de.Code, Error: de.Message}
		var ve entity.ValidationError
		if errors.As(err, &ve) {
			resp.Field = ve.Field
		}
		writeJSON(w, domainStatus(de.Code), resp)
	case errors.As(err, &te):
		status := http.StatusInternalServerError
		if te.Code == usecase.CodeIntegration {
			status = http.StatusBadGateway
			middleware.RecordIntegrationError("evolution")
		}
		logger.Error("❌ erro técnico", zap.String("code", te.Code), zap.Error(err))
		writeErrorResponse(w, status, te.Code, te.Message)
	default:
		logger.Error("❌ erro inesperado", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "erro interno")
	}
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeValidation:
		return http.StatusUnprocessableEntity
	case usecase.CodeInvalidStatus:
		return http.StatusBadRequest
	case usecase.CodeNotFound:
		return http.StatusNotFound
	case usecase.CodeTerminalStatus, usecase.CodeConflict, usecase.CodeNoEligibleUser:
		return http.StatusConflict
	case usecase.CodeForbidden:
		return http.StatusForbidden
	case usecase.CodeInvalidCredentials:
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

// maxBodyBytes caps every JSON request body the API reads.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "corpo da requisição muito grande")
			return false
		}
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return false
	}
	return true
}

// session returns the caller injected by middleware.Authenticate.
func session(w http.ResponseWriter, r *http.Request) (entity.Session, bool) {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "sessão ausente")
	}
	return s, ok
}
