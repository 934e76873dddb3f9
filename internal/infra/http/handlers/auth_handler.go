package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type AuthHandler struct {
	Auth   *usecase.AuthUseCase
	Logger *zap.Logger
}

func NewAuthHandler(auth *usecase.AuthUseCase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code,omitempty"`
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.Auth.LoginAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Auth.RequestOTP(r.Context(), req.Phone); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.Auth.VerifyOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
