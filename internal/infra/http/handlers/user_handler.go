package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type UserHandler struct {
	Users  *usecase.UserUseCase
	Logger *zap.Logger
}

func NewUserHandler(users *usecase.UserUseCase, logger *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

type WhatsAppStatusRequest struct {
	Status string `json:"status"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	users, err := h.Users.List(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req usecase.UserInput
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.Users.Create(r.Context(), s, req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	user, err := h.Users.Get(r.Context(), s, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req usecase.UserInput
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.Users.Update(r.Context(), s, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	if err := h.Users.Delete(r.Context(), s, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) SetWhatsAppStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req WhatsAppStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.Users.SetWhatsAppStatus(r.Context(), s, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
