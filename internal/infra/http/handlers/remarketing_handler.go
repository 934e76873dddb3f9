package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type RemarketingHandler struct {
	Remarketing *usecase.RemarketingUseCase
	Logger      *zap.Logger
}

func NewRemarketingHandler(remarketing *usecase.RemarketingUseCase, logger *zap.Logger) *RemarketingHandler {
	return &RemarketingHandler{Remarketing: remarketing, Logger: logger}
}

func (h *RemarketingHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	rules, err := h.Remarketing.List(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *RemarketingHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req usecase.RemarketingRuleInput
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, err := h.Remarketing.Create(r.Context(), s, req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (h *RemarketingHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req usecase.RemarketingRuleInput
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, err := h.Remarketing.Update(r.Context(), s, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *RemarketingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	if err := h.Remarketing.Delete(r.Context(), s, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
