package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/infra/http/middleware"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

// PublicQuizHandler serves the quiz pages visitors fill in.
type PublicQuizHandler struct {
	Quizzes     *usecase.QuizUseCase
	Submissions *usecase.SubmissionUseCase
	Logger      *zap.Logger
}

func NewPublicQuizHandler(quizzes *usecase.QuizUseCase, submissions *usecase.SubmissionUseCase, logger *zap.Logger) *PublicQuizHandler {
	return &PublicQuizHandler{Quizzes: quizzes, Submissions: submissions, Logger: logger}
}

type ValidateStepRequest struct {
	Answers []entity.Answer `json:"answers"`
}

type SubmitResponse struct {
	Success  bool   `json:"success"`
	LeadID   string `json:"lead_id"`
	Assigned bool   `json:"assigned"`
}

func (h *PublicQuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.Quizzes.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *PublicQuizHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "índice de etapa inválido")
		return
	}
	var req ValidateStepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.Submissions.ValidateStep(r.Context(), chi.URLParam(r, "slug"), index, req.Answers)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PublicQuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input usecase.SubmitInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.UTM.IsZero() {
		q := r.URL.Query()
		input.UTM = entity.UTM{
			Source:   q.Get("utm_source"),
			Medium:   q.Get("utm_medium"),
			Campaign: q.Get("utm_campaign"),
		}
	}

	out, err := h.Submissions.Submit(r.Context(), chi.URLParam(r, "slug"), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	middleware.RecordLeadSubmitted(out.Assigned)
	if out.Assigned {
		middleware.RecordLeadAssigned(string(out.Method), out.Fallback)
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{
		Success:  true,
		LeadID:   out.Lead.ID,
		Assigned: out.Assigned,
	})
}
