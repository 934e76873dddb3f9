package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

// QuizHandler is the admin quiz builder.
type QuizHandler struct {
	Quizzes *usecase.QuizUseCase
	Logger  *zap.Logger
}

func NewQuizHandler(quizzes *usecase.QuizUseCase, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{Quizzes: quizzes, Logger: logger}
}

type QuizRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type PublishRequest struct {
	Published bool `json:"published"`
}

type StepRequest struct {
	Title string `json:"title"`
}

type ReorderRequest struct {
	StepIDs []string `json:"step_ids"`
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	quizzes, err := h.Quizzes.List(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req QuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.Quizzes.Create(r.Context(), s, req.Title, req.Description)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	quiz, err := h.Quizzes.Get(r.Context(), s, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req QuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.Quizzes.Update(r.Context(), s, chi.URLParam(r, "id"), req.Title, req.Description)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	if err := h.Quizzes.Delete(r.Context(), s, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) Publish(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req PublishRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.Quizzes.SetPublished(r.Context(), s, chi.URLParam(r, "id"), req.Published)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req StepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	step, err := h.Quizzes.AddStep(r.Context(), s, chi.URLParam(r, "id"), req.Title)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, step)
}

func (h *QuizHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req StepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.Quizzes.UpdateStep(r.Context(), s, chi.URLParam(r, "id"), chi.URLParam(r, "stepID"), req.Title)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) ReorderSteps(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.Quizzes.ReorderSteps(r.Context(), s, chi.URLParam(r, "id"), req.StepIDs)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) DeleteStep(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	quiz, err := h.Quizzes.DeleteStep(r.Context(), s, chi.URLParam(r, "id"), chi.URLParam(r, "stepID"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req usecase.QuestionInput
	if !decodeJSON(w, r, &req) {
		return
	}
	question, err := h.Quizzes.AddQuestion(r.Context(), s, chi.URLParam(r, "id"), chi.URLParam(r, "stepID"), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *QuizHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req usecase.QuestionInput
	if !decodeJSON(w, r, &req) {
		return
	}
	question, err := h.Quizzes.UpdateQuestion(r.Context(), s, chi.URLParam(r, "id"), chi.URLParam(r, "questionID"), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *QuizHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	quiz, err := h.Quizzes.DeleteQuestion(r.Context(), s, chi.URLParam(r, "id"), chi.URLParam(r, "stepID"), chi.URLParam(r, "questionID"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
