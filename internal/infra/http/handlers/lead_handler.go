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

// LeadHandler exposes the pipeline board and the message log of each lead.
type LeadHandler struct {
	Leads     *usecase.LeadUseCase
	Messaging *usecase.MessagingUseCase
	Logger    *zap.Logger
}

func NewLeadHandler(leads *usecase.LeadUseCase, messaging *usecase.MessagingUseCase, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{Leads: leads, Messaging: messaging, Logger: logger}
}

type StatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type AssignRequest struct {
	UserID string `json:"user_id"`
}

// List accepts ?status=, ?assigned_user_id=, ?unassigned=true or a fuzzy ?q=.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	var (
		leads []*entity.Lead
		err   error
	)
	if query := q.Get("q"); query != "" {
		leads, err = h.Leads.Search(r.Context(), s, query)
	} else {
		unassigned, _ := strconv.ParseBool(q.Get("unassigned"))
		leads, err = h.Leads.List(r.Context(), s, usecase.LeadFilter{
			Status:         entity.KanbanStatus(q.Get("status")),
			AssignedUserID: q.Get("assigned_user_id"),
			Unassigned:     unassigned,
		})
	}
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	lead, err := h.Leads.Get(r.Context(), s, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Transition(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.Leads.Transition(r.Context(), s, chi.URLParam(r, "id"), req.Status, req.Note)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordStatusTransition(string(lead.Status))
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.Leads.Reopen(r.Context(), s, chi.URLParam(r, "id"), req.Status, req.Note)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordStatusTransition(string(lead.Status))
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req NotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.Leads.UpdateNotes(r.Context(), s, chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Assign(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.Leads.AssignManual(r.Context(), s, chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) History(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	history, err := h.Leads.History(r.Context(), s, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *LeadHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	logs, err := h.Messaging.ListMessages(r.Context(), s, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *LeadHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req usecase.SendMessageInput
	if !decodeJSON(w, r, &req) {
		return
	}
	log, err := h.Messaging.SendToLead(r.Context(), s, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}
