package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type DashboardHandler struct {
	Dashboard *usecase.DashboardUseCase
	Logger    *zap.Logger
}

func NewDashboardHandler(dashboard *usecase.DashboardUseCase, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard, Logger: logger}
}

func (h *DashboardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	stats, err := h.Dashboard.Stats(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
