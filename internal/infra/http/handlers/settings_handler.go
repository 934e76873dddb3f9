package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type SettingsHandler struct {
	Settings *usecase.SettingsUseCase
	Logger   *zap.Logger
}

func NewSettingsHandler(settings *usecase.SettingsUseCase, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{Settings: settings, Logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	settings, err := h.Settings.Get(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update decodes the body over the current settings, so omitted fields keep their value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	current, err := h.Settings.Get(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if !decodeJSON(w, r, &current) {
		return
	}
	saved, err := h.Settings.Update(r.Context(), s, current)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
