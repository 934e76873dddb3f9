package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

// WhatsAppHandler lets a signed-in user check and pair their own instance.
type WhatsAppHandler struct {
	WhatsApp *usecase.WhatsAppUseCase
	Logger   *zap.Logger
}

func NewWhatsAppHandler(whatsapp *usecase.WhatsAppUseCase, logger *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{WhatsApp: whatsapp, Logger: logger}
}

func (h *WhatsAppHandler) Status(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	out, err := h.WhatsApp.Status(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *WhatsAppHandler) Connect(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	out, err := h.WhatsApp.Connect(r.Context(), s)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
