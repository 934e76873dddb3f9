package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

const (
	eventConnectionUpdate = "connection.update"
	eventMessagesUpdate   = "messages.update"
)

// WebhookHandler receives Evolution API callbacks.
type WebhookHandler struct {
	WhatsApp  *usecase.WhatsAppUseCase
	Messaging *usecase.MessagingUseCase
	// Secret, when set, must match the apikey header Evolution sends.
	Secret string
	Logger *zap.Logger
}

func NewWebhookHandler(wa *usecase.WhatsAppUseCase, messaging *usecase.MessagingUseCase, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{WhatsApp: wa, Messaging: messaging, Secret: secret, Logger: logger}
}

// Evolution payloads can carry media previews, so the webhook gets more room.
const maxWebhookBodyBytes = 4 << 20

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("apikey")), []byte(h.Secret)) != 1 {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "apikey inválida")
		return
	}

	var event whatsapp.WebhookEvent
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}

	var err error
	switch event.Event {
	case eventConnectionUpdate:
		state, _ := event.Data["state"].(string)
		err = h.WhatsApp.ApplyConnectionUpdate(r.Context(), event.Instance, whatsapp.MapConnectionState(state))
	case eventMessagesUpdate:
		id, raw := messageUpdate(event.Data)
		if status, ok := whatsapp.MapMessageStatus(raw); ok && id != "" {
			err = h.Messaging.ApplyDeliveryReceipt(r.Context(), id, status)
		}
	default:
		h.Logger.Debug("evento do webhook ignorado", zap.String("event", event.Event))
	}

	if err != nil {
		h.Logger.Error("❌ falha ao processar webhook", zap.String("event", event.Event), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// messageUpdate reads the message id and status from both payload shapes
// Evolution emits: {keyId, status} and {key:{id}, update:{status}}.
func messageUpdate(data map[string]any) (string, string) {
	id, _ := data["keyId"].(string)
	status, _ := data["status"].(string)
	if key, ok := data["key"].(map[string]any); ok && id == "" {
		id, _ = key["id"].(string)
	}
	if update, ok := data["update"].(map[string]any); ok && status == "" {
		status, _ = update["status"].(string)
	}
	return id, status
}
