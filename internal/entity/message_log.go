package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
	MessageFailed    MessageStatus = "failed"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageSent, MessageDelivered, MessageRead, MessageFailed:
		return true
	}
	return false
}

// rank orders delivery progress so receipts never move a message backwards.
func (s MessageStatus) rank() int {
	switch s {
	case MessageSent:
		return 1
	case MessageDelivered:
		return 2
	case MessageRead:
		return 3
	}
	return 0
}

type MessageLog struct {
	ID         string        `json:"id"`
	LeadID     string        `json:"lead_id"`
	TemplateID string        `json:"template_id,omitempty"`
	ExternalID string        `json:"external_id,omitempty"`
	Content    string        `json:"content"`
	Status     MessageStatus `json:"status"`
	SentAt     time.Time     `json:"sent_at"`
}

func NewMessageLog(leadID, templateID, content string) *MessageLog {
	return &MessageLog{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		TemplateID: templateID,
		Content:    content,
		Status:     MessageSent,
		SentAt:     time.Now(),
	}
}

// Advance applies a delivery receipt. Failed is final and regressions are ignored.
func (m *MessageLog) Advance(to MessageStatus) bool {
	if m.Status == MessageFailed || !to.Valid() {
		return false
	}
	if to == MessageFailed || to.rank() > m.Status.rank() {
		m.Status = to
		return true
	}
	return false
}
