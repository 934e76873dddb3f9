package entity

import "time"

const EventLeadCreated = "lead.created"

// LeadEvent is published after a submission is persisted.
type LeadEvent struct {
	Type           string    `json:"type"`
	LeadID         string    `json:"lead_id"`
	QuizID         string    `json:"quiz_id"`
	AssignedUserID string    `json:"assigned_user_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func NewLeadCreatedEvent(l *Lead) LeadEvent {
	return LeadEvent{
		Type:           EventLeadCreated,
		LeadID:         l.ID,
		QuizID:         l.QuizID,
		AssignedUserID: l.AssignedUserID,
		OccurredAt:     time.Now(),
	}
}
