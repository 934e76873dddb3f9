package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RemarketingRule struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	TriggerStatus       KanbanStatus `json:"trigger_status"`
	DaysWithoutActivity int          `json:"days_without_activity"`
	TemplateID          string       `json:"template_id"`
	IsActive            bool         `json:"is_active"`
	CreatedAt           time.Time    `json:"created_at"`
}

func NewRemarketingRule(name string, trigger KanbanStatus, days int, templateID string, active bool) (*RemarketingRule, error) {
	r := &RemarketingRule{
		ID:        uuid.New().String(),
		IsActive:  active,
		CreatedAt: time.Now(),
	}
	if err := r.Update(name, trigger, days, templateID); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RemarketingRule) Update(name string, trigger KanbanStatus, days int, templateID string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{"name", "is required"}
	}
	if !trigger.Valid() {
		return ErrInvalidStatus
	}
	if days < 1 {
		return ValidationError{"days_without_activity", "must be at least 1"}
	}
	if strings.TrimSpace(templateID) == "" {
		return ValidationError{"template_id", "is required"}
	}
	r.Name = name
	r.TriggerStatus = trigger
	r.DaysWithoutActivity = days
	r.TemplateID = templateID
	return nil
}

// StaleBefore is the updated_at cutoff for leads the rule targets at now.
func (r *RemarketingRule) StaleBefore(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.DaysWithoutActivity)
}

// RemarketingDispatch marks a rule as already sent to a lead.
type RemarketingDispatch struct {
	LeadID       string    `json:"lead_id"`
	RuleID       string    `json:"rule_id"`
	DispatchedAt time.Time `json:"dispatched_at"`
}
