package entity

import "time"

type DistributionMethod string

const (
	DistributionRoundRobin   DistributionMethod = "round-robin"
	DistributionPriority     DistributionMethod = "priority"
	DistributionAvailability DistributionMethod = "availability"
)

func (m DistributionMethod) Valid() bool {
	switch m {
	case DistributionRoundRobin, DistributionPriority, DistributionAvailability:
		return true
	}
	return false
}

type Settings struct {
	DistributionMethod    DistributionMethod `json:"distribution_method"`
	VerifyWhatsAppActive  bool               `json:"verify_whatsapp_active"`
	RespectDailyLimit     bool               `json:"respect_daily_limit"`
	FallbackEnabled       bool               `json:"fallback_enabled"`
	AutoWelcomeMessage    bool               `json:"auto_welcome_message"`
	RemarketingEnabled    bool               `json:"remarketing_enabled"`
	RemarketingDelayDays  int                `json:"remarketing_delay_days"`
	NotifyNewLead         bool               `json:"notify_new_lead"`
	NotifyWhatsAppOffline bool               `json:"notify_whatsapp_offline"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

func DefaultSettings() Settings {
	return Settings{
		DistributionMethod:    DistributionRoundRobin,
		VerifyWhatsAppActive:  true,
		RespectDailyLimit:     true,
		FallbackEnabled:       true,
		AutoWelcomeMessage:    true,
		RemarketingEnabled:    true,
		RemarketingDelayDays:  1,
		NotifyNewLead:         true,
		NotifyWhatsAppOffline: true,
	}
}

func (s Settings) Validate() error {
	if !s.DistributionMethod.Valid() {
		return ValidationError{"distribution_method", "must be round-robin, priority or availability"}
	}
	if s.RemarketingDelayDays < 1 || s.RemarketingDelayDays > 30 {
		return ValidationError{"remarketing_delay_days", "must be between 1 and 30"}
	}
	return nil
}
