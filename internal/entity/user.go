package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type WhatsAppStatus string

const (
	WhatsAppOnline     WhatsAppStatus = "online"
	WhatsAppOffline    WhatsAppStatus = "offline"
	WhatsAppConnecting WhatsAppStatus = "connecting"
)

func ParseWhatsAppStatus(s string) (WhatsAppStatus, error) {
	switch st := WhatsAppStatus(strings.TrimSpace(s)); st {
	case WhatsAppOnline, WhatsAppOffline, WhatsAppConnecting:
		return st, nil
	}
	return "", ValidationError{"whatsapp_status", "must be online, offline or connecting"}
}

const DefaultDailyLeadLimit = 20

type User struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Phone              string         `json:"phone"`
	Email              string         `json:"email,omitempty"`
	PasswordHash       string         `json:"-"`
	Role               Role           `json:"role"`
	WhatsAppStatus     WhatsAppStatus `json:"whatsapp_status"`
	DailyLeadLimit     int            `json:"daily_lead_limit"`
	LeadsReceivedToday int            `json:"leads_received_today"`
	Priority           int            `json:"priority"`
	CreatedAt          time.Time      `json:"created_at"`
}

// NewSeller creates a sales user. A non-positive limit falls back to the default.
func NewSeller(name, phone string, dailyLeadLimit, priority int) (*User, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, ValidationError{"name", "is required"}
	}
	if phone == "" {
		return nil, ValidationError{"phone", "is required"}
	}
	if dailyLeadLimit <= 0 {
		dailyLeadLimit = DefaultDailyLeadLimit
	}
	return &User{
		ID:             uuid.New().String(),
		Name:           name,
		Phone:          phone,
		Role:           RoleUser,
		WhatsAppStatus: WhatsAppOffline,
		DailyLeadLimit: dailyLeadLimit,
		Priority:       priority,
		CreatedAt:      time.Now(),
	}, nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) RemainingCapacity() int {
	if r := u.DailyLeadLimit - u.LeadsReceivedToday; r > 0 {
		return r
	}
	return 0
}

func (u *User) UnderDailyLimit() bool {
	return u.LeadsReceivedToday < u.DailyLeadLimit
}

// WhatsAppInstance is the Evolution API instance bound to this user.
func (u *User) WhatsAppInstance() string {
	return fmt.Sprintf("crm-%s", u.ID)
}
