package mail

import "gopkg.in/gomail.v2"

type UnassignedLeadData struct {
	Name      string
	Phone     string
	Email     string
	QuizID    string
	CreatedAt string
	LeadURL   string
}

type WhatsAppOfflineData struct {
	Name     string
	Phone    string
	Instance string
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From    string
	To      string
	BaseURL string
	Dialer  Dialer
}
