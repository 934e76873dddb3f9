package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// NewEmailSender builds the operator alert sender. to is the operator inbox;
// baseURL is used to link straight to the lead in the CRM.
func NewEmailSender(host string, port int, user, password, from, to, baseURL string) *EmailSender {
	return &EmailSender{
		From:    from,
		To:      to,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Dialer:  gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendUnassignedLeadAlert(lead *entity.Lead) error {
	data := UnassignedLeadData{
		Name:      lead.Name,
		Phone:     lead.Phone,
		Email:     lead.Email,
		QuizID:    lead.QuizID,
		CreatedAt: lead.CreatedAt.Format("02/01/2006 15:04"),
		LeadURL:   fmt.Sprintf("%s/leads/%s", s.BaseURL, lead.ID),
	}
	return s.send("unassigned_lead.html", fmt.Sprintf("⚠️ Lead sem vendedor: %s", lead.Name), data)
}

func (s *EmailSender) SendWhatsAppOfflineAlert(user *entity.User) error {
	data := WhatsAppOfflineData{
		Name:     user.Name,
		Phone:    user.Phone,
		Instance: user.WhatsAppInstance(),
	}
	return s.send("whatsapp_offline.html", fmt.Sprintf("📵 WhatsApp desconectado: %s", user.Name), data)
}

func (s *EmailSender) send(tmpl, subject string, data any) error {
	if s.To == "" {
		return fmt.Errorf("destinatário de alertas não configurado")
	}

	body, err := render(tmpl, data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func render(tmpl string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}
