package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type SendMessageInput struct {
	TemplateID string `json:"template_id"`
	Content    string `json:"content"`
}

// MessagingUseCase sends WhatsApp messages to leads and keeps the message log.
type MessagingUseCase struct {
	Leads     LeadRepository
	Users     UserRepository
	Templates TemplateRepository
	Settings  SettingsRepository
	Logs      MessageLogRepository
	Gateway   WhatsAppGateway
	Alerts    AlertSender
	// DefaultInstance sends when the lead has no seller, and carries seller notifications.
	DefaultInstance string
	// OnSent observes every delivery attempt (status sent or failed).
	OnSent func(status entity.MessageStatus)
	Logger *zap.Logger
}

func NewMessagingUseCase(
	leads LeadRepository,
	users UserRepository,
	templates TemplateRepository,
	settings SettingsRepository,
	logs MessageLogRepository,
	gateway WhatsAppGateway,
	alerts AlertSender,
	defaultInstance string,
	logger *zap.Logger,
) *MessagingUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagingUseCase{
		Leads:           leads,
		Users:           users,
		Templates:       templates,
		Settings:        settings,
		Logs:            logs,
		Gateway:         gateway,
		Alerts:          alerts,
		DefaultInstance: defaultInstance,
		Logger:          logger,
	}
}

// SendToLead renders a template (or uses free content) and sends it to the lead.
func (uc *MessagingUseCase) SendToLead(ctx context.Context, s entity.Session, leadID string, in SendMessageInput) (*entity.MessageLog, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, domainError(err, "failed to load lead")
	}
	if !s.CanAccessLead(lead) {
		return nil, domainError(entity.ErrForbidden, "")
	}

	var tpl *entity.MessageTemplate
	switch {
	case in.TemplateID != "":
		tpl, err = uc.Templates.FindByID(ctx, in.TemplateID)
		if err != nil {
			return nil, domainError(err, "failed to load template")
		}
	case strings.TrimSpace(in.Content) == "":
		return nil, domainError(entity.ValidationError{Field: "content", Message: "template_id or content is required"}, "")
	}

	log, err := uc.deliver(ctx, lead, tpl, in.Content)
	if err != nil {
		return nil, err
	}
	if log.Status == entity.MessageFailed {
		return log, &TechnicalError{Code: CodeIntegration, Message: "falha ao enviar mensagem pelo WhatsApp"}
	}
	return log, nil
}

func (uc *MessagingUseCase) ListMessages(ctx context.Context, s entity.Session, leadID string) ([]*entity.MessageLog, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, domainError(err, "failed to load lead")
	}
	if !s.CanAccessLead(lead) {
		return nil, domainError(entity.ErrForbidden, "")
	}
	logs, err := uc.Logs.ListByLead(ctx, leadID)
	if err != nil {
		return nil, databaseError("failed to list messages", err)
	}
	return logs, nil
}

// HandleLeadEvent reacts to a new lead: alert the operator when nobody took
// it, otherwise send the welcome message and notify the seller.
func (uc *MessagingUseCase) HandleLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	if event.Type != entity.EventLeadCreated {
		uc.Logger.Debug("evento ignorado", zap.String("type", event.Type))
		return nil
	}
	lead, err := uc.Leads.FindByID(ctx, event.LeadID)
	if errors.Is(err, entity.ErrNotFound) {
		uc.Logger.Warn("lead do evento não existe mais", zap.String("lead_id", event.LeadID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load lead: %w", err)
	}

	if !lead.IsAssigned() {
		if uc.Alerts == nil {
			return nil
		}
		if err := uc.Alerts.SendUnassignedLeadAlert(lead); err != nil {
			return fmt.Errorf("failed to send unassigned alert: %w", err)
		}
		return nil
	}

	settings, err := uc.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if settings.AutoWelcomeMessage {
		tpl, err := uc.Templates.FindDefault(ctx)
		switch {
		case errors.Is(err, entity.ErrNotFound):
			uc.Logger.Info("sem template padrão, boas-vindas não enviadas", zap.String("lead_id", lead.ID))
		case err != nil:
			return fmt.Errorf("failed to load default template: %w", err)
		default:
			if _, err := uc.deliver(ctx, lead, tpl, ""); err != nil {
				return err
			}
		}
	}

	if settings.NotifyNewLead {
		uc.notifySeller(ctx, lead)
	}
	return nil
}

// ApplyDeliveryReceipt advances a logged message from a gateway receipt.
func (uc *MessagingUseCase) ApplyDeliveryReceipt(ctx context.Context, externalID string, status entity.MessageStatus) error {
	log, err := uc.Logs.FindByExternalID(ctx, externalID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return databaseError("failed to load message", err)
	}
	if !log.Advance(status) {
		return nil
	}
	if err := uc.Logs.UpdateStatus(ctx, log.ID, log.Status); err != nil {
		return databaseError("failed to update message status", err)
	}
	return nil
}

// deliver sends one message to the lead and records it. A gateway failure is
// logged with status failed rather than returned.
func (uc *MessagingUseCase) deliver(ctx context.Context, lead *entity.Lead, tpl *entity.MessageTemplate, content string) (*entity.MessageLog, error) {
	instance := uc.DefaultInstance
	sellerName := ""
	if lead.IsAssigned() {
		seller, err := uc.Users.FindByID(ctx, lead.AssignedUserID)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return nil, databaseError("failed to load seller", err)
		}
		if seller != nil {
			sellerName = seller.Name
			instance = seller.WhatsAppInstance()
		}
	}

	templateID := ""
	if tpl != nil {
		templateID = tpl.ID
		content = tpl.Render(lead.Name, sellerName)
	} else {
		content = entity.RenderMessage(content, lead.Name, sellerName)
	}

	log := entity.NewMessageLog(lead.ID, templateID, content)
	externalID, err := uc.Gateway.SendText(ctx, instance, WhatsAppNumber(lead.Phone), content)
	if err != nil {
		log.Status = entity.MessageFailed
		uc.Logger.Error("❌ falha ao enviar WhatsApp",
			zap.String("lead_id", lead.ID),
			zap.String("instance", instance),
			zap.Error(err),
		)
	}
	log.ExternalID = externalID

	if uc.OnSent != nil {
		uc.OnSent(log.Status)
	}
	if err := uc.Logs.Create(ctx, log); err != nil {
		return nil, databaseError("failed to log message", err)
	}
	return log, nil
}

func (uc *MessagingUseCase) notifySeller(ctx context.Context, lead *entity.Lead) {
	seller, err := uc.Users.FindByID(ctx, lead.AssignedUserID)
	if err != nil {
		uc.Logger.Warn("vendedor não encontrado para notificação", zap.String("user_id", lead.AssignedUserID), zap.Error(err))
		return
	}
	text := fmt.Sprintf("🔔 Novo lead para você: %s (%s)", lead.Name, lead.Phone)
	if _, err := uc.Gateway.SendText(ctx, uc.DefaultInstance, WhatsAppNumber(seller.Phone), text); err != nil {
		uc.Logger.Error("falha ao notificar vendedor", zap.String("user_id", seller.ID), zap.Error(err))
	}
}
