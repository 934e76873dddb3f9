package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type RemarketingRuleInput struct {
	Name                string `json:"name"`
	TriggerStatus       string `json:"trigger_status"`
	DaysWithoutActivity int    `json:"days_without_activity"`
	TemplateID          string `json:"template_id"`
	IsActive            *bool  `json:"is_active"`
}

type RemarketingUseCase struct {
	Rules     RemarketingRepository
	Leads     LeadRepository
	Templates TemplateRepository
	Settings  SettingsRepository
	Messaging *MessagingUseCase
	Logger    *zap.Logger
}

func NewRemarketingUseCase(
	rules RemarketingRepository,
	leads LeadRepository,
	templates TemplateRepository,
	settings SettingsRepository,
	messaging *MessagingUseCase,
	logger *zap.Logger,
) *RemarketingUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemarketingUseCase{
		Rules:     rules,
		Leads:     leads,
		Templates: templates,
		Settings:  settings,
		Messaging: messaging,
		Logger:    logger,
	}
}

// Create stores a rule. Days default to the configured remarketing delay.
func (uc *RemarketingUseCase) Create(ctx context.Context, s entity.Session, in RemarketingRuleInput) (*entity.RemarketingRule, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	days, err := uc.daysOrDefault(ctx, in.DaysWithoutActivity)
	if err != nil {
		return nil, err
	}
	if err := uc.checkTemplate(ctx, in.TemplateID); err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	rule, err := entity.NewRemarketingRule(in.Name, entity.KanbanStatus(in.TriggerStatus), days, in.TemplateID, active)
	if err != nil {
		return nil, domainError(err, "")
	}
	if err := uc.Rules.Create(ctx, rule); err != nil {
		return nil, databaseError("failed to create remarketing rule", err)
	}
	return rule, nil
}

func (uc *RemarketingUseCase) Update(ctx context.Context, s entity.Session, id string, in RemarketingRuleInput) (*entity.RemarketingRule, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	rule, err := uc.Rules.FindByID(ctx, id)
	if err != nil {
		return nil, domainError(err, "failed to load remarketing rule")
	}
	days, err := uc.daysOrDefault(ctx, in.DaysWithoutActivity)
	if err != nil {
		return nil, err
	}
	if err := uc.checkTemplate(ctx, in.TemplateID); err != nil {
		return nil, err
	}
	if err := rule.Update(in.Name, entity.KanbanStatus(in.TriggerStatus), days, in.TemplateID); err != nil {
		return nil, domainError(err, "")
	}
	if in.IsActive != nil {
		rule.IsActive = *in.IsActive
	}
	if err := uc.Rules.Update(ctx, rule); err != nil {
		return nil, domainError(err, "failed to update remarketing rule")
	}
	return rule, nil
}

func (uc *RemarketingUseCase) Delete(ctx context.Context, s entity.Session, id string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	if err := uc.Rules.Delete(ctx, id); err != nil {
		return domainError(err, "failed to delete remarketing rule")
	}
	return nil
}

func (uc *RemarketingUseCase) List(ctx context.Context, s entity.Session) ([]*entity.RemarketingRule, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	rules, err := uc.Rules.List(ctx)
	if err != nil {
		return nil, databaseError("failed to list remarketing rules", err)
	}
	return rules, nil
}

// Run sends every active rule's template to the stale leads it matches.
// A (lead, rule) pair is dispatched at most once; the claim is released when
// the message could not be stored.
func (uc *RemarketingUseCase) Run(ctx context.Context, now time.Time) (int, error) {
	settings, err := uc.Settings.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.RemarketingEnabled {
		return 0, nil
	}
	rules, err := uc.Rules.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list rules: %w", err)
	}

	sent := 0
	for _, rule := range rules {
		tpl, err := uc.Templates.FindByID(ctx, rule.TemplateID)
		if err != nil {
			uc.Logger.Warn("regra com template inválido", zap.String("rule_id", rule.ID), zap.Error(err))
			continue
		}
		leads, err := uc.Leads.FindStale(ctx, rule.TriggerStatus, rule.StaleBefore(now))
		if err != nil {
			return sent, fmt.Errorf("failed to find stale leads: %w", err)
		}
		for _, lead := range leads {
			ok, err := uc.dispatch(ctx, rule, tpl, lead)
			if err != nil {
				uc.Logger.Error("falha no remarketing", zap.String("rule_id", rule.ID), zap.String("lead_id", lead.ID), zap.Error(err))
				continue
			}
			if ok {
				sent++
			}
		}
	}
	if sent > 0 {
		uc.Logger.Info("remarketing enviado", zap.Int("messages", sent))
	}
	return sent, nil
}

func (uc *RemarketingUseCase) dispatch(ctx context.Context, rule *entity.RemarketingRule, tpl *entity.MessageTemplate, lead *entity.Lead) (bool, error) {
	claimed := false
	txn := NewTransaction(uc.Logger)
	txn.AddOperation("claim_dispatch", func(ctx context.Context) error {
		ok, err := uc.Rules.ClaimDispatch(ctx, lead.ID, rule.ID)
		claimed = ok
		return err
	}, func(ctx context.Context) error {
		return uc.Rules.ReleaseDispatch(ctx, lead.ID, rule.ID)
	})
	txn.AddOperation("send_message", func(ctx context.Context) error {
		if !claimed {
			return nil
		}
		_, err := uc.Messaging.deliver(ctx, lead, tpl, "")
		return err
	}, nil)
	if err := txn.Execute(ctx); err != nil {
		return false, err
	}
	return claimed, nil
}

func (uc *RemarketingUseCase) daysOrDefault(ctx context.Context, days int) (int, error) {
	if days > 0 {
		return days, nil
	}
	settings, err := uc.Settings.Get(ctx)
	if err != nil {
		return 0, databaseError("failed to load settings", err)
	}
	return settings.RemarketingDelayDays, nil
}

func (uc *RemarketingUseCase) checkTemplate(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := uc.Templates.FindByID(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return domainError(entity.ValidationError{Field: "template_id", Message: "references an unknown template"}, "")
		}
		return databaseError("failed to load template", err)
	}
	return nil
}
