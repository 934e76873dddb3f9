package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

// SettingsRepository keeps the single settings row (id = 1).
type SettingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (entity.Settings, error) {
	var s entity.Settings
	err := r.DB.QueryRowContext(ctx, `
		SELECT distribution_method, verify_whatsapp_active, respect_daily_limit, fallback_enabled,
		       auto_welcome_message, remarketing_enabled, remarketing_delay_days,
		       notify_new_lead, notify_whatsapp_offline, updated_at
		FROM settings WHERE id = 1`).Scan(
		&s.DistributionMethod,
		&s.VerifyWhatsAppActive,
		&s.RespectDailyLimit,
		&s.FallbackEnabled,
		&s.AutoWelcomeMessage,
		&s.RemarketingEnabled,
		&s.RemarketingDelayDays,
		&s.NotifyNewLead,
		&s.NotifyWhatsAppOffline,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.DefaultSettings(), nil
	}
	if err != nil {
		return entity.Settings{}, fmt.Errorf("select settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s entity.Settings) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO settings (
			id, distribution_method, verify_whatsapp_active, respect_daily_limit, fallback_enabled,
			auto_welcome_message, remarketing_enabled, remarketing_delay_days,
			notify_new_lead, notify_whatsapp_offline, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			distribution_method = EXCLUDED.distribution_method,
			verify_whatsapp_active = EXCLUDED.verify_whatsapp_active,
			respect_daily_limit = EXCLUDED.respect_daily_limit,
			fallback_enabled = EXCLUDED.fallback_enabled,
			auto_welcome_message = EXCLUDED.auto_welcome_message,
			remarketing_enabled = EXCLUDED.remarketing_enabled,
			remarketing_delay_days = EXCLUDED.remarketing_delay_days,
			notify_new_lead = EXCLUDED.notify_new_lead,
			notify_whatsapp_offline = EXCLUDED.notify_whatsapp_offline,
			updated_at = EXCLUDED.updated_at`,
		s.DistributionMethod,
		s.VerifyWhatsAppActive,
		s.RespectDailyLimit,
		s.FallbackEnabled,
		s.AutoWelcomeMessage,
		s.RemarketingEnabled,
		s.RemarketingDelayDays,
		s.NotifyNewLead,
		s.NotifyWhatsAppOffline,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
