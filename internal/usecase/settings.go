package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type SettingsUseCase struct {
	Repo SettingsRepository
}

func NewSettingsUseCase(repo SettingsRepository) *SettingsUseCase {
	return &SettingsUseCase{Repo: repo}
}

func (uc *SettingsUseCase) Get(ctx context.Context, s entity.Session) (entity.Settings, error) {
	if err := requireAdmin(s); err != nil {
		return entity.Settings{}, err
	}
	settings, err := uc.Repo.Get(ctx)
	if err != nil {
		return entity.Settings{}, databaseError("failed to load settings", err)
	}
	return settings, nil
}

func (uc *SettingsUseCase) Update(ctx context.Context, s entity.Session, settings entity.Settings) (entity.Settings, error) {
	if err := requireAdmin(s); err != nil {
		return entity.Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return entity.Settings{}, domainError(err, "")
	}
	settings.UpdatedAt = time.Now()
	if err := uc.Repo.Save(ctx, settings); err != nil {
		return entity.Settings{}, databaseError("failed to save settings", err)
	}
	return settings, nil
}
