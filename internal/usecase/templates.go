package usecase

import (
	"context"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type TemplateInput struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsDefault bool   `json:"is_default"`
}

type TemplateUseCase struct {
	Repo TemplateRepository
}

func NewTemplateUseCase(repo TemplateRepository) *TemplateUseCase {
	return &TemplateUseCase{Repo: repo}
}

// Create stores a template. Marking it default clears the previous default
// in the same transaction.
func (uc *TemplateUseCase) Create(ctx context.Context, s entity.Session, in TemplateInput) (*entity.MessageTemplate, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	t, err := entity.NewMessageTemplate(in.Name, in.Content, in.IsDefault)
	if err != nil {
		return nil, domainError(err, "")
	}
	if err := uc.Repo.Create(ctx, t); err != nil {
		return nil, databaseError("failed to create template", err)
	}
	return t, nil
}

func (uc *TemplateUseCase) Update(ctx context.Context, s entity.Session, id string, in TemplateInput) (*entity.MessageTemplate, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	t, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainError(err, "failed to load template")
	}
	if err := t.Update(in.Name, in.Content); err != nil {
		return nil, domainError(err, "")
	}
	t.IsDefault = in.IsDefault
	if err := uc.Repo.Update(ctx, t); err != nil {
		return nil, domainError(err, "failed to update template")
	}
	return t, nil
}

func (uc *TemplateUseCase) Delete(ctx context.Context, s entity.Session, id string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return domainError(err, "failed to delete template")
	}
	return nil
}

func (uc *TemplateUseCase) Get(ctx context.Context, id string) (*entity.MessageTemplate, error) {
	t, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainError(err, "failed to load template")
	}
	return t, nil
}

func (uc *TemplateUseCase) List(ctx context.Context) ([]*entity.MessageTemplate, error) {
	list, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, databaseError("failed to list templates", err)
	}
	return list, nil
}

func (uc *TemplateUseCase) Default(ctx context.Context) (*entity.MessageTemplate, error) {
	t, err := uc.Repo.FindDefault(ctx)
	if err != nil {
		return nil, domainError(err, "failed to load default template")
	}
	return t, nil
}
