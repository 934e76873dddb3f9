package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

const maxSlugAttempts = 50

type QuestionInput struct {
	Type             entity.QuestionType      `json:"type"`
	Prompt           string                   `json:"question"`
	Required         *bool                    `json:"required"`
	Options          []string                 `json:"options"`
	ConditionalLogic *entity.ConditionalLogic `json:"conditional_logic"`
}

type QuizUseCase struct {
	Repo   QuizRepository
	Cache  QuizCache
	Logger *zap.Logger
}

func NewQuizUseCase(repo QuizRepository, cache QuizCache, logger *zap.Logger) *QuizUseCase {
	if cache == nil {
		cache = noopQuizCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizUseCase{Repo: repo, Cache: cache, Logger: logger}
}

// Create stores a new draft quiz. When the slug is taken it tries slug-2, slug-3, ...
func (uc *QuizUseCase) Create(ctx context.Context, s entity.Session, title, description string) (*entity.Quiz, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	quiz, err := entity.NewQuiz(title, description)
	if err != nil {
		return nil, domainError(err, "")
	}

	base := quiz.Slug
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		if attempt > 1 {
			quiz.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		err = uc.Repo.Create(ctx, quiz)
		if err == nil {
			uc.Logger.Info("quiz criado", zap.String("quiz_id", quiz.ID), zap.String("slug", quiz.Slug))
			return quiz, nil
		}
		if !errors.Is(err, entity.ErrSlugTaken) {
			return nil, databaseError("failed to create quiz", err)
		}
	}
	return nil, domainError(err, "")
}

func (uc *QuizUseCase) Get(ctx context.Context, s entity.Session, id string) (*entity.Quiz, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	quiz, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainError(err, "failed to load quiz")
	}
	return quiz, nil
}

func (uc *QuizUseCase) List(ctx context.Context, s entity.Session) ([]*entity.Quiz, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	quizzes, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, databaseError("failed to list quizzes", err)
	}
	return quizzes, nil
}

func (uc *QuizUseCase) Delete(ctx context.Context, s entity.Session, id string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	quiz, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return domainError(err, "failed to load quiz")
	}
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return domainError(err, "failed to delete quiz")
	}
	uc.Cache.Remove(quiz.Slug)
	return nil
}

// FindBySlug is the public lookup. Drafts are reported as not found. A cached
// copy is served only while the stored revision still matches it, so an
// unpublish or edit made by any replica is seen on the next request.
func (uc *QuizUseCase) FindBySlug(ctx context.Context, slug string) (*entity.Quiz, error) {
	if quiz, ok := uc.Cache.Get(slug); ok {
		rev, err := uc.Repo.Revision(ctx, slug)
		if err != nil {
			uc.Cache.Remove(slug)
			return nil, domainError(err, "failed to load quiz")
		}
		if !rev.IsPublished {
			uc.Cache.Remove(slug)
			return nil, domainError(entity.ErrQuizNotFound, "")
		}
		if rev.UpdatedAt.Equal(quiz.UpdatedAt) {
			return quiz, nil
		}
		uc.Cache.Remove(slug)
	}
	quiz, err := uc.Repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, domainError(err, "failed to load quiz")
	}
	if !quiz.IsPublished {
		return nil, domainError(entity.ErrQuizNotFound, "")
	}
	uc.Cache.Add(quiz)
	return quiz, nil
}

func (uc *QuizUseCase) Update(ctx context.Context, s entity.Session, id, title, description string) (*entity.Quiz, error) {
	return uc.mutate(ctx, s, id, func(q *entity.Quiz) error {
		return q.Rename(title, description)
	})
}

func (uc *QuizUseCase) SetPublished(ctx context.Context, s entity.Session, id string, published bool) (*entity.Quiz, error) {
	return uc.mutate(ctx, s, id, func(q *entity.Quiz) error {
		q.SetPublished(published)
		return nil
	})
}

func (uc *QuizUseCase) AddStep(ctx context.Context, s entity.Session, quizID, title string) (*entity.QuizStep, error) {
	var step *entity.QuizStep
	_, err := uc.mutate(ctx, s, quizID, func(q *entity.Quiz) error {
		step = q.AddStep(title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

func (uc *QuizUseCase) UpdateStep(ctx context.Context, s entity.Session, quizID, stepID, title string) (*entity.Quiz, error) {
	return uc.mutate(ctx, s, quizID, func(q *entity.Quiz) error {
		return q.RenameStep(stepID, title)
	})
}

func (uc *QuizUseCase) ReorderSteps(ctx context.Context, s entity.Session, quizID string, stepIDs []string) (*entity.Quiz, error) {
	return uc.mutate(ctx, s, quizID, func(q *entity.Quiz) error {
		return q.ReorderSteps(stepIDs)
	})
}

func (uc *QuizUseCase) DeleteStep(ctx context.Context, s entity.Session, quizID, stepID string) (*entity.Quiz, error) {
	return uc.mutate(ctx, s, quizID, func(q *entity.Quiz) error {
		return q.RemoveStep(stepID)
	})
}

// AddQuestion appends a question to a step. Type defaults to text and
// required to true.
func (uc *QuizUseCase) AddQuestion(ctx context.Context, s entity.Session, quizID, stepID string, in QuestionInput) (*entity.QuizQuestion, error) {
	required := true
	if in.Required != nil {
		required = *in.Required
	}
	question, err := entity.NewQuestion(in.Type, in.Prompt, required, in.Options)
	if err != nil {
		return nil, domainError(err, "")
	}
	question.Conditional = in.ConditionalLogic

	_, err = uc.mutate(ctx, s, quizID, func(q *entity.Quiz) error {
		return q.AddQuestion(stepID, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

// UpdateQuestion replaces the editable fields of a question. A nil
// ConditionalLogic clears the condition.
func (uc *QuizUseCase) UpdateQuestion(ctx context.Context, s entity.Session, quizID, questionID string, in QuestionInput) (*entity.QuizQuestion, error) {
	var updated *entity.QuizQuestion
	_, err := uc.mutate(ctx, s, quizID, func(q *entity.Quiz) error {
		question, err := q.Question(questionID)
		if err != nil {
			return err
		}
		if err := question.Reshape(in.Type, in.Prompt, in.Options); err != nil {
			return err
		}
		if in.Required != nil {
			question.Required = *in.Required
		}
		updated = question
		return q.SetCondition(questionID, in.ConditionalLogic)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *QuizUseCase) DeleteQuestion(ctx context.Context, s entity.Session, quizID, stepID, questionID string) (*entity.Quiz, error) {
	return uc.mutate(ctx, s, quizID, func(q *entity.Quiz) error {
		return q.RemoveQuestion(stepID, questionID)
	})
}

// mutate loads a fresh copy of the quiz, applies fn and saves it. The copy is
// dropped when fn fails, so a rejected edit never reaches storage.
func (uc *QuizUseCase) mutate(ctx context.Context, s entity.Session, quizID string, fn func(*entity.Quiz) error) (*entity.Quiz, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	quiz, err := uc.Repo.FindByID(ctx, quizID)
	if err != nil {
		return nil, domainError(err, "failed to load quiz")
	}
	if err := fn(quiz); err != nil {
		return nil, domainError(err, "")
	}
	if err := uc.Repo.Save(ctx, quiz); err != nil {
		return nil, domainError(err, "failed to save quiz")
	}
	uc.Cache.Remove(quiz.Slug)
	return quiz, nil
}

func requireAdmin(s entity.Session) error {
	if !s.IsAdmin() {
		return domainError(entity.ErrForbidden, "")
	}
	return nil
}
