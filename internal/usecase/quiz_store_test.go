package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/infra/cache"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

func TestCreateQuizSlugCollision(t *testing.T) {
	f := newFixture()
	a, err := f.quizUC.Create(ctxBg, admin, "Quiz Verão", "")
	require.NoError(t, err)
	b, err := f.quizUC.Create(ctxBg, admin, "Quiz Verão", "")
	require.NoError(t, err)
	c, err := f.quizUC.Create(ctxBg, admin, "quiz verão", "")
	require.NoError(t, err)

	assert.Equal(t, "quiz-vero", a.Slug)
	assert.Equal(t, "quiz-vero-2", b.Slug)
	assert.Equal(t, "quiz-vero-3", c.Slug)
}

func TestQuizEditsRequireAdmin(t *testing.T) {
	f := newFixture()
	seller := entity.Session{UserID: "u1", Role: entity.RoleUser}
	_, err := f.quizUC.Create(ctxBg, seller, "Quiz", "")
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

// TestFindBySlugHidesDrafts - rascunho nunca aparece no caminho público
func TestFindBySlugHidesDrafts(t *testing.T) {
	f := newFixture()
	quiz, err := f.quizUC.Create(ctxBg, admin, "Rascunho", "")
	require.NoError(t, err)

	_, err = f.quizUC.FindBySlug(ctxBg, quiz.Slug)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = f.quizUC.SetPublished(ctxBg, admin, quiz.ID, true)
	require.NoError(t, err)
	found, err := f.quizUC.FindBySlug(ctxBg, quiz.Slug)
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, found.ID)

	_, err = f.quizUC.SetPublished(ctxBg, admin, quiz.ID, false)
	require.NoError(t, err)
	_, err = f.quizUC.FindBySlug(ctxBg, quiz.Slug)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestStepAndQuestionLifecycle(t *testing.T) {
	f := newFixture()
	quiz, _ := f.quizUC.Create(ctxBg, admin, "Quiz", "")
	s1, _ := f.quizUC.AddStep(ctxBg, admin, quiz.ID, "Contato")
	s2, _ := f.quizUC.AddStep(ctxBg, admin, quiz.ID, "")
	s3, _ := f.quizUC.AddStep(ctxBg, admin, quiz.ID, "")
	assert.Equal(t, 3, s3.Order)
	assert.Equal(t, "Etapa 2", s2.Title)

	updated, err := f.quizUC.DeleteStep(ctxBg, admin, quiz.ID, s2.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, []int{updated.Steps[0].Order, updated.Steps[1].Order})

	_, err = f.quizUC.ReorderSteps(ctxBg, admin, quiz.ID, []string{s3.ID})
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeValidation, de.Code)

	q1, err := f.quizUC.AddQuestion(ctxBg, admin, quiz.ID, s1.ID, usecase.QuestionInput{Prompt: "Nome"})
	require.NoError(t, err)
	assert.Equal(t, entity.QuestionText, q1.Type)
	assert.True(t, q1.Required)

	_, err = f.quizUC.AddQuestion(ctxBg, admin, quiz.ID, s1.ID, usecase.QuestionInput{Type: entity.QuestionMultipleChoice, Prompt: "Plano"})
	require.ErrorAs(t, err, &de)

	q2, err := f.quizUC.AddQuestion(ctxBg, admin, quiz.ID, s3.ID, usecase.QuestionInput{
		Prompt:           "Detalhes",
		ConditionalLogic: &entity.ConditionalLogic{QuestionID: q1.ID, Operator: entity.OperatorContains, Value: "a", Action: entity.ActionShow},
	})
	require.NoError(t, err)

	edited, err := f.quizUC.UpdateQuestion(ctxBg, admin, quiz.ID, q2.ID, usecase.QuestionInput{
		Type:    entity.QuestionYesNo,
		Prompt:  "Deseja contato?",
		Options: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.QuestionYesNo, edited.Type)
	assert.Nil(t, edited.Conditional)

	// Edit that fails validation leaves the stored quiz untouched.
	_, err = f.quizUC.UpdateQuestion(ctxBg, admin, quiz.ID, q1.ID, usecase.QuestionInput{
		Prompt:           "Nome",
		ConditionalLogic: &entity.ConditionalLogic{QuestionID: q2.ID, Operator: entity.OperatorEquals, Value: "sim", Action: entity.ActionShow},
	})
	require.ErrorAs(t, err, &de)
	stored, _ := f.quizUC.Get(ctxBg, admin, quiz.ID)
	q, _ := stored.Question(q1.ID)
	assert.Nil(t, q.Conditional)

	_, err = f.quizUC.DeleteQuestion(ctxBg, admin, quiz.ID, s1.ID, "missing")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestDeleteQuizInvalidatesCache(t *testing.T) {
	f := newFixture()
	quiz, _, _ := f.publishedQuiz(t)
	_, err := f.quizUC.FindBySlug(ctxBg, quiz.Slug)
	require.NoError(t, err)

	require.NoError(t, f.quizUC.Delete(ctxBg, admin, quiz.ID))
	_, err = f.quizUC.FindBySlug(ctxBg, quiz.Slug)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

// TestUnpublishSeenByOtherReplica - duas instâncias da API com caches próprios
func TestUnpublishSeenByOtherReplica(t *testing.T) {
	f := newFixture()
	replicaA := usecase.NewQuizUseCase(f.quizzes, cache.NewQuizCache(8, time.Hour), nil)
	replicaB := usecase.NewQuizUseCase(f.quizzes, cache.NewQuizCache(8, time.Hour), nil)

	quiz, err := replicaA.Create(ctxBg, admin, "Avaliação", "")
	require.NoError(t, err)
	_, err = replicaA.SetPublished(ctxBg, admin, quiz.ID, true)
	require.NoError(t, err)

	warm, err := replicaB.FindBySlug(ctxBg, quiz.Slug)
	require.NoError(t, err)
	assert.True(t, warm.IsPublished)

	_, err = replicaA.SetPublished(ctxBg, admin, quiz.ID, false)
	require.NoError(t, err)
	_, err = replicaB.FindBySlug(ctxBg, quiz.Slug)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCachedQuizRefreshedAfterEdit(t *testing.T) {
	f := newFixture()
	replicaA := usecase.NewQuizUseCase(f.quizzes, cache.NewQuizCache(8, time.Hour), nil)
	replicaB := usecase.NewQuizUseCase(f.quizzes, cache.NewQuizCache(8, time.Hour), nil)

	quiz, _ := replicaA.Create(ctxBg, admin, "Avaliação", "")
	_, err := replicaA.SetPublished(ctxBg, admin, quiz.ID, true)
	require.NoError(t, err)
	_, err = replicaB.FindBySlug(ctxBg, quiz.Slug)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = replicaA.Update(ctxBg, admin, quiz.ID, "Avaliação Nova", "")
	require.NoError(t, err)

	got, err := replicaB.FindBySlug(ctxBg, quiz.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Avaliação Nova", got.Title)
}

// unpublishingQuizzes unpublishes the quiz right after the first FindBySlug
// read, before the caller gets to cache it.
type unpublishingQuizzes struct {
	usecase.QuizRepository
	once sync.Once
	hook func()
}

func (r *unpublishingQuizzes) FindBySlug(ctx context.Context, slug string) (*entity.Quiz, error) {
	q, err := r.QuizRepository.FindBySlug(ctx, slug)
	r.once.Do(r.hook)
	return q, err
}

func TestUnpublishBetweenReadAndCacheFill(t *testing.T) {
	f := newFixture()
	quiz, err := f.quizUC.Create(ctxBg, admin, "Avaliação", "")
	require.NoError(t, err)
	_, err = f.quizUC.SetPublished(ctxBg, admin, quiz.ID, true)
	require.NoError(t, err)

	public := usecase.NewQuizUseCase(&unpublishingQuizzes{
		QuizRepository: f.quizzes,
		hook: func() {
			_, err := f.quizUC.SetPublished(ctxBg, admin, quiz.ID, false)
			require.NoError(t, err)
		},
	}, cache.NewQuizCache(8, time.Hour), nil)

	_, err = public.FindBySlug(ctxBg, quiz.Slug)
	require.NoError(t, err, "read happened while still published")

	_, err = public.FindBySlug(ctxBg, quiz.Slug)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
