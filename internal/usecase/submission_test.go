package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

func TestSubmitCreatesAssignedLead(t *testing.T) {
	f := newFixture()
	seller := f.addSeller(t, 0, "Bruno", 10, 0, 0, entity.WhatsAppOnline)
	quiz, required, optional := f.publishedQuiz(t)

	out, err := f.submissionUC.Submit(ctxBg, quiz.Slug, usecase.SubmitInput{
		Name:  " Ana ",
		Phone: "11 98888-7777",
		Email: "Ana@Example.com",
		Answers: []entity.Answer{
			{QuestionID: required.ID, Value: entity.TextAnswer("Botox")},
			{QuestionID: optional.ID, Value: entity.NumberAnswer(31)},
		},
		UTM: entity.UTM{Source: "instagram", Medium: "cpc"},
	})
	require.NoError(t, err)

	lead := out.Lead
	assert.True(t, out.Assigned)
	assert.Equal(t, seller.ID, lead.AssignedUserID)
	assert.Equal(t, entity.StatusNovo, lead.Status)
	assert.Equal(t, "Ana", lead.Name)
	assert.Equal(t, "+5511988887777", lead.Phone)
	assert.Equal(t, "ana@example.com", lead.Email)
	assert.Len(t, lead.Answers, 2)

	stored, err := f.leads.FindByID(ctxBg, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.Answers, stored.Answers)
	assert.Equal(t, entity.UTM{Source: "instagram", Medium: "cpc"}, stored.UTM)

	history, _ := f.leads.History(ctxBg, lead.ID)
	require.Len(t, history, 2)
	assert.Equal(t, entity.HistoryCreated, history[0].Action)
	assert.Equal(t, entity.HistoryAssigned, history[1].Action)

	counted, _ := f.users.FindByID(ctxBg, seller.ID)
	assert.Equal(t, 1, counted.LeadsReceivedToday)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, entity.EventLeadCreated, f.events.events[0].Type)
	assert.Equal(t, lead.ID, f.events.events[0].LeadID)
}

func TestSubmitRejectsMissingRequired(t *testing.T) {
	f := newFixture()
	quiz, _, optional := f.publishedQuiz(t)

	_, err := f.submissionUC.Submit(ctxBg, quiz.Slug, usecase.SubmitInput{
		Name:    "Ana",
		Phone:   "11988887777",
		Answers: []entity.Answer{{QuestionID: optional.ID, Value: entity.NumberAnswer(20)}},
	})
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeValidation, de.Code)

	leads, _ := f.leads.List(ctxBg, usecase.LeadFilter{})
	assert.Empty(t, leads)
}

func TestSubmitValidatesContactAndQuestions(t *testing.T) {
	f := newFixture()
	quiz, required, _ := f.publishedQuiz(t)

	_, err := f.submissionUC.Submit(ctxBg, quiz.Slug, usecase.SubmitInput{
		Name:  "",
		Phone: "123",
		Email: "não-é-email",
		Answers: []entity.Answer{
			{QuestionID: required.ID, Value: entity.TextAnswer("x")},
			{QuestionID: "ghost", Value: entity.TextAnswer("y")},
		},
	})
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Message, "name")
	assert.Contains(t, de.Message, "phone")
	assert.Contains(t, de.Message, "email")
	assert.Contains(t, de.Message, "ghost")
}

func TestSubmitDraftIsNotFound(t *testing.T) {
	f := newFixture()
	quiz, _ := f.quizUC.Create(ctxBg, admin, "Rascunho", "")
	_, err := f.submissionUC.Submit(ctxBg, quiz.Slug, usecase.SubmitInput{Name: "Ana", Phone: "11988887777"})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

// TestSubmitWithoutEligibleSeller - lead fica sem dono, submit não falha
func TestSubmitWithoutEligibleSeller(t *testing.T) {
	f := newFixture()
	f.addSeller(t, 0, "Offline", 10, 0, 0, entity.WhatsAppOffline)
	quiz, _, _ := f.publishedQuiz(t)

	out := f.submit(t, quiz.Slug)
	assert.False(t, out.Assigned)
	assert.Empty(t, out.Lead.AssignedUserID)
	assert.Equal(t, entity.StatusNovo, out.Lead.Status)

	unassigned, _ := f.leads.List(ctxBg, usecase.LeadFilter{Unassigned: true})
	assert.Len(t, unassigned, 1)
	assert.Len(t, f.events.events, 1)
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker down")
	quiz, _, _ := f.publishedQuiz(t)

	out := f.submit(t, quiz.Slug)
	_, err := f.leads.FindByID(ctxBg, out.Lead.ID)
	assert.NoError(t, err)
}

func TestSubmitDropsHiddenAnswers(t *testing.T) {
	f := newFixture()
	quiz, _ := f.quizUC.Create(ctxBg, admin, "Condicional", "")
	step, _ := f.quizUC.AddStep(ctxBg, admin, quiz.ID, "")
	gate, err := f.quizUC.AddQuestion(ctxBg, admin, quiz.ID, step.ID, usecase.QuestionInput{Type: entity.QuestionYesNo, Prompt: "Já fez?"})
	require.NoError(t, err)
	follow, err := f.quizUC.AddQuestion(ctxBg, admin, quiz.ID, step.ID, usecase.QuestionInput{
		Prompt:           "Onde?",
		ConditionalLogic: &entity.ConditionalLogic{QuestionID: gate.ID, Operator: entity.OperatorEquals, Value: "sim", Action: entity.ActionShow},
	})
	require.NoError(t, err)
	_, err = f.quizUC.SetPublished(ctxBg, admin, quiz.ID, true)
	require.NoError(t, err)

	out, err := f.submissionUC.Submit(ctxBg, quiz.Slug, usecase.SubmitInput{
		Name:  "Ana",
		Phone: "11988887777",
		Answers: []entity.Answer{
			{QuestionID: gate.ID, Value: entity.TextAnswer("nao")},
			{QuestionID: follow.ID, Value: entity.TextAnswer("clínica X")},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Lead.Answers, 1)
	assert.Equal(t, gate.ID, out.Lead.Answers[0].QuestionID)
}

func TestValidateStep(t *testing.T) {
	f := newFixture()
	quiz, required, _ := f.publishedQuiz(t)

	res, err := f.submissionUC.ValidateStep(ctxBg, quiz.Slug, 0, nil)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, []string{required.ID}, res.Missing)

	res, err = f.submissionUC.ValidateStep(ctxBg, quiz.Slug, 0, []entity.Answer{{QuestionID: required.ID, Value: entity.TextAnswer("Peeling")}})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.NextStep)
}
