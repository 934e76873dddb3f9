package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepOrders(q *Quiz) []int {
	var orders []int
	for _, s := range q.Steps {
		orders = append(orders, s.Order)
	}
	return orders
}

func questionOrders(s *QuizStep) []int {
	var orders []int
	for _, q := range s.Questions {
		orders = append(orders, q.Order)
	}
	return orders
}

func newTextQuestion(t *testing.T, prompt string) *QuizQuestion {
	t.Helper()
	q, err := NewQuestion(QuestionText, prompt, true, nil)
	require.NoError(t, err)
	return q
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Quiz de Estética":        "quiz-de-esttica",
		"  Avaliação   Gratuita ": "avaliao-gratuita",
		"Black Friday 2024!":      "black-friday-2024",
		"!!!":                     "quiz",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewQuizRequiresTitle(t *testing.T) {
	_, err := NewQuiz("   ", "desc")
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	q, err := NewQuiz("Meu Quiz", "")
	require.NoError(t, err)
	assert.Equal(t, "meu-quiz", q.Slug)
	assert.False(t, q.IsPublished)
	assert.Empty(t, q.Steps)
}

// TestStepOrderContiguous - ordem das etapas sempre 1..N após inserir e remover
func TestStepOrderContiguous(t *testing.T) {
	for pos := 0; pos < 5; pos++ {
		q, _ := NewQuiz("Quiz", "")
		for i := 0; i < 5; i++ {
			q.AddStep("")
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5}, stepOrders(q))

		require.NoError(t, q.RemoveStep(q.Steps[pos].ID))
		assert.Equal(t, []int{1, 2, 3, 4}, stepOrders(q), "delete at %d", pos)

		q.AddStep("nova")
		assert.Equal(t, []int{1, 2, 3, 4, 5}, stepOrders(q))
	}
}

func TestQuestionOrderContiguous(t *testing.T) {
	for pos := 0; pos < 4; pos++ {
		q, _ := NewQuiz("Quiz", "")
		step := q.AddStep("")
		for i := 0; i < 4; i++ {
			require.NoError(t, q.AddQuestion(step.ID, newTextQuestion(t, "p")))
		}
		assert.Equal(t, []int{1, 2, 3, 4}, questionOrders(step))

		require.NoError(t, q.RemoveQuestion(step.ID, step.Questions[pos].ID))
		assert.Equal(t, []int{1, 2, 3}, questionOrders(step), "delete at %d", pos)
	}
}

func TestReorderSteps(t *testing.T) {
	q, _ := NewQuiz("Quiz", "")
	a, b, c := q.AddStep("a"), q.AddStep("b"), q.AddStep("c")

	require.NoError(t, q.ReorderSteps([]string{c.ID, a.ID, b.ID}))
	assert.Equal(t, []string{"c", "a", "b"}, []string{q.Steps[0].Title, q.Steps[1].Title, q.Steps[2].Title})
	assert.Equal(t, []int{1, 2, 3}, stepOrders(q))

	var ve ValidationError
	assert.ErrorAs(t, q.ReorderSteps([]string{a.ID, b.ID}), &ve)
	assert.ErrorAs(t, q.ReorderSteps([]string{a.ID, a.ID, b.ID}), &ve)
	assert.ErrorAs(t, q.ReorderSteps([]string{a.ID, b.ID, "x"}), &ve)
	assert.Equal(t, "c", q.Steps[0].Title, "failed reorder leaves order untouched")
}

func TestConditionsMustPointBackwards(t *testing.T) {
	q, _ := NewQuiz("Quiz", "")
	s1, s2, s3 := q.AddStep(""), q.AddStep(""), q.AddStep("")
	first := newTextQuestion(t, "primeira")
	second := newTextQuestion(t, "segunda")
	later := newTextQuestion(t, "depois")
	require.NoError(t, q.AddQuestion(s1.ID, first))
	require.NoError(t, q.AddQuestion(s1.ID, second))
	require.NoError(t, q.AddQuestion(s2.ID, later))

	var ve ValidationError
	forward := &ConditionalLogic{QuestionID: second.ID, Operator: OperatorEquals, Value: "x", Action: ActionShow}
	assert.ErrorAs(t, q.SetCondition(first.ID, forward), &ve)

	self := &ConditionalLogic{QuestionID: first.ID, Operator: OperatorEquals, Value: "x", Action: ActionShow}
	assert.ErrorAs(t, q.SetCondition(first.ID, self), &ve)

	assert.NoError(t, q.SetCondition(second.ID, &ConditionalLogic{QuestionID: first.ID, Operator: OperatorEquals, Value: "x", Action: ActionShow}))

	backSkip := &ConditionalLogic{QuestionID: first.ID, Operator: OperatorEquals, Value: "x", Action: ActionSkipTo, TargetStepID: s1.ID}
	assert.ErrorAs(t, q.SetCondition(later.ID, backSkip), &ve)

	skip := &ConditionalLogic{QuestionID: first.ID, Operator: OperatorEquals, Value: "x", Action: ActionSkipTo, TargetStepID: s3.ID}
	assert.NoError(t, q.SetCondition(later.ID, skip))

	// Moving the referenced step after the dependent one would create a forward reference.
	assert.ErrorAs(t, q.ReorderSteps([]string{s2.ID, s1.ID, s3.ID}), &ve)
	assert.Equal(t, s1.ID, q.Steps[0].ID)
}

func TestRemoveStepDropsConditions(t *testing.T) {
	q, _ := NewQuiz("Quiz", "")
	s1, s2, s3 := q.AddStep(""), q.AddStep(""), q.AddStep("")
	source := newTextQuestion(t, "origem")
	dependent := newTextQuestion(t, "dependente")
	skipper := newTextQuestion(t, "pula")
	require.NoError(t, q.AddQuestion(s1.ID, source))
	require.NoError(t, q.AddQuestion(s2.ID, dependent))
	require.NoError(t, q.AddQuestion(s1.ID, skipper))
	require.NoError(t, q.SetCondition(dependent.ID, &ConditionalLogic{QuestionID: source.ID, Operator: OperatorEquals, Value: "a", Action: ActionShow}))
	require.NoError(t, q.SetCondition(skipper.ID, &ConditionalLogic{QuestionID: source.ID, Operator: OperatorEquals, Value: "a", Action: ActionSkipTo, TargetStepID: s3.ID}))

	require.NoError(t, q.RemoveStep(s3.ID))
	assert.Nil(t, skipper.Conditional)
	assert.NotNil(t, dependent.Conditional)

	require.NoError(t, q.RemoveQuestion(s1.ID, source.ID))
	assert.Nil(t, dependent.Conditional)
	assert.Equal(t, 1, skipper.Order)
	_ = s2
}

func TestRemoveUnknownStep(t *testing.T) {
	q, _ := NewQuiz("Quiz", "")
	assert.True(t, errors.Is(q.RemoveStep("nope"), ErrNotFound))
}

func TestCloneIsDeep(t *testing.T) {
	q, _ := NewQuiz("Quiz", "")
	s := q.AddStep("")
	mc, err := NewQuestion(QuestionMultipleChoice, "cor", true, []string{"azul", "verde"})
	require.NoError(t, err)
	require.NoError(t, q.AddQuestion(s.ID, mc))

	c := q.Clone()
	c.Steps[0].Questions[0].Options[0] = "roxo"
	c.Steps[0].Title = "outra"
	assert.Equal(t, "azul", mc.Options[0])
	assert.NotEqual(t, "outra", s.Title)
}
