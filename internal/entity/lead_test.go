package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLead(t *testing.T) *Lead {
	t.Helper()
	answers := []Answer{
		{QuestionID: "q1", Value: TextAnswer("Botox")},
		{QuestionID: "q2", Value: NumberAnswer(34)},
		{QuestionID: "q3", Value: BoolAnswer(true)},
	}
	lead, history, err := NewLead("quiz-1", "Maria", "+5511999990000", "maria@example.com", answers, UTM{Source: "instagram", Campaign: "verao"})
	require.NoError(t, err)
	assert.Equal(t, HistoryCreated, history.Action)
	return lead
}

func TestNewLeadDefaults(t *testing.T) {
	lead := newTestLead(t)
	assert.Equal(t, StatusNovo, lead.Status)
	assert.False(t, lead.IsAssigned())

	_, _, err := NewLead("quiz-1", "", "+5511999990000", "", nil, UTM{})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	lead := newTestLead(t)
	_, err := lead.TransitionTo("ganho", "u1", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusNovo, lead.Status)
}

// TestTerminalStatusIsEnforced - fechado -> em_contato só via Reopen
func TestTerminalStatusIsEnforced(t *testing.T) {
	lead := newTestLead(t)
	h, err := lead.TransitionTo(StatusFechado, "u1", "contrato assinado")
	require.NoError(t, err)
	assert.Equal(t, StatusNovo, h.FromStatus)
	assert.Equal(t, StatusFechado, h.ToStatus)

	_, err = lead.TransitionTo(StatusEmContato, "u1", "")
	assert.ErrorIs(t, err, ErrTerminalStatus)
	assert.Equal(t, StatusFechado, lead.Status)

	_, err = lead.Reopen(StatusPerdido, "u1", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	h, err = lead.Reopen(StatusEmContato, "u1", "cliente voltou")
	require.NoError(t, err)
	assert.Equal(t, HistoryReopened, h.Action)
	assert.Equal(t, StatusEmContato, lead.Status)
}

func TestReopenRequiresTerminalStatus(t *testing.T) {
	lead := newTestLead(t)
	_, err := lead.Reopen(StatusQualificado, "u1", "")
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestTransitionBetweenOpenStatuses(t *testing.T) {
	lead := newTestLead(t)
	for _, to := range []KanbanStatus{StatusProposta, StatusEmContato, StatusQualificado, StatusPerdido} {
		_, err := lead.TransitionTo(to, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, to, lead.Status)
	}
	h, err := lead.TransitionTo(StatusPerdido, "u1", "")
	assert.NoError(t, err)
	assert.Nil(t, h)
}

// TestLeadJSONRoundTrip - respostas e UTM sobrevivem à serialização
func TestLeadJSONRoundTrip(t *testing.T) {
	lead := newTestLead(t)
	lead.AssignTo("seller-1", "")

	raw, err := json.Marshal(lead)
	require.NoError(t, err)

	var back Lead
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, lead.Answers, back.Answers)
	assert.Equal(t, lead.UTM, back.UTM)
	assert.Equal(t, lead.AssignedUserID, back.AssignedUserID)
	assert.Equal(t, lead.Status, back.Status)
}

func TestAnswerValueJSON(t *testing.T) {
	var answers []Answer
	require.NoError(t, json.Unmarshal([]byte(`[{"question_id":"a","value":"x"},{"question_id":"b","value":2.5},{"question_id":"c","value":false},{"question_id":"d","value":null}]`), &answers))
	assert.Equal(t, AnswerText, answers[0].Value.Kind())
	n, ok := answers[1].Value.Number()
	assert.True(t, ok)
	assert.Equal(t, 2.5, n)
	b, ok := answers[2].Value.YesNo()
	assert.True(t, ok)
	assert.False(t, b)
	assert.True(t, answers[3].Value.IsEmpty())

	var v AnswerValue
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
}

func TestMessageTemplateRender(t *testing.T) {
	tpl, err := NewMessageTemplate("Boas-vindas", "Olá {{nome}}, sou {{vendedor}}. {{nome}}!", true)
	require.NoError(t, err)
	assert.Equal(t, "Olá Ana, sou Bruno. Ana!", tpl.Render("Ana", "Bruno"))

	_, err = NewMessageTemplate("x", "  ", false)
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestMessageLogAdvance(t *testing.T) {
	m := NewMessageLog("lead", "", "oi")
	assert.True(t, m.Advance(MessageRead))
	assert.False(t, m.Advance(MessageDelivered))
	assert.Equal(t, MessageRead, m.Status)
	assert.True(t, m.Advance(MessageFailed))
	assert.False(t, m.Advance(MessageRead))
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())
	s.RemarketingDelayDays = 31
	assert.Error(t, s.Validate())
	s = DefaultSettings()
	s.DistributionMethod = "random"
	assert.Error(t, s.Validate())
}
