package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

func TestRemarketingDispatchesOncePerLead(t *testing.T) {
	m := newMessaging()
	now := time.Now()
	tpl := m.defaultTemplate(t)
	stale := m.storeLead(t, "Parada", "", now.AddDate(0, 0, -5))
	m.storeLead(t, "Recente", "", now.Add(-time.Hour))

	rm := usecase.NewRemarketingUseCase(m.rules, m.leads, m.templates, m.settings, m.messaging, nil)
	_, err := rm.Create(ctxBg, admin, usecase.RemarketingRuleInput{
		Name:                "Reengajar novos",
		TriggerStatus:       "novo",
		DaysWithoutActivity: 3,
		TemplateID:          tpl.ID,
	})
	require.NoError(t, err)

	m.gateway.On("SendText", mock.Anything, "crm-default", "5511988887777", "Olá Parada, aqui é !").Return("ext-1", nil).Once()

	sent, err := rm.Run(ctxBg, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = rm.Run(ctxBg, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent)

	m.gateway.AssertExpectations(t)
	logs, _ := m.logs.ListByLead(ctxBg, stale.ID)
	assert.Len(t, logs, 1)
}

func TestRemarketingDisabled(t *testing.T) {
	m := newMessaging()
	now := time.Now()
	tpl := m.defaultTemplate(t)
	m.storeLead(t, "Parada", "", now.AddDate(0, 0, -5))
	rm := usecase.NewRemarketingUseCase(m.rules, m.leads, m.templates, m.settings, m.messaging, nil)
	_, err := rm.Create(ctxBg, admin, usecase.RemarketingRuleInput{Name: "r", TriggerStatus: "novo", TemplateID: tpl.ID})
	require.NoError(t, err)
	m.setSettings(t, func(s *entity.Settings) { s.RemarketingEnabled = false })

	sent, err := rm.Run(ctxBg, now)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestRemarketingRuleDefaults(t *testing.T) {
	m := newMessaging()
	tpl := m.defaultTemplate(t)
	m.setSettings(t, func(s *entity.Settings) { s.RemarketingDelayDays = 7 })
	rm := usecase.NewRemarketingUseCase(m.rules, m.leads, m.templates, m.settings, m.messaging, nil)

	rule, err := rm.Create(ctxBg, admin, usecase.RemarketingRuleInput{Name: "r", TriggerStatus: "proposta", TemplateID: tpl.ID})
	require.NoError(t, err)
	assert.Equal(t, 7, rule.DaysWithoutActivity)
	assert.True(t, rule.IsActive)

	_, err = rm.Create(ctxBg, admin, usecase.RemarketingRuleInput{Name: "r", TriggerStatus: "proposta", TemplateID: "nope"})
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeValidation, de.Code)

	_, err = rm.Create(ctxBg, admin, usecase.RemarketingRuleInput{Name: "r", TriggerStatus: "ganho", TemplateID: tpl.ID})
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)
}
