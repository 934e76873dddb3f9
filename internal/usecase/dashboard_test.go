package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

func TestDashboardStats(t *testing.T) {
	m := newMessaging()
	ana := m.addSeller(t, 0, "Ana", 10, 0, 0, entity.WhatsAppOnline)
	bia := m.addSeller(t, 1, "Bia", 10, 0, 0, entity.WhatsAppOnline)

	for i, owner := range []string{ana.ID, ana.ID, bia.ID, ""} {
		lead := m.storeLead(t, "Lead", owner, time.Now())
		if i == 0 {
			_, err := m.leadUC.Transition(ctxBg, admin, lead.ID, "fechado", "")
			require.NoError(t, err)
		}
	}

	uc := usecase.NewDashboardUseCase(m.leads, m.users)
	stats, err := uc.Stats(ctxBg, admin)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalLeads)
	assert.Equal(t, 1, stats.ClosedLeads)
	assert.Equal(t, 25, stats.ConversionRate)
	require.Len(t, stats.ByStatus, len(entity.Pipeline))
	assert.Equal(t, entity.StatusNovo, stats.ByStatus[0].Status)
	assert.Equal(t, 3, stats.ByStatus[0].Count)
	require.Len(t, stats.ByUser, 2)
	assert.Equal(t, "Ana", stats.ByUser[0].Name)
	assert.Equal(t, 2, stats.ByUser[0].Count)

	mine, err := uc.Stats(ctxBg, entity.Session{UserID: bia.ID, Role: entity.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, 1, mine.TotalLeads)
	assert.Zero(t, mine.ConversionRate)
	assert.Nil(t, mine.ByUser)
}
