package usecase_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

// TestRoundRobinSpreadsEvenly - 3 vendedores, 6 leads, 2 para cada em ordem estável
func TestRoundRobinSpreadsEvenly(t *testing.T) {
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.RespectDailyLimit = false })
	a := f.addSeller(t, 0, "A", 1, 0, 0, entity.WhatsAppOnline)
	b := f.addSeller(t, 1, "B", 1, 0, 0, entity.WhatsAppOnline)
	c := f.addSeller(t, 2, "C", 1, 0, 0, entity.WhatsAppOnline)
	quiz, _, _ := f.publishedQuiz(t)

	var order []string
	counts := map[string]int{}
	for i := 0; i < 6; i++ {
		out := f.submit(t, quiz.Slug)
		order = append(order, out.Lead.AssignedUserID)
		counts[out.Lead.AssignedUserID]++
	}
	assert.Equal(t, []string{a.ID, b.ID, c.ID, a.ID, b.ID, c.ID}, order)
	assert.Equal(t, map[string]int{a.ID: 2, b.ID: 2, c.ID: 2}, counts)
}

// TestAvailabilityPicksMostCapacity - capacidades 5, 0, 3
func TestAvailabilityPicksMostCapacity(t *testing.T) {
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.DistributionMethod = entity.DistributionAvailability })
	five := f.addSeller(t, 0, "Cinco", 10, 5, 0, entity.WhatsAppOnline)
	f.addSeller(t, 1, "Zero", 10, 10, 0, entity.WhatsAppOnline)
	three := f.addSeller(t, 2, "Três", 10, 7, 0, entity.WhatsAppOnline)
	settings, _ := f.settings.Get(ctxBg)

	got, err := f.distributor.Assign(ctxBg, settings)
	require.NoError(t, err)
	assert.Equal(t, five.ID, got.User.ID)

	drained, _ := f.users.FindByID(ctxBg, five.ID)
	drained.LeadsReceivedToday = drained.DailyLeadLimit
	require.NoError(t, f.users.Create(ctxBg, drained))

	got, err = f.distributor.Assign(ctxBg, settings)
	require.NoError(t, err)
	assert.Equal(t, three.ID, got.User.ID)
}

func TestAvailabilityTieUsesRoundRobin(t *testing.T) {
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.DistributionMethod = entity.DistributionAvailability })
	a := f.addSeller(t, 0, "A", 10, 0, 0, entity.WhatsAppOnline)
	b := f.addSeller(t, 1, "B", 10, 0, 0, entity.WhatsAppOnline)
	settings, _ := f.settings.Get(ctxBg)

	first, err := f.distributor.Assign(ctxBg, settings)
	require.NoError(t, err)
	assert.Equal(t, a.ID, first.User.ID)
	second, err := f.distributor.Assign(ctxBg, settings)
	require.NoError(t, err)
	assert.Equal(t, b.ID, second.User.ID)
}

// TestOfflineNeverSelected - offline perde mesmo com prioridade maior
func TestOfflineNeverSelected(t *testing.T) {
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.DistributionMethod = entity.DistributionPriority })
	f.addSeller(t, 0, "VIP offline", 10, 0, 100, entity.WhatsAppOffline)
	online := f.addSeller(t, 1, "Online", 10, 0, 1, entity.WhatsAppOnline)
	settings, _ := f.settings.Get(ctxBg)

	for i := 0; i < 3; i++ {
		got, err := f.distributor.Assign(ctxBg, settings)
		require.NoError(t, err)
		assert.Equal(t, online.ID, got.User.ID)
	}
}

func TestPriorityTieBreaksOnFewestReceived(t *testing.T) {
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.DistributionMethod = entity.DistributionPriority })
	f.addSeller(t, 0, "Ocupado", 10, 4, 5, entity.WhatsAppOnline)
	calmo := f.addSeller(t, 1, "Calmo", 10, 1, 5, entity.WhatsAppOnline)
	f.addSeller(t, 2, "Baixa", 10, 0, 1, entity.WhatsAppOnline)
	settings, _ := f.settings.Get(ctxBg)

	got, err := f.distributor.Assign(ctxBg, settings)
	require.NoError(t, err)
	assert.Equal(t, calmo.ID, got.User.ID)
}

func TestFallbackIgnoresOnlyDailyLimit(t *testing.T) {
	f := newFixture()
	full := f.addSeller(t, 0, "Cheio", 2, 2, 0, entity.WhatsAppOnline)
	f.addSeller(t, 1, "Offline", 10, 0, 0, entity.WhatsAppOffline)
	settings, _ := f.settings.Get(ctxBg)

	got, err := f.distributor.Assign(ctxBg, settings)
	require.NoError(t, err)
	assert.Equal(t, full.ID, got.User.ID)
	assert.True(t, got.Fallback)

	over, _ := f.users.FindByID(ctxBg, full.ID)
	assert.Equal(t, 3, over.LeadsReceivedToday)

	settings.FallbackEnabled = false
	_, err = f.distributor.Assign(ctxBg, settings)
	assert.ErrorIs(t, err, entity.ErrNoEligibleUser)
}

func TestDailyLimitRespected(t *testing.T) {
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.FallbackEnabled = false })
	seller := f.addSeller(t, 0, "Único", 2, 0, 0, entity.WhatsAppOnline)
	settings, _ := f.settings.Get(ctxBg)

	for i := 0; i < 2; i++ {
		_, err := f.distributor.Assign(ctxBg, settings)
		require.NoError(t, err)
	}
	_, err := f.distributor.Assign(ctxBg, settings)
	assert.ErrorIs(t, err, entity.ErrNoEligibleUser)

	stored, _ := f.users.FindByID(ctxBg, seller.ID)
	assert.Equal(t, 2, stored.LeadsReceivedToday)
}

// TestDailyLimitUnderConcurrentAssign - 20 goroutines disputando 5 vagas
func TestDailyLimitUnderConcurrentAssign(t *testing.T) {
	const limit, workers = 5, 20
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.FallbackEnabled = false })
	seller := f.addSeller(t, 0, "Único", limit, 0, 0, entity.WhatsAppOnline)
	settings, _ := f.settings.Get(ctxBg)

	var (
		wg       sync.WaitGroup
		assigned atomic.Int32
		refused  atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.distributor.Assign(ctxBg, settings)
			switch {
			case err == nil && got.User.ID == seller.ID:
				assigned.Add(1)
			case assert.ErrorIs(t, err, entity.ErrNoEligibleUser):
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, limit, assigned.Load())
	assert.EqualValues(t, workers-limit, refused.Load())
	stored, _ := f.users.FindByID(ctxBg, seller.ID)
	assert.Equal(t, limit, stored.LeadsReceivedToday)
}

func TestDailyLimitUnderConcurrentSubmit(t *testing.T) {
	const limit, workers = 3, 12
	f := newFixture()
	f.setSettings(t, func(s *entity.Settings) { s.FallbackEnabled = false })
	seller := f.addSeller(t, 0, "Único", limit, 0, 0, entity.WhatsAppOnline)
	quiz, q, _ := f.publishedQuiz(t)

	var (
		wg       sync.WaitGroup
		assigned atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.submissionUC.Submit(ctxBg, quiz.Slug, usecase.SubmitInput{
				Name:    "Cliente",
				Phone:   "(11) 98888-7777",
				Answers: []entity.Answer{{QuestionID: q.ID, Value: entity.TextAnswer("Botox")}},
			})
			if assert.NoError(t, err) && out.Assigned {
				assigned.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, limit, assigned.Load())
	stored, _ := f.users.FindByID(ctxBg, seller.ID)
	assert.Equal(t, limit, stored.LeadsReceivedToday)
	owned, _ := f.leads.List(ctxBg, usecase.LeadFilter{AssignedUserID: seller.ID})
	assert.Len(t, owned, limit)
	waiting, _ := f.leads.List(ctxBg, usecase.LeadFilter{Unassigned: true})
	assert.Len(t, waiting, workers-limit)
}
