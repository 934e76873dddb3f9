package usecase

import (
	"context"
	"math"
	"sort"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type StatusCount struct {
	Status entity.KanbanStatus `json:"status"`
	Label  string              `json:"label"`
	Count  int                 `json:"count"`
}

type UserCount struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type DashboardStats struct {
	TotalLeads     int           `json:"total_leads"`
	ClosedLeads    int           `json:"closed_leads"`
	ConversionRate int           `json:"conversion_rate"`
	ByStatus       []StatusCount `json:"by_status"`
	ByUser         []UserCount   `json:"by_user,omitempty"`
}

type DashboardUseCase struct {
	Leads LeadRepository
	Users UserRepository
}

func NewDashboardUseCase(leads LeadRepository, users UserRepository) *DashboardUseCase {
	return &DashboardUseCase{Leads: leads, Users: users}
}

// Stats summarises the pipeline. Sellers only count their own leads and do
// not get the per-user breakdown.
func (uc *DashboardUseCase) Stats(ctx context.Context, s entity.Session) (*DashboardStats, error) {
	scope := ""
	if !s.IsAdmin() {
		scope = s.UserID
	}
	counts, err := uc.Leads.CountByStatus(ctx, scope)
	if err != nil {
		return nil, databaseError("failed to count leads", err)
	}

	stats := &DashboardStats{ByStatus: make([]StatusCount, 0, len(entity.Pipeline))}
	for _, st := range entity.Pipeline {
		n := counts[st]
		stats.TotalLeads += n
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: st, Label: st.Label(), Count: n})
	}
	stats.ClosedLeads = counts[entity.StatusFechado]
	if stats.TotalLeads > 0 {
		stats.ConversionRate = int(math.Round(float64(stats.ClosedLeads) / float64(stats.TotalLeads) * 100))
	}

	if !s.IsAdmin() {
		return stats, nil
	}

	perUser, err := uc.Leads.CountByUser(ctx)
	if err != nil {
		return nil, databaseError("failed to count leads by user", err)
	}
	users, err := uc.Users.ListSellers(ctx)
	if err != nil {
		return nil, databaseError("failed to list sellers", err)
	}
	stats.ByUser = make([]UserCount, 0, len(users))
	for _, u := range users {
		stats.ByUser = append(stats.ByUser, UserCount{UserID: u.ID, Name: u.Name, Count: perUser[u.ID]})
	}
	sort.SliceStable(stats.ByUser, func(i, j int) bool { return stats.ByUser[i].Count > stats.ByUser[j].Count })
	return stats, nil
}
