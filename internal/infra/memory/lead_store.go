package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type LeadStore struct {
	mu      sync.RWMutex
	leads   map[string]*entity.Lead
	history map[string][]*entity.LeadHistory
}

func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads:   make(map[string]*entity.Lead),
		history: make(map[string][]*entity.LeadHistory),
	}
}

func cloneLead(l *entity.Lead) *entity.Lead {
	c := *l
	c.Answers = append([]entity.Answer(nil), l.Answers...)
	return &c
}

func (s *LeadStore) Create(_ context.Context, l *entity.Lead, history ...*entity.LeadHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[l.ID] = cloneLead(l)
	s.appendHistory(l.ID, history)
	return nil
}

func (s *LeadStore) Update(_ context.Context, l *entity.Lead, history ...*entity.LeadHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.leads[l.ID]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if stored.Version != l.Version {
		return entity.ErrLeadConflict
	}
	l.Version++
	s.leads[l.ID] = cloneLead(l)
	s.appendHistory(l.ID, history)
	return nil
}

func (s *LeadStore) appendHistory(leadID string, history []*entity.LeadHistory) {
	for _, h := range history {
		if h == nil {
			continue
		}
		c := *h
		s.history[leadID] = append(s.history[leadID], &c)
	}
}

func (s *LeadStore) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return cloneLead(l), nil
}

func (s *LeadStore) List(_ context.Context, filter usecase.LeadFilter) ([]*entity.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Lead
	for _, l := range s.leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.AssignedUserID != "" && l.AssignedUserID != filter.AssignedUserID {
			continue
		}
		if filter.Unassigned && l.IsAssigned() {
			continue
		}
		out = append(out, cloneLead(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *LeadStore) History(_ context.Context, leadID string) ([]*entity.LeadHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.LeadHistory, 0, len(s.history[leadID]))
	for _, h := range s.history[leadID] {
		c := *h
		out = append(out, &c)
	}
	return out, nil
}

func (s *LeadStore) FindStale(_ context.Context, status entity.KanbanStatus, before time.Time) ([]*entity.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Lead
	for _, l := range s.leads {
		if l.Status == status && l.UpdatedAt.Before(before) {
			out = append(out, cloneLead(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (s *LeadStore) CountByStatus(_ context.Context, assignedUserID string) (map[entity.KanbanStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[entity.KanbanStatus]int)
	for _, l := range s.leads {
		if assignedUserID != "" && l.AssignedUserID != assignedUserID {
			continue
		}
		counts[l.Status]++
	}
	return counts, nil
}

func (s *LeadStore) CountByUser(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, l := range s.leads {
		if l.IsAssigned() {
			counts[l.AssignedUserID]++
		}
	}
	return counts, nil
}
