package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type RemarketingStore struct {
	mu         sync.Mutex
	rules      map[string]*entity.RemarketingRule
	dispatches map[[2]string]bool
}

func NewRemarketingStore() *RemarketingStore {
	return &RemarketingStore{
		rules:      make(map[string]*entity.RemarketingRule),
		dispatches: make(map[[2]string]bool),
	}
}

func (s *RemarketingStore) Create(_ context.Context, r *entity.RemarketingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.rules[r.ID] = &c
	return nil
}

func (s *RemarketingStore) Update(_ context.Context, r *entity.RemarketingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[r.ID]; !ok {
		return entity.ErrRuleNotFound
	}
	c := *r
	s.rules[r.ID] = &c
	return nil
}

func (s *RemarketingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return entity.ErrRuleNotFound
	}
	delete(s.rules, id)
	return nil
}

func (s *RemarketingStore) FindByID(_ context.Context, id string) (*entity.RemarketingRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return nil, entity.ErrRuleNotFound
	}
	c := *r
	return &c, nil
}

func (s *RemarketingStore) list(activeOnly bool) []*entity.RemarketingRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.RemarketingRule, 0, len(s.rules))
	for _, r := range s.rules {
		if activeOnly && !r.IsActive {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *RemarketingStore) List(_ context.Context) ([]*entity.RemarketingRule, error) {
	return s.list(false), nil
}

func (s *RemarketingStore) ListActive(_ context.Context) ([]*entity.RemarketingRule, error) {
	return s.list(true), nil
}

func (s *RemarketingStore) ClaimDispatch(_ context.Context, leadID, ruleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{leadID, ruleID}
	if s.dispatches[key] {
		return false, nil
	}
	s.dispatches[key] = true
	return true, nil
}

func (s *RemarketingStore) ReleaseDispatch(_ context.Context, leadID, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dispatches, [2]string{leadID, ruleID})
	return nil
}
