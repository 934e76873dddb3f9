package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type MessageLogStore struct {
	mu   sync.Mutex
	logs map[string]*entity.MessageLog
}

func NewMessageLogStore() *MessageLogStore {
	return &MessageLogStore{logs: make(map[string]*entity.MessageLog)}
}

func (s *MessageLogStore) Create(_ context.Context, m *entity.MessageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *m
	s.logs[m.ID] = &c
	return nil
}

func (s *MessageLogStore) ListByLead(_ context.Context, leadID string) ([]*entity.MessageLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*entity.MessageLog{}
	for _, m := range s.logs {
		if m.LeadID == leadID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

func (s *MessageLogStore) FindByExternalID(_ context.Context, externalID string) (*entity.MessageLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.logs {
		if externalID != "" && m.ExternalID == externalID {
			c := *m
			return &c, nil
		}
	}
	return nil, entity.ErrMessageLogNotFound
}

func (s *MessageLogStore) UpdateStatus(_ context.Context, id string, status entity.MessageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.logs[id]
	if !ok {
		return entity.ErrMessageLogNotFound
	}
	m.Status = status
	return nil
}
