package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type TemplateStore struct {
	mu        sync.Mutex
	templates map[string]*entity.MessageTemplate
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[string]*entity.MessageTemplate)}
}

// put stores t under the lock, clearing the previous default first.
func (s *TemplateStore) put(t *entity.MessageTemplate) {
	if t.IsDefault {
		for _, other := range s.templates {
			other.IsDefault = false
		}
	}
	c := *t
	s.templates[t.ID] = &c
}

func (s *TemplateStore) Create(_ context.Context, t *entity.MessageTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(t)
	return nil
}

func (s *TemplateStore) Update(_ context.Context, t *entity.MessageTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[t.ID]; !ok {
		return entity.ErrTemplateNotFound
	}
	s.put(t)
	return nil
}

func (s *TemplateStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return entity.ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}

func (s *TemplateStore) FindByID(_ context.Context, id string) (*entity.MessageTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, entity.ErrTemplateNotFound
	}
	c := *t
	return &c, nil
}

func (s *TemplateStore) FindDefault(_ context.Context) (*entity.MessageTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.IsDefault {
			c := *t
			return &c, nil
		}
	}
	return nil, entity.ErrTemplateNotFound
}

func (s *TemplateStore) List(_ context.Context) ([]*entity.MessageTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.MessageTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
