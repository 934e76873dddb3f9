// Package memory holds in-process implementations of the storage ports, used
// when USE_MEMORY_STORE is set and by the use case tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*entity.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]*entity.Quiz)}
}

func (s *QuizStore) Create(_ context.Context, q *entity.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.quizzes {
		if existing.Slug == q.Slug {
			return entity.ErrSlugTaken
		}
	}
	s.quizzes[q.ID] = q.Clone()
	return nil
}

func (s *QuizStore) Save(_ context.Context, q *entity.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[q.ID]; !ok {
		return entity.ErrQuizNotFound
	}
	s.quizzes[q.ID] = q.Clone()
	return nil
}

func (s *QuizStore) FindByID(_ context.Context, id string) (*entity.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, entity.ErrQuizNotFound
	}
	return q.Clone(), nil
}

func (s *QuizStore) FindBySlug(_ context.Context, slug string) (*entity.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quizzes {
		if q.Slug == slug {
			return q.Clone(), nil
		}
	}
	return nil, entity.ErrQuizNotFound
}

func (s *QuizStore) Revision(_ context.Context, slug string) (usecase.QuizRevision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quizzes {
		if q.Slug == slug {
			return usecase.QuizRevision{IsPublished: q.IsPublished, UpdatedAt: q.UpdatedAt}, nil
		}
	}
	return usecase.QuizRevision{}, entity.ErrQuizNotFound
}

func (s *QuizStore) List(_ context.Context) ([]*entity.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		out = append(out, q.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return entity.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}
