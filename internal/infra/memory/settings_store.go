package memory

import (
	"context"
	"sync"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type SettingsStore struct {
	mu       sync.RWMutex
	settings entity.Settings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{settings: entity.DefaultSettings()}
}

func (s *SettingsStore) Get(_ context.Context) (entity.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *SettingsStore) Save(_ context.Context, settings entity.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}
