package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type otpEntry struct {
	code      string
	attempts  int
	expiresAt time.Time
}

type OTPStore struct {
	mu      sync.Mutex
	entries map[string]*otpEntry
	now     func() time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{entries: make(map[string]*otpEntry), now: time.Now}
}

func (s *OTPStore) Put(_ context.Context, phone, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = &otpEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *OTPStore) live(phone string) (*otpEntry, bool) {
	e, ok := s.entries[phone]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, phone)
		return nil, false
	}
	return e, true
}

func (s *OTPStore) Get(_ context.Context, phone string) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return "", 0, entity.ErrNotFound
	}
	return e.code, e.attempts, nil
}

func (s *OTPStore) IncrementAttempts(_ context.Context, phone string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return 0, entity.ErrNotFound
	}
	e.attempts++
	return e.attempts, nil
}

func (s *OTPStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
	return nil
}
