package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type UserStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (s *UserStore) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *UserStore) Update(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[u.ID]
	if !ok {
		return entity.ErrUserNotFound
	}
	c := cloneUser(u)
	c.LeadsReceivedToday = current.LeadsReceivedToday
	s.users[u.ID] = c
	return nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return entity.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) find(match func(*entity.User) bool) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (s *UserStore) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	return s.find(func(u *entity.User) bool { return phone != "" && u.Phone == phone })
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return s.find(func(u *entity.User) bool { return email != "" && u.Email == email })
}

func (s *UserStore) sorted(match func(*entity.User) bool) []*entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.User
	for _, u := range s.users {
		if match(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *UserStore) List(_ context.Context) ([]*entity.User, error) {
	return s.sorted(func(*entity.User) bool { return true }), nil
}

func (s *UserStore) ListSellers(_ context.Context) ([]*entity.User, error) {
	return s.sorted(func(u *entity.User) bool { return u.Role == entity.RoleUser }), nil
}

func (s *UserStore) ReserveLead(_ context.Context, userID string, respectLimit bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.Role != entity.RoleUser {
		return false, nil
	}
	if respectLimit && !u.UnderDailyLimit() {
		return false, nil
	}
	u.LeadsReceivedToday++
	return true, nil
}

func (s *UserStore) ReleaseLead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok && u.LeadsReceivedToday > 0 {
		u.LeadsReceivedToday--
	}
	return nil
}

func (s *UserStore) SetWhatsAppStatus(_ context.Context, id string, status entity.WhatsAppStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}
	u.WhatsAppStatus = status
	return nil
}

func (s *UserStore) ResetDailyCounters(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.LeadsReceivedToday > 0 {
			u.LeadsReceivedToday = 0
			n++
		}
	}
	return n, nil
}
