package memory

import (
	"context"
	"sync"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

func (s *UserStore) Get(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) Put(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

type CredentialStore struct {
	mu      sync.RWMutex
	byEmail map[string]models.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{byEmail: make(map[string]models.Credential)}
}

func (s *CredentialStore) Insert(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[c.Email]; taken {
		return repository.ErrDuplicate
	}
	s.byEmail[c.Email] = *c
	return nil
}

func (s *CredentialStore) GetByEmail(_ context.Context, email string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}
