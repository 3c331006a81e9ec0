// Package directory is the broker's local user directory. It owns role
// assignment and the local credential cache (bcrypt hashes for the
// reset-password flow); company membership is always re-synced from
// the upstream platform, which is the source of truth.
package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/boddenberg/buyer-portal-bff-go/internal/domain"
)

// Store is an in-memory user directory, safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // lowercased email → id
}

// NewStore creates an empty directory.
func NewStore() *Store {
	return &Store{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

// GetByID returns the user or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetByEmail returns the user or nil when absent. Lookup is
// case-insensitive.
func (s *Store) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	u := s.byID[id]
	return &u, nil
}

// Create inserts a new user record.
func (s *Store) Create(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.byEmail[key]; exists {
		return &domain.ErrConflict{Message: "account already exists for this email"}
	}
	s.byID[u.ID] = *u
	s.byEmail[key] = u.ID
	return nil
}

// Update overwrites an existing user record.
func (s *Store) Update(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.byID[u.ID]
	if !ok {
		return &domain.ErrNotFound{Resource: "user", ID: u.ID}
	}
	if !strings.EqualFold(prev.Email, u.Email) {
		delete(s.byEmail, strings.ToLower(prev.Email))
		s.byEmail[strings.ToLower(u.Email)] = u.ID
	}
	s.byID[u.ID] = *u
	return nil
}
