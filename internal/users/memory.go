package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/microlearning/microlearn/internal/models"
)

// MemoryStore implements Store with in-process maps. Used in tests and when
// no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryStore returns an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.User)}
}

// CreateUser inserts a user. Returns ErrExists when the username or email is
// already taken.
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("%s: %w", user.Username, ErrExists)
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	u := *user
	s.users[user.ID] = &u
	return nil
}

// GetUser returns a user by ID.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	u := *user
	return &u, nil
}

// GetUserByUsername returns a user by username.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", username, ErrNotFound)
}

// ListUsers returns users with offset and limit, newest first.
func (s *MemoryStore) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(users) {
		return nil, nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
