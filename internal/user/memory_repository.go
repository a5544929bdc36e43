package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. Used for local development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Create(_ context.Context, email string, passwordHash *string, provider string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[email]; exists {
		return nil, ErrDuplicateEmail
	}

	u := User{
		ID:        uuid.New(),
		Email:     email,
		Provider:  provider,
		CreatedAt: time.Now().UTC(),
	}
	if passwordHash != nil {
		h := *passwordHash
		u.PasswordHash = &h
	}
	r.users[email] = u

	return &u, nil
}
