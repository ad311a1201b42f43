package memory

import (
	"context"
	"sync"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
)

// UserRepo keeps credential records in process memory. It is meant for
// development and tests; records are lost on restart.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		users: make(map[string]models.User),
	}
}

// CreateUser inserts u unless the username is taken.
func (r *UserRepo) CreateUser(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.Username]; ok {
		return types.ErrUserExists
	}
	r.users[u.Username] = *u
	return nil
}

// GetUser returns a copy of the record, or (nil, nil) when absent.
func (r *UserRepo) GetUser(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// DeleteUser removes a record. Tokens issued to it stay cryptographically
// valid but no longer resolve to an identity.
func (r *UserRepo) DeleteUser(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return types.ErrUserNotFound
	}
	delete(r.users, username)
	return nil
}

// Count returns the number of stored records.
func (r *UserRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}

func (r *UserRepo) Close() error {
	return nil
}
