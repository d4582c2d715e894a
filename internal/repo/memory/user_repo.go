package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

type UserRepo struct {
	mu    sync.RWMutex
	rows  map[string]registration.User
	clock func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		rows:  make(map[string]registration.User),
		clock: time.Now,
	}
}

func (r *UserRepo) Create(ctx context.Context, user registration.User) (registration.User, error) {
	if err := ctx.Err(); err != nil {
		return registration.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if strings.EqualFold(existing.Email, user.Email) {
			return registration.User{}, registration.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.clock().UTC()
	}
	r.rows[user.ID] = user
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (registration.User, error) {
	if err := ctx.Err(); err != nil {
		return registration.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.rows[id]
	if !ok {
		return registration.User{}, registration.ErrNotFound
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (registration.User, error) {
	if err := ctx.Err(); err != nil {
		return registration.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.rows {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return registration.User{}, registration.ErrNotFound
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.rows[id]
	if !ok {
		return registration.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.rows[id] = user
	return nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.rows[id]
	if !ok {
		return registration.ErrNotFound
	}
	user.LastLoginAt = &at
	r.rows[id] = user
	return nil
}
