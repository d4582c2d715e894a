package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

type ResetTokenRepo struct {
	mu    sync.RWMutex
	rows  map[string]registration.ResetToken
	clock func() time.Time
}

func NewResetTokenRepo() *ResetTokenRepo {
	return &ResetTokenRepo{
		rows:  make(map[string]registration.ResetToken),
		clock: time.Now,
	}
}

func (r *ResetTokenRepo) Insert(ctx context.Context, token registration.ResetToken) (registration.ResetToken, error) {
	if err := ctx.Err(); err != nil {
		return registration.ResetToken{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.clock().UTC()
	}
	r.rows[token.ID] = token
	return token, nil
}

func (r *ResetTokenRepo) GetByToken(ctx context.Context, token string) (registration.ResetToken, error) {
	if err := ctx.Err(); err != nil {
		return registration.ResetToken{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rt := range r.rows {
		if rt.Token == token {
			return rt, nil
		}
	}
	return registration.ResetToken{}, registration.ErrNotFound
}

func (r *ResetTokenRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.rows[id]
	if !ok || rt.Used {
		return registration.ErrNotFound
	}
	rt.Used = true
	rt.UsedAt = &at
	r.rows[id] = rt
	return nil
}

func (r *ResetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, rt := range r.rows {
		if !rt.Used && rt.ExpiresAt.Before(now) {
			delete(r.rows, id)
			removed++
		}
	}
	return removed, nil
}
