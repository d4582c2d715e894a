// Package memory backs the repositories with process-local state. It
// serves handler tests and the no-database development mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

type RegistrationRepo struct {
	mu    sync.RWMutex
	rows  map[string]registration.Registration
	clock func() time.Time
}

func NewRegistrationRepo() *RegistrationRepo {
	return &RegistrationRepo{
		rows:  make(map[string]registration.Registration),
		clock: time.Now,
	}
}

func (r *RegistrationRepo) Create(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	if err := ctx.Err(); err != nil {
		return registration.Registration{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if strings.EqualFold(existing.CompanyEmail, reg.CompanyEmail) {
			return registration.Registration{}, registration.ErrEmailTaken
		}
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = r.clock().UTC()
	}
	r.rows[reg.ID] = reg
	return reg, nil
}

func (r *RegistrationRepo) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	if err := ctx.Err(); err != nil {
		return registration.Registration{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.rows[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, nil
}

func (r *RegistrationRepo) ListByStatus(ctx context.Context, status registration.RegistrationStatus, offset, limit int) ([]registration.Registration, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]registration.Registration, 0)
	for _, reg := range r.rows {
		if reg.Status == status {
			matched = append(matched, reg)
		}
	}
	r.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *RegistrationRepo) CompleteReview(ctx context.Context, id string, decision usecase.ReviewDecision) (registration.Registration, bool, error) {
	if err := ctx.Err(); err != nil {
		return registration.Registration{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.rows[id]
	if !ok || reg.Status != registration.StatusPendingReview {
		return registration.Registration{}, false, nil
	}
	reviewedAt := decision.ReviewedAt
	reg.Status = decision.Status
	reg.ReviewedAt = &reviewedAt
	reg.ReviewedBy = &decision.ReviewedBy
	if decision.Notes != "" {
		notes := decision.Notes
		reg.ReviewNotes = &notes
	} else {
		reg.ReviewNotes = nil
	}
	reg.UpdatedAt = &reviewedAt
	r.rows[id] = reg
	return reg, true, nil
}

func (r *RegistrationRepo) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows)), nil
}

func (r *RegistrationRepo) CountByStatus(ctx context.Context, status registration.RegistrationStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for _, reg := range r.rows {
		if reg.Status == status {
			total++
		}
	}
	return total, nil
}

func (r *RegistrationRepo) AverageReviewHours(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum float64
	var n int
	for _, reg := range r.rows {
		if !reg.Status.Terminal() || reg.SubmittedAt == nil || reg.ReviewedAt == nil {
			continue
		}
		sum += reg.ReviewedAt.Sub(*reg.SubmittedAt).Hours()
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}
