package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

type AuditRepo struct {
	mu   sync.RWMutex
	rows []registration.AuditLog
}

func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) Append(ctx context.Context, entry registration.AuditLog) (registration.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return registration.AuditLog{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.rows = append(r.rows, entry)
	return entry, nil
}

func (r *AuditRepo) ListByRegistration(ctx context.Context, registrationID string) ([]registration.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []registration.AuditLog
	for _, entry := range r.rows {
		if entry.RegistrationID == registrationID {
			out = append(out, entry)
		}
	}
	r.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]registration.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]registration.AuditLog, len(r.rows))
	copy(out, r.rows)
	r.mu.RUnlock()
	sortNewestFirst(out)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(entries []registration.AuditLog) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
