package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

type VerificationRepo struct {
	mu   sync.RWMutex
	rows []registration.VerificationResult
}

func NewVerificationRepo() *VerificationRepo {
	return &VerificationRepo{}
}

func (r *VerificationRepo) Insert(ctx context.Context, result registration.VerificationResult) (registration.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return registration.VerificationResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	r.rows = append(r.rows, result)
	return result, nil
}

func (r *VerificationRepo) ListByRegistration(ctx context.Context, registrationID string) ([]registration.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []registration.VerificationResult
	for _, res := range r.rows {
		if res.RegistrationID == registrationID {
			out = append(out, res)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VerifiedAt.After(out[j].VerifiedAt)
	})
	return out, nil
}
