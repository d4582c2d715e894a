package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

func TestCompleteReviewGuard(t *testing.T) {
	repo := NewRegistrationRepo()
	reg, err := repo.Create(context.Background(), registration.Registration{
		CompanyEmail: "ceo@acme.com",
		Status:       registration.StatusPendingReview,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	decision := usecase.ReviewDecision{
		Status:     registration.StatusApproved,
		ReviewedBy: "admin@jobstream.io",
		ReviewedAt: time.Now().UTC(),
	}
	updated, ok, err := repo.CompleteReview(context.Background(), reg.ID, decision)
	if err != nil || !ok {
		t.Fatalf("complete: ok=%v err=%v", ok, err)
	}
	if updated.Status != registration.StatusApproved {
		t.Fatalf("status = %s", updated.Status)
	}

	if _, ok, _ := repo.CompleteReview(context.Background(), reg.ID, decision); ok {
		t.Fatalf("second review must not apply")
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewRegistrationRepo()
	if _, err := repo.Create(context.Background(), registration.Registration{
		CompanyEmail: "dup@acme.com",
		Status:       registration.StatusPendingReview,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := repo.Create(context.Background(), registration.Registration{
		CompanyEmail: "DUP@acme.com",
		Status:       registration.StatusInitiated,
	})
	if !errors.Is(err, registration.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestListByStatusPagesOldestFirst(t *testing.T) {
	repo := NewRegistrationRepo()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if _, err := repo.Create(context.Background(), registration.Registration{
			CompanyEmail: "c" + string(rune('0'+i)) + "@acme.com",
			Status:       registration.StatusPendingReview,
			CreatedAt:    base.Add(time.Duration(3-i) * time.Minute),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, total, err := repo.ListByStatus(context.Background(), registration.StatusPendingReview, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(items) != 2 {
		t.Fatalf("total=%d items=%d", total, len(items))
	}
	if !items[0].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("page not oldest-first: %v", items[0].CreatedAt)
	}
}
