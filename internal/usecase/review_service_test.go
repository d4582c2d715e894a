package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

var reviewClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func pendingRegistration(id string) registration.Registration {
	submitted := reviewClock.Add(-24 * time.Hour)
	return registration.Registration{
		ID:           id,
		CompanyEmail: id + "@example.com",
		LegalName:    "Acme " + id,
		Status:       registration.StatusPendingReview,
		CreatedAt:    submitted,
		SubmittedAt:  &submitted,
	}
}

func newReviewService(regs *fakeRegistrationRepo, audit *fakeAuditRepo, notify *fakeNotifier) *ReviewService {
	svc := NewReviewService(regs, &fakeVerificationRepo{}, NewAuditRecorder(audit, nil), notify, nil)
	svc.Clock = fixedClock(reviewClock)
	return svc
}

func TestApproveTransitionsAndAudits(t *testing.T) {
	regs := newFakeRegistrationRepo(pendingRegistration("reg-1"))
	audit := &fakeAuditRepo{}
	notify := &fakeNotifier{}
	svc := newReviewService(regs, audit, notify)

	updated, err := svc.Approve(context.Background(), "reg-1", "looks legit", Reviewer{Email: "admin@jobstream.io"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != registration.StatusApproved {
		t.Fatalf("status = %s, want approved", updated.Status)
	}
	if updated.ReviewedBy == nil || *updated.ReviewedBy != "admin@jobstream.io" {
		t.Fatalf("reviewedBy = %v", updated.ReviewedBy)
	}
	if updated.ReviewedAt == nil || !updated.ReviewedAt.Equal(reviewClock) {
		t.Fatalf("reviewedAt = %v", updated.ReviewedAt)
	}

	actions := audit.actions()
	if len(actions) != 2 || actions[0] != registration.ActionRegistrationApproved || actions[1] != registration.ActionStatusChanged {
		t.Fatalf("audit actions = %v", actions)
	}
	statusEntry := audit.entries[1]
	if statusEntry.PreviousStatus == nil || *statusEntry.PreviousStatus != registration.StatusPendingReview {
		t.Fatalf("previousStatus = %v", statusEntry.PreviousStatus)
	}
	if statusEntry.NewStatus == nil || *statusEntry.NewStatus != registration.StatusApproved {
		t.Fatalf("newStatus = %v", statusEntry.NewStatus)
	}

	if len(notify.sent) != 1 || notify.sent[0].kind != "approval" || notify.sent[0].to != "reg-1@example.com" {
		t.Fatalf("sent = %+v", notify.sent)
	}
}

func TestRejectReasonValidation(t *testing.T) {
	tests := []struct {
		name    string
		reason  string
		wantErr bool
	}{
		{name: "empty", reason: "", wantErr: true},
		{name: "whitespace only", reason: "   ", wantErr: true},
		{name: "too short", reason: "too vague", wantErr: true},
		{name: "exactly ten chars", reason: "0123456789", wantErr: false},
		{name: "long enough", reason: "missing registration documents", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs := newFakeRegistrationRepo(pendingRegistration("reg-1"))
			svc := newReviewService(regs, &fakeAuditRepo{}, &fakeNotifier{})
			_, err := svc.Reject(context.Background(), "reg-1", tt.reason, Reviewer{Email: "admin@jobstream.io"})
			if tt.wantErr {
				if _, ok := registration.IsValidation(err); !ok {
					t.Fatalf("expected validation error, got %v", err)
				}
				// Validation happens before the load, so nothing changed.
				if regs.rows["reg-1"].Status != registration.StatusPendingReview {
					t.Fatalf("status mutated to %s", regs.rows["reg-1"].Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("reject: %v", err)
			}
		})
	}
}

func TestDecisionAuditDetailKeys(t *testing.T) {
	tests := []struct {
		name    string
		decide  func(svc *ReviewService) error
		wantKey string
		want    string
	}{
		{
			name: "approve stores notes",
			decide: func(svc *ReviewService) error {
				_, err := svc.Approve(context.Background(), "reg-1", "all documents verified", Reviewer{Email: "admin@jobstream.io"})
				return err
			},
			wantKey: "notes",
			want:    "all documents verified",
		},
		{
			name: "reject stores reason",
			decide: func(svc *ReviewService) error {
				_, err := svc.Reject(context.Background(), "reg-1", "missing registration documents", Reviewer{Email: "admin@jobstream.io"})
				return err
			},
			wantKey: "reason",
			want:    "missing registration documents",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &fakeAuditRepo{}
			svc := newReviewService(newFakeRegistrationRepo(pendingRegistration("reg-1")), audit, &fakeNotifier{})
			if err := tt.decide(svc); err != nil {
				t.Fatalf("decide: %v", err)
			}
			var details map[string]string
			if err := json.Unmarshal(audit.entries[0].Details, &details); err != nil {
				t.Fatalf("unmarshal details: %v", err)
			}
			if details[tt.wantKey] != tt.want {
				t.Fatalf("details[%q] = %q, want %q", tt.wantKey, details[tt.wantKey], tt.want)
			}
			other := "reason"
			if tt.wantKey == "reason" {
				other = "notes"
			}
			if _, ok := details[other]; ok {
				t.Fatalf("details carries %q key: %v", other, details)
			}
		})
	}
}

func TestReviewRequiresPendingStatus(t *testing.T) {
	statuses := []registration.RegistrationStatus{
		registration.StatusInitiated,
		registration.StatusEmailVerified,
		registration.StatusDetailsSubmitted,
		registration.StatusApproved,
		registration.StatusRejected,
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			reg := pendingRegistration("reg-1")
			reg.Status = status
			svc := newReviewService(newFakeRegistrationRepo(reg), &fakeAuditRepo{}, &fakeNotifier{})
			_, err := svc.Approve(context.Background(), "reg-1", "", Reviewer{Email: "admin@jobstream.io"})
			state, ok := registration.IsStateError(err)
			if !ok {
				t.Fatalf("expected state error, got %v", err)
			}
			if state.Current != status {
				t.Fatalf("current = %s, want %s", state.Current, status)
			}
		})
	}
}

func TestReviewUnknownRegistration(t *testing.T) {
	svc := newReviewService(newFakeRegistrationRepo(), &fakeAuditRepo{}, &fakeNotifier{})
	_, err := svc.Approve(context.Background(), "missing", "", Reviewer{Email: "admin@jobstream.io"})
	if !errors.Is(err, registration.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// lostRaceRepo reports pending on the first read, then behaves as if a
// concurrent reviewer won the conditional update.
type lostRaceRepo struct {
	*fakeRegistrationRepo
	reads int
}

func (r *lostRaceRepo) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	r.reads++
	reg, err := r.fakeRegistrationRepo.GetByID(ctx, id)
	if err != nil {
		return registration.Registration{}, err
	}
	if r.reads == 1 {
		reg.Status = registration.StatusPendingReview
	}
	return reg, nil
}

func (r *lostRaceRepo) CompleteReview(context.Context, string, ReviewDecision) (registration.Registration, bool, error) {
	return registration.Registration{}, false, nil
}

func TestReviewLostRaceReportsCurrentStatus(t *testing.T) {
	reg := pendingRegistration("reg-1")
	reg.Status = registration.StatusApproved
	repo := &lostRaceRepo{fakeRegistrationRepo: newFakeRegistrationRepo(reg)}
	svc := NewReviewService(repo, &fakeVerificationRepo{}, NewAuditRecorder(&fakeAuditRepo{}, nil), &fakeNotifier{}, nil)
	svc.Clock = fixedClock(reviewClock)

	_, err := svc.Reject(context.Background(), "reg-1", "duplicate registration found", Reviewer{Email: "admin@jobstream.io"})
	state, ok := registration.IsStateError(err)
	if !ok {
		t.Fatalf("expected state error, got %v", err)
	}
	if state.Current != registration.StatusApproved {
		t.Fatalf("current = %s, want approved", state.Current)
	}
}

func TestAuditFailureDoesNotFailReview(t *testing.T) {
	regs := newFakeRegistrationRepo(pendingRegistration("reg-1"))
	audit := &fakeAuditRepo{appendErr: errors.New("audit store down")}
	svc := newReviewService(regs, audit, &fakeNotifier{})

	updated, err := svc.Approve(context.Background(), "reg-1", "", Reviewer{Email: "admin@jobstream.io"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != registration.StatusApproved {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestMailFailureDoesNotFailReview(t *testing.T) {
	regs := newFakeRegistrationRepo(pendingRegistration("reg-1"))
	notify := &fakeNotifier{err: errors.New("smtp down")}
	svc := newReviewService(regs, &fakeAuditRepo{}, notify)

	if _, err := svc.Approve(context.Background(), "reg-1", "", Reviewer{Email: "admin@jobstream.io"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

func TestListPendingOrderAndClamps(t *testing.T) {
	var regs []registration.Registration
	for i := 0; i < 5; i++ {
		reg := pendingRegistration("reg-" + string(rune('a'+i)))
		reg.CreatedAt = reviewClock.Add(time.Duration(i) * time.Minute)
		regs = append(regs, reg)
	}
	svc := newReviewService(newFakeRegistrationRepo(regs...), &fakeAuditRepo{}, &fakeNotifier{})

	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantSize     int
		wantItems    int
		wantFirstIdx int
	}{
		{name: "defaults", page: 0, size: 0, wantPage: 1, wantSize: 20, wantItems: 5, wantFirstIdx: 0},
		{name: "negative page", page: -3, size: 2, wantPage: 1, wantSize: 2, wantItems: 2, wantFirstIdx: 0},
		{name: "second page", page: 2, size: 2, wantPage: 2, wantSize: 2, wantItems: 2, wantFirstIdx: 2},
		{name: "oversized pageSize", page: 1, size: 500, wantPage: 1, wantSize: 20, wantItems: 5, wantFirstIdx: 0},
		{name: "past the end", page: 9, size: 2, wantPage: 9, wantSize: 2, wantItems: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.ListPending(context.Background(), tt.page, tt.size)
			if err != nil {
				t.Fatalf("list pending: %v", err)
			}
			if result.Page != tt.wantPage || result.PageSize != tt.wantSize {
				t.Fatalf("page/pageSize = %d/%d, want %d/%d", result.Page, result.PageSize, tt.wantPage, tt.wantSize)
			}
			if len(result.Items) != tt.wantItems {
				t.Fatalf("items = %d, want %d", len(result.Items), tt.wantItems)
			}
			if result.Total != 5 {
				t.Fatalf("total = %d", result.Total)
			}
			if tt.wantItems > 0 && !result.Items[0].CreatedAt.Equal(reviewClock.Add(time.Duration(tt.wantFirstIdx)*time.Minute)) {
				t.Fatalf("first item createdAt = %v", result.Items[0].CreatedAt)
			}
		})
	}
}

func TestListPendingTotalPages(t *testing.T) {
	var regs []registration.Registration
	for i := 0; i < 41; i++ {
		reg := pendingRegistration("reg-" + string(rune('a'+i%26)) + string(rune('0'+i/26)))
		reg.ID = reg.ID + "-" + string(rune('0'+i%10))
		reg.CreatedAt = reviewClock.Add(time.Duration(i) * time.Second)
		regs = append(regs, reg)
	}
	svc := newReviewService(newFakeRegistrationRepo(regs...), &fakeAuditRepo{}, &fakeNotifier{})
	result, err := svc.ListPending(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if result.TotalPages != 3 {
		t.Fatalf("totalPages = %d, want 3", result.TotalPages)
	}
}

func TestStatistics(t *testing.T) {
	approved := pendingRegistration("reg-approved")
	approved.Status = registration.StatusApproved
	reviewed := reviewClock
	approved.ReviewedAt = &reviewed

	rejected := pendingRegistration("reg-rejected")
	rejected.Status = registration.StatusRejected
	rejectedReviewed := reviewClock.Add(-12 * time.Hour)
	rejected.ReviewedAt = &rejectedReviewed

	pending := pendingRegistration("reg-pending")

	svc := newReviewService(newFakeRegistrationRepo(approved, rejected, pending), &fakeAuditRepo{}, &fakeNotifier{})
	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalRegistrations != 3 || stats.PendingCount != 1 || stats.ApprovedCount != 1 || stats.RejectedCount != 1 {
		t.Fatalf("counts = %+v", stats)
	}
	// approved took 24h, rejected took 12h
	if stats.AverageReviewHours == nil || *stats.AverageReviewHours != 18 {
		t.Fatalf("averageReviewHours = %v", stats.AverageReviewHours)
	}
}

func TestStatisticsNoReviewedRegistrations(t *testing.T) {
	svc := newReviewService(newFakeRegistrationRepo(pendingRegistration("reg-1")), &fakeAuditRepo{}, &fakeNotifier{})
	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.AverageReviewHours != nil {
		t.Fatalf("averageReviewHours = %v, want nil", *stats.AverageReviewHours)
	}
}
