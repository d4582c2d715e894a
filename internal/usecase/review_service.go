package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const minRejectReasonLen = 10

// Reviewer identifies the admin performing a review action.
type Reviewer struct {
	Email     string
	IPAddress string
	UserAgent string
}

type RegistrationView struct {
	Registration  registration.Registration
	Verifications []registration.VerificationResult
}

type PendingPage struct {
	Items      []registration.Registration
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// ReviewService owns the registration state machine. The terminal
// transition is persisted first; audit rows and the outbound mail are
// fired afterwards and their failures are logged, never propagated.
type ReviewService struct {
	Registrations RegistrationRepository
	Verifications VerificationRepository
	Audit         *AuditRecorder
	Notify        Notifier
	Log           *zap.Logger
	Clock         func() time.Time
}

func NewReviewService(registrations RegistrationRepository, verifications VerificationRepository, audit *AuditRecorder, notify Notifier, log *zap.Logger) *ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{
		Registrations: registrations,
		Verifications: verifications,
		Audit:         audit,
		Notify:        notify,
		Log:           log,
		Clock:         time.Now,
	}
}

// Approve moves a pending_review registration to approved. Notes are
// optional.
func (s *ReviewService) Approve(ctx context.Context, id, notes string, reviewer Reviewer) (registration.Registration, error) {
	return s.complete(ctx, id, registration.StatusApproved, strings.TrimSpace(notes), reviewer)
}

// Reject moves a pending_review registration to rejected. The reason is
// required and validated before the record is even loaded.
func (s *ReviewService) Reject(ctx context.Context, id, reason string, reviewer Reviewer) (registration.Registration, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return registration.Registration{}, &registration.ValidationError{Field: "reason", Reason: "rejection reason is required"}
	}
	if len(reason) < minRejectReasonLen {
		return registration.Registration{}, &registration.ValidationError{Field: "reason", Reason: "rejection reason must be at least 10 characters"}
	}
	return s.complete(ctx, id, registration.StatusRejected, reason, reviewer)
}

func (s *ReviewService) complete(ctx context.Context, id string, target registration.RegistrationStatus, notes string, reviewer Reviewer) (registration.Registration, error) {
	reg, err := s.Registrations.GetByID(ctx, id)
	if err != nil {
		return registration.Registration{}, err
	}
	if reg.Status != registration.StatusPendingReview {
		return registration.Registration{}, &registration.StateError{Current: reg.Status}
	}
	previous := reg.Status

	updated, ok, err := s.Registrations.CompleteReview(ctx, id, ReviewDecision{
		Status:     target,
		ReviewedBy: reviewer.Email,
		Notes:      notes,
		ReviewedAt: s.now(),
	})
	if err != nil {
		return registration.Registration{}, err
	}
	if !ok {
		// Lost the race against a concurrent review; report whatever the
		// row says now.
		current, err := s.Registrations.GetByID(ctx, id)
		if err != nil {
			return registration.Registration{}, err
		}
		return registration.Registration{}, &registration.StateError{Current: current.Status}
	}

	meta := ActionMeta{IPAddress: reviewer.IPAddress, UserAgent: reviewer.UserAgent}
	action := registration.ActionRegistrationApproved
	decisionKey := "notes"
	if target == registration.StatusRejected {
		action = registration.ActionRegistrationRejected
		decisionKey = "reason"
	}
	s.Audit.LogAction(ctx, id, action, reviewer.Email, map[string]string{
		"companyName":  updated.LegalName,
		"companyEmail": updated.CompanyEmail,
		decisionKey:    notes,
	}, meta)
	s.Audit.LogStatusChange(ctx, id, previous, target, reviewer.Email, meta)

	s.Log.Info("registration reviewed",
		zap.String("registration_id", id),
		zap.String("status", string(target)),
		zap.String("reviewed_by", reviewer.Email))

	s.sendDecisionMail(ctx, updated, target, notes)
	return updated, nil
}

// sendDecisionMail is best effort. The decision is already committed, so
// a mail failure only makes it into the process log.
func (s *ReviewService) sendDecisionMail(ctx context.Context, reg registration.Registration, target registration.RegistrationStatus, notes string) {
	if s.Notify == nil {
		return
	}
	company := reg.LegalName
	if company == "" {
		company = "Unknown Company"
	}
	var err error
	if target == registration.StatusApproved {
		err = s.Notify.SendApproval(ctx, reg.CompanyEmail, company, notes)
	} else {
		err = s.Notify.SendRejection(ctx, reg.CompanyEmail, company, notes)
	}
	if err != nil {
		s.Log.Error("decision mail failed",
			zap.String("registration_id", reg.ID),
			zap.String("to", reg.CompanyEmail),
			zap.String("status", string(target)),
			zap.Error(err))
		return
	}
	s.Log.Info("decision mail sent",
		zap.String("registration_id", reg.ID),
		zap.String("to", reg.CompanyEmail))
}

// GetByID returns the registration plus its risk assessments, newest
// first.
func (s *ReviewService) GetByID(ctx context.Context, id string) (RegistrationView, error) {
	reg, err := s.Registrations.GetByID(ctx, id)
	if err != nil {
		return RegistrationView{}, err
	}
	results, err := s.Verifications.ListByRegistration(ctx, id)
	if err != nil {
		return RegistrationView{}, err
	}
	return RegistrationView{Registration: reg, Verifications: results}, nil
}

// ListPending pages through the review queue, oldest first. Page is
// clamped to >= 1, pageSize to [1,100] with a default of 20.
func (s *ReviewService) ListPending(ctx context.Context, page, pageSize int) (PendingPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	items, total, err := s.Registrations.ListByStatus(ctx, registration.StatusPendingReview, (page-1)*pageSize, pageSize)
	if err != nil {
		return PendingPage{}, err
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PendingPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Statistics derives the dashboard aggregates. Read-only.
func (s *ReviewService) Statistics(ctx context.Context) (registration.Statistics, error) {
	var stats registration.Statistics
	var err error
	if stats.TotalRegistrations, err = s.Registrations.Count(ctx); err != nil {
		return registration.Statistics{}, err
	}
	counts := []struct {
		status registration.RegistrationStatus
		dest   *int64
	}{
		{registration.StatusPendingReview, &stats.PendingCount},
		{registration.StatusApproved, &stats.ApprovedCount},
		{registration.StatusRejected, &stats.RejectedCount},
		{registration.StatusEmailVerified, &stats.EmailVerifiedCount},
	}
	for _, c := range counts {
		if *c.dest, err = s.Registrations.CountByStatus(ctx, c.status); err != nil {
			return registration.Statistics{}, err
		}
	}
	if stats.AverageReviewHours, err = s.Registrations.AverageReviewHours(ctx); err != nil {
		return registration.Statistics{}, err
	}
	return stats, nil
}

func (s *ReviewService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}
