package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

// circuitRetryAfter is the backoff suggested to callers while the
// provider's breaker resets.
const circuitRetryAfter = 30 * time.Second

// VerificationService runs on-demand risk assessments against the
// external ML provider and keeps the immutable result history.
type VerificationService struct {
	Registrations RegistrationRepository
	Verifications VerificationRepository
	Audit         *AuditRecorder
	Assessor      RiskAssessor
	Log           *zap.Logger
	Clock         func() time.Time
}

func NewVerificationService(registrations RegistrationRepository, verifications VerificationRepository, audit *AuditRecorder, assessor RiskAssessor, log *zap.Logger) *VerificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationService{
		Registrations: registrations,
		Verifications: verifications,
		Audit:         audit,
		Assessor:      assessor,
		Log:           log,
		Clock:         time.Now,
	}
}

// VerifyCompany assesses a pending_review registration. Nothing is
// persisted when the provider call fails; the "requested" audit entry is
// still recorded so operators can see the attempt.
func (s *VerificationService) VerifyCompany(ctx context.Context, id string, reviewer Reviewer) (registration.VerificationResult, error) {
	reg, err := s.Registrations.GetByID(ctx, id)
	if err != nil {
		return registration.VerificationResult{}, err
	}
	if reg.Status != registration.StatusPendingReview {
		return registration.VerificationResult{}, &registration.StateError{Current: reg.Status}
	}

	meta := ActionMeta{IPAddress: reviewer.IPAddress, UserAgent: reviewer.UserAgent}
	s.Audit.LogAction(ctx, id, registration.ActionMLVerificationRequested, reviewer.Email, map[string]string{
		"companyName": reg.LegalName,
	}, meta)

	assessment, err := s.Assessor.Assess(ctx, reg)
	if err != nil {
		return registration.VerificationResult{}, s.mapProviderError(id, err)
	}

	result, err := s.Verifications.Insert(ctx, registration.VerificationResult{
		RegistrationID:   id,
		OverallRiskScore: assessment.Score,
		RiskLevel:        assessment.Level,
		Confidence:       assessment.Confidence,
		WebIntelligence:  assessment.WebIntelligence,
		Sentiment:        assessment.Sentiment,
		RiskFlags:        assessment.RiskFlags,
		Recommendations:  assessment.Recommendations,
		VerifiedAt:       s.now(),
		ProcessingTimeMs: assessment.ProcessingTime.Milliseconds(),
	})
	if err != nil {
		return registration.VerificationResult{}, err
	}

	s.Audit.LogAction(ctx, id, registration.ActionMLVerificationCompleted, "System", map[string]any{
		"riskLevel":  result.RiskLevel,
		"riskScore":  result.OverallRiskScore,
		"confidence": result.Confidence,
	}, ActionMeta{})

	s.Log.Info("risk assessment completed",
		zap.String("registration_id", id),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Float64("risk_score", result.OverallRiskScore))
	return result, nil
}

// History returns all assessments for a registration, newest first.
// Fails with ErrNotFound when the registration does not exist.
func (s *VerificationService) History(ctx context.Context, id string) ([]registration.VerificationResult, error) {
	if _, err := s.Registrations.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.Verifications.ListByRegistration(ctx, id)
}

// mapProviderError keeps the three caller-visible classes apart: circuit
// open (retry after a cooldown), provider outage (retry later), and
// everything else (internal).
func (s *VerificationService) mapProviderError(id string, err error) error {
	switch {
	case errors.Is(err, registration.ErrCircuitOpen):
		s.Log.Warn("risk provider circuit open", zap.String("registration_id", id))
		return &registration.UnavailableError{
			Reason:     "risk assessment service temporarily unavailable, the circuit breaker will reset automatically",
			RetryAfter: circuitRetryAfter,
		}
	default:
		var unavailable *registration.UnavailableError
		if errors.As(err, &unavailable) {
			s.Log.Error("risk provider unavailable", zap.String("registration_id", id), zap.Error(err))
			return unavailable
		}
		s.Log.Error("risk assessment failed", zap.String("registration_id", id), zap.Error(err))
		return fmt.Errorf("risk assessment: %w", registration.ErrInternal)
	}
}

func (s *VerificationService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}
