package usecase

import (
	"context"
	"time"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

// ReviewDecision is the single-row terminal update applied by
// Approve/Reject. The repository guards it on status = pending_review.
type ReviewDecision struct {
	Status     registration.RegistrationStatus
	ReviewedBy string
	Notes      string
	ReviewedAt time.Time
}

type RegistrationRepository interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
	// ListByStatus returns one page ordered by creation time ascending
	// plus the total match count.
	ListByStatus(ctx context.Context, status registration.RegistrationStatus, offset, limit int) ([]registration.Registration, int64, error)
	// CompleteReview applies decision iff the row is still pending_review.
	// The bool reports whether the update happened.
	CompleteReview(ctx context.Context, id string, decision ReviewDecision) (registration.Registration, bool, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status registration.RegistrationStatus) (int64, error)
	// AverageReviewHours averages reviewed_at - submitted_at over
	// approved and rejected rows that have both timestamps. Nil when
	// no such row exists.
	AverageReviewHours(ctx context.Context) (*float64, error)
}

type VerificationRepository interface {
	Insert(ctx context.Context, result registration.VerificationResult) (registration.VerificationResult, error)
	// ListByRegistration returns results newest-first.
	ListByRegistration(ctx context.Context, registrationID string) ([]registration.VerificationResult, error)
}

type AuditLogRepository interface {
	Append(ctx context.Context, entry registration.AuditLog) (registration.AuditLog, error)
	// ListByRegistration returns entries newest-first.
	ListByRegistration(ctx context.Context, registrationID string) ([]registration.AuditLog, error)
	Recent(ctx context.Context, limit int) ([]registration.AuditLog, error)
}

type UserRepository interface {
	Create(ctx context.Context, user registration.User) (registration.User, error)
	GetByID(ctx context.Context, id string) (registration.User, error)
	GetByEmail(ctx context.Context, email string) (registration.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type ResetTokenRepository interface {
	Insert(ctx context.Context, token registration.ResetToken) (registration.ResetToken, error)
	GetByToken(ctx context.Context, token string) (registration.ResetToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	// DeleteExpired removes unused tokens whose expiry is before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Notifier is the outbound mail capability. Implementations own subject
// and body formatting; the core only decides when to send.
type Notifier interface {
	SendApproval(ctx context.Context, to, companyName, notes string) error
	SendRejection(ctx context.Context, to, companyName, reason string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// RiskAssessor is the external ML provider. Assess may fail with
// registration.ErrCircuitOpen when the provider's breaker is open, or
// with *registration.UnavailableError for other provider-side outages.
type RiskAssessor interface {
	Assess(ctx context.Context, reg registration.Registration) (registration.RiskAssessment, error)
}

// FailedLoginTracker counts failed credential attempts per source IP
// over a sliding window.
type FailedLoginTracker interface {
	RecordFailure(ip string) int
	Count(ip string) int
	Clear(ip string)
}

// TokenIssuer mints signed session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user registration.User) (string, error)
}
