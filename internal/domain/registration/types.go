package registration

import (
	"encoding/json"
	"time"
)

// RegistrationStatus tracks a company application through the
// registration wizard and the admin review queue.
type RegistrationStatus string

const (
	StatusInitiated          RegistrationStatus = "initiated"
	StatusEmailVerified      RegistrationStatus = "email_verified"
	StatusDetailsSubmitted   RegistrationStatus = "details_submitted"
	StatusDocumentsUploaded  RegistrationStatus = "documents_uploaded"
	StatusFinancialSubmitted RegistrationStatus = "financial_submitted"
	StatusPendingReview      RegistrationStatus = "pending_review"
	StatusApproved           RegistrationStatus = "approved"
	StatusRejected           RegistrationStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed.
func (s RegistrationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Registration is one company's application record. Rows are never
// hard-deleted; the audit trail references them indefinitely.
type Registration struct {
	ID                 string
	CompanyEmail       string
	PrimaryContactName string
	LegalName          string
	RegistrationNumber string
	VATID              string
	Industry           string
	CompanySize        string
	Description        string
	StakeAmount        *float64
	Status             RegistrationStatus
	EmailVerified      bool
	VerificationToken  *string
	VerificationExpiry *time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	ExpiresAt          *time.Time
	SubmittedAt        *time.Time
	ReviewedAt         *time.Time
	ReviewedBy         *string
	ReviewNotes        *string
}

// RiskLevel is the categorical output the ML provider derives from the
// numeric score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment is what the external provider returns for one
// assessment call. The orchestrator persists it as a VerificationResult.
type RiskAssessment struct {
	Score           float64
	Level           RiskLevel
	Confidence      float64
	WebIntelligence json.RawMessage
	Sentiment       json.RawMessage
	RiskFlags       json.RawMessage
	Recommendations json.RawMessage
	ProcessingTime  time.Duration
}

// VerificationResult is one immutable risk snapshot for a registration.
// Multiple results may exist; the newest one is the current assessment.
type VerificationResult struct {
	ID               string
	RegistrationID   string
	OverallRiskScore float64
	RiskLevel        RiskLevel
	Confidence       float64
	WebIntelligence  json.RawMessage
	Sentiment        json.RawMessage
	RiskFlags        json.RawMessage
	Recommendations  json.RawMessage
	VerifiedAt       time.Time
	ProcessingTimeMs int64
}

// AuditAction identifies what happened to a registration. Values match
// the action names emitted to clients and stored in audit rows.
type AuditAction string

const (
	ActionRegistrationStarted     AuditAction = "RegistrationStarted"
	ActionEmailVerified           AuditAction = "EmailVerified"
	ActionDetailsSubmitted        AuditAction = "DetailsSubmitted"
	ActionDocumentsUploaded       AuditAction = "DocumentsUploaded"
	ActionFinancialSubmitted      AuditAction = "FinancialSubmitted"
	ActionMLVerificationRequested AuditAction = "MLVerificationRequested"
	ActionMLVerificationCompleted AuditAction = "MLVerificationCompleted"
	ActionAdminReviewStarted      AuditAction = "AdminReviewStarted"
	ActionRegistrationApproved    AuditAction = "RegistrationApproved"
	ActionRegistrationRejected    AuditAction = "RegistrationRejected"
	ActionStakeDeposited          AuditAction = "StakeDeposited"
	ActionStatusChanged           AuditAction = "StatusChanged"
	ActionNotesAdded              AuditAction = "NotesAdded"
	ActionDocumentDeleted         AuditAction = "DocumentDeleted"
	ActionRegistrationUpdated     AuditAction = "RegistrationUpdated"
)

// AuditLog is an append-only event record. A failed insert must never
// fail the action it describes.
type AuditLog struct {
	ID             string
	RegistrationID string
	Action         AuditAction
	PerformedBy    string
	Timestamp      time.Time
	PreviousStatus *RegistrationStatus
	NewStatus      *RegistrationStatus
	Details        json.RawMessage
	IPAddress      *string
	UserAgent      *string
}

// UserRole is the account role carried in session tokens.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleCompany    UserRole = "company"
	RoleFreelancer UserRole = "freelancer"
)

// User is an account that can log in. Companies under review do not have
// one until approval.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          UserRole
	IsActive      bool
	EmailVerified bool
	CreatedAt     time.Time
	LastLoginAt   *time.Time
}

// ResetToken is a single-use password recovery credential.
type ResetToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	RequestIP string
}

// Valid reports whether the token can still be consumed at now.
func (t ResetToken) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// Statistics is the admin dashboard aggregate. AverageReviewHours is nil
// when no reviewed registration has both submission and review timestamps.
type Statistics struct {
	TotalRegistrations int64
	PendingCount       int64
	ApprovedCount      int64
	RejectedCount      int64
	EmailVerifiedCount int64
	AverageReviewHours *float64
}

// Principal is the authenticated caller attached to admin requests.
type Principal struct {
	Subject string
	Email   string
	Role    UserRole
}
