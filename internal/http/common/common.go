package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

const principalKey = "principal"

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type RegistrationResponse struct {
	ID                 string   `json:"id"`
	CompanyEmail       string   `json:"companyEmail"`
	PrimaryContactName string   `json:"primaryContactName,omitempty"`
	LegalName          string   `json:"legalName,omitempty"`
	RegistrationNumber string   `json:"registrationNumber,omitempty"`
	VATID              string   `json:"vatId,omitempty"`
	Industry           string   `json:"industry,omitempty"`
	CompanySize        string   `json:"companySize,omitempty"`
	Description        string   `json:"description,omitempty"`
	StakeAmount        *float64 `json:"stakeAmount,omitempty"`
	Status             string   `json:"status"`
	EmailVerified      bool     `json:"emailVerified"`
	CreatedAt          string   `json:"createdAt"`
	SubmittedAt        *string  `json:"submittedAt,omitempty"`
	ReviewedAt         *string  `json:"reviewedAt,omitempty"`
	ReviewedBy         *string  `json:"reviewedBy,omitempty"`
	ReviewNotes        *string  `json:"reviewNotes,omitempty"`
}

type VerificationResponse struct {
	ID               string          `json:"id"`
	RegistrationID   string          `json:"registrationId"`
	OverallRiskScore float64         `json:"overallRiskScore"`
	RiskLevel        string          `json:"riskLevel"`
	Confidence       float64         `json:"confidence"`
	WebIntelligence  json.RawMessage `json:"webIntelligence,omitempty"`
	Sentiment        json.RawMessage `json:"sentiment,omitempty"`
	RiskFlags        json.RawMessage `json:"riskFlags,omitempty"`
	Recommendations  json.RawMessage `json:"recommendations,omitempty"`
	VerifiedAt       string          `json:"verifiedAt"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
}

type AuditLogResponse struct {
	ID             string          `json:"id"`
	RegistrationID string          `json:"registrationId"`
	Action         string          `json:"action"`
	PerformedBy    string          `json:"performedBy"`
	Timestamp      string          `json:"timestamp"`
	PreviousStatus *string         `json:"previousStatus,omitempty"`
	NewStatus      *string         `json:"newStatus,omitempty"`
	Details        json.RawMessage `json:"details,omitempty"`
	IPAddress      *string         `json:"ipAddress,omitempty"`
	UserAgent      *string         `json:"userAgent,omitempty"`
}

func SetPrincipal(c *gin.Context, principal registration.Principal) {
	c.Set(principalKey, principal)
}

func PrincipalFromContext(c *gin.Context) (registration.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "principal missing")
		return registration.Principal{}, false
	}
	principal, ok := value.(registration.Principal)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "principal invalid")
		return registration.Principal{}, false
	}
	return principal, true
}

func ParseUUIDParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" is required")
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be a UUID")
		return "", false
	}
	return value, true
}

// Reviewer captures who is acting and from where, for the audit trail.
func Reviewer(c *gin.Context, principal registration.Principal) usecase.Reviewer {
	return usecase.Reviewer{
		Email:     principal.Email,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func ToRegistrationResponse(reg registration.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:                 reg.ID,
		CompanyEmail:       reg.CompanyEmail,
		PrimaryContactName: reg.PrimaryContactName,
		LegalName:          reg.LegalName,
		RegistrationNumber: reg.RegistrationNumber,
		VATID:              reg.VATID,
		Industry:           reg.Industry,
		CompanySize:        reg.CompanySize,
		Description:        reg.Description,
		StakeAmount:        reg.StakeAmount,
		Status:             string(reg.Status),
		EmailVerified:      reg.EmailVerified,
		CreatedAt:          formatTime(reg.CreatedAt),
		SubmittedAt:        formatTimePtr(reg.SubmittedAt),
		ReviewedAt:         formatTimePtr(reg.ReviewedAt),
		ReviewedBy:         reg.ReviewedBy,
		ReviewNotes:        reg.ReviewNotes,
	}
}

func ToVerificationResponse(res registration.VerificationResult) VerificationResponse {
	return VerificationResponse{
		ID:               res.ID,
		RegistrationID:   res.RegistrationID,
		OverallRiskScore: res.OverallRiskScore,
		RiskLevel:        string(res.RiskLevel),
		Confidence:       res.Confidence,
		WebIntelligence:  res.WebIntelligence,
		Sentiment:        res.Sentiment,
		RiskFlags:        res.RiskFlags,
		Recommendations:  res.Recommendations,
		VerifiedAt:       formatTime(res.VerifiedAt),
		ProcessingTimeMs: res.ProcessingTimeMs,
	}
}

func ToAuditLogResponse(entry registration.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:             entry.ID,
		RegistrationID: entry.RegistrationID,
		Action:         string(entry.Action),
		PerformedBy:    entry.PerformedBy,
		Timestamp:      formatTime(entry.Timestamp),
		Details:        entry.Details,
		IPAddress:      entry.IPAddress,
		UserAgent:      entry.UserAgent,
	}
	if entry.PreviousStatus != nil {
		v := string(*entry.PreviousStatus)
		resp.PreviousStatus = &v
	}
	if entry.NewStatus != nil {
		v := string(*entry.NewStatus)
		resp.NewStatus = &v
	}
	return resp
}

// WriteError maps service failures onto the wire. The login ladder and
// provider outage cases carry structured details.
func WriteError(c *gin.Context, err error) {
	var validation *registration.ValidationError
	var state *registration.StateError
	var unavailable *registration.UnavailableError
	var denied *usecase.LoginDenied
	switch {
	case errors.As(err, &denied):
		details := map[string]any{}
		if denied.ResetEmailSent {
			details["resetEmailSent"] = true
		}
		if denied.ShowPasswordReset {
			details["showPasswordReset"] = true
			details["attemptsRemaining"] = denied.AttemptsRemaining
		}
		if len(details) == 0 {
			details = nil
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "INVALID_CREDENTIALS",
			Message: denied.Error(),
			Details: details,
		})
	case errors.As(err, &validation):
		details := map[string]any{}
		if validation.Field != "" {
			details["field"] = validation.Field
		}
		if validation.Field == "password" {
			details["requirements"] = usecase.PasswordRequirements()
		}
		if len(details) == 0 {
			details = nil
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION",
			Message: validation.Reason,
			Details: details,
		})
	case errors.As(err, &state):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_STATE",
			Message: state.Error(),
			Details: map[string]any{"currentStatus": string(state.Current)},
		})
	case errors.As(err, &unavailable):
		retryAfter := int(unavailable.RetryAfter / time.Second)
		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    "SERVICE_UNAVAILABLE",
			Message: unavailable.Error(),
			Details: map[string]any{"retryAfterSeconds": retryAfter},
		})
	case errors.Is(err, registration.ErrInvalidCredentials):
		WriteErrorCode(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, registration.ErrUnauthorized):
		WriteErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication failed")
	case errors.Is(err, registration.ErrForbidden):
		WriteErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, registration.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, registration.ErrEmailTaken):
		WriteErrorCode(c, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
	case errors.Is(err, registration.ErrInvalidToken):
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_TOKEN", "invalid or expired reset token")
	default:
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := formatTime(*t)
	return &formatted
}
