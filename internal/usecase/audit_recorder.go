package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

// ActionMeta carries request attribution for audit rows. Zero values
// mean the field is unknown and is stored as NULL.
type ActionMeta struct {
	IPAddress string
	UserAgent string
}

// AuditRecorder appends audit rows for registration actions. LogAction
// and LogStatusChange never report failure to the caller: a lost audit
// row must not fail or roll back the action it describes, so failures
// only reach the process log.
type AuditRecorder struct {
	Repo  AuditLogRepository
	Log   *zap.Logger
	Clock func() time.Time
}

func NewAuditRecorder(repo AuditLogRepository, log *zap.Logger) *AuditRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditRecorder{Repo: repo, Log: log, Clock: time.Now}
}

func (r *AuditRecorder) LogAction(ctx context.Context, registrationID string, action registration.AuditAction, performedBy string, details any, meta ActionMeta) {
	entry := registration.AuditLog{
		RegistrationID: registrationID,
		Action:         action,
		PerformedBy:    performedBy,
		Timestamp:      r.now(),
		IPAddress:      optional(meta.IPAddress),
		UserAgent:      optional(meta.UserAgent),
	}
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			r.Log.Error("audit details not serializable",
				zap.String("registration_id", registrationID),
				zap.String("action", string(action)),
				zap.Error(err))
		} else {
			entry.Details = payload
		}
	}
	r.append(ctx, entry)
}

func (r *AuditRecorder) LogStatusChange(ctx context.Context, registrationID string, from, to registration.RegistrationStatus, performedBy string, meta ActionMeta) {
	details, _ := json.Marshal(map[string]string{
		"from": string(from),
		"to":   string(to),
	})
	entry := registration.AuditLog{
		RegistrationID: registrationID,
		Action:         registration.ActionStatusChanged,
		PerformedBy:    performedBy,
		Timestamp:      r.now(),
		PreviousStatus: &from,
		NewStatus:      &to,
		Details:        details,
		IPAddress:      optional(meta.IPAddress),
		UserAgent:      optional(meta.UserAgent),
	}
	r.append(ctx, entry)
}

// History returns all entries for a registration, newest first.
func (r *AuditRecorder) History(ctx context.Context, registrationID string) ([]registration.AuditLog, error) {
	return r.Repo.ListByRegistration(ctx, registrationID)
}

// Recent returns the latest entries across all registrations.
func (r *AuditRecorder) Recent(ctx context.Context, limit int) ([]registration.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.Repo.Recent(ctx, limit)
}

func (r *AuditRecorder) append(ctx context.Context, entry registration.AuditLog) {
	if _, err := r.Repo.Append(ctx, entry); err != nil {
		r.Log.Error("audit append failed",
			zap.String("registration_id", entry.RegistrationID),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
		return
	}
	r.Log.Info("audit entry recorded",
		zap.String("registration_id", entry.RegistrationID),
		zap.String("action", string(entry.Action)),
		zap.String("performed_by", entry.PerformedBy))
}

func (r *AuditRecorder) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock().UTC()
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
