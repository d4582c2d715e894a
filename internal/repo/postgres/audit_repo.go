package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const auditColumns = `
id, registration_id, action, performed_by, timestamp, previous_status,
new_status, details, ip_address, user_agent`

type AuditRepo struct {
	Pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{Pool: pool}
}

func (r *AuditRepo) Append(ctx context.Context, entry registration.AuditLog) (registration.AuditLog, error) {
	if r == nil || r.Pool == nil {
		return registration.AuditLog{}, fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO audit_logs (registration_id, action, performed_by, timestamp,
  previous_status, new_status, details, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	var prev, next *string
	if entry.PreviousStatus != nil {
		v := string(*entry.PreviousStatus)
		prev = &v
	}
	if entry.NewStatus != nil {
		v := string(*entry.NewStatus)
		next = &v
	}
	err := r.Pool.QueryRow(ctx, query,
		entry.RegistrationID,
		string(entry.Action),
		entry.PerformedBy,
		entry.Timestamp,
		prev,
		next,
		entry.Details,
		entry.IPAddress,
		entry.UserAgent,
	).Scan(&entry.ID)
	if err != nil {
		return registration.AuditLog{}, err
	}
	return entry, nil
}

func (r *AuditRepo) ListByRegistration(ctx context.Context, registrationID string) ([]registration.AuditLog, error) {
	if r == nil || r.Pool == nil {
		return nil, fmt.Errorf("db not configured")
	}
	query := `
SELECT ` + auditColumns + `
FROM audit_logs
WHERE registration_id = $1
ORDER BY timestamp DESC, id DESC`
	rows, err := r.Pool.Query(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditRows(rows)
}

func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]registration.AuditLog, error) {
	if r == nil || r.Pool == nil {
		return nil, fmt.Errorf("db not configured")
	}
	query := `
SELECT ` + auditColumns + `
FROM audit_logs
ORDER BY timestamp DESC, id DESC
LIMIT $1`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditRows(rows)
}

func collectAuditRows(rows pgx.Rows) ([]registration.AuditLog, error) {
	var out []registration.AuditLog
	for rows.Next() {
		var entry registration.AuditLog
		var action string
		var prev, next *string
		if err := rows.Scan(
			&entry.ID,
			&entry.RegistrationID,
			&action,
			&entry.PerformedBy,
			&entry.Timestamp,
			&prev,
			&next,
			&entry.Details,
			&entry.IPAddress,
			&entry.UserAgent,
		); err != nil {
			return nil, err
		}
		entry.Action = registration.AuditAction(action)
		if prev != nil {
			v := registration.RegistrationStatus(*prev)
			entry.PreviousStatus = &v
		}
		if next != nil {
			v := registration.RegistrationStatus(*next)
			entry.NewStatus = &v
		}
		out = append(out, entry)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
