package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

const registrationColumns = `
id, company_email, primary_contact_name, legal_name, registration_number,
vat_id, industry, company_size, description, stake_amount, status,
email_verified, verification_token, verification_expiry, created_at,
updated_at, expires_at, submitted_at, reviewed_at, reviewed_by, review_notes`

type RegistrationRepo struct {
	Pool *pgxpool.Pool
}

func NewRegistrationRepo(pool *pgxpool.Pool) *RegistrationRepo {
	return &RegistrationRepo{Pool: pool}
}

// Create inserts a fresh application. The review endpoints never call
// this; it serves the registration wizard and test seeding.
func (r *RegistrationRepo) Create(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	if r == nil || r.Pool == nil {
		return registration.Registration{}, fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO company_registrations (
  company_email, primary_contact_name, legal_name, registration_number,
  vat_id, industry, company_size, description, stake_amount, status,
  email_verified, verification_token, verification_expiry, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + registrationColumns
	row := r.Pool.QueryRow(ctx, query,
		reg.CompanyEmail,
		reg.PrimaryContactName,
		reg.LegalName,
		reg.RegistrationNumber,
		reg.VATID,
		reg.Industry,
		reg.CompanySize,
		reg.Description,
		reg.StakeAmount,
		string(reg.Status),
		reg.EmailVerified,
		reg.VerificationToken,
		reg.VerificationExpiry,
		reg.SubmittedAt,
	)
	return scanRegistration(row)
}

func (r *RegistrationRepo) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	if r == nil || r.Pool == nil {
		return registration.Registration{}, fmt.Errorf("db not configured")
	}
	query := `SELECT ` + registrationColumns + ` FROM company_registrations WHERE id = $1`
	reg, err := scanRegistration(r.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, err
}

func (r *RegistrationRepo) ListByStatus(ctx context.Context, status registration.RegistrationStatus, offset, limit int) ([]registration.Registration, int64, error) {
	if r == nil || r.Pool == nil {
		return nil, 0, fmt.Errorf("db not configured")
	}
	var total int64
	countQuery := `SELECT COUNT(*) FROM company_registrations WHERE status = $1`
	if err := r.Pool.QueryRow(ctx, countQuery, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
SELECT ` + registrationColumns + `
FROM company_registrations
WHERE status = $1
ORDER BY created_at ASC
OFFSET $2 LIMIT $3`
	rows, err := r.Pool.Query(ctx, query, string(status), offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []registration.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, reg)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return out, total, nil
}

func (r *RegistrationRepo) CompleteReview(ctx context.Context, id string, decision usecase.ReviewDecision) (registration.Registration, bool, error) {
	if r == nil || r.Pool == nil {
		return registration.Registration{}, false, fmt.Errorf("db not configured")
	}
	query := `
UPDATE company_registrations
SET status = $2,
    reviewed_at = $3,
    reviewed_by = $4,
    review_notes = NULLIF($5, ''),
    updated_at = $3
WHERE id = $1 AND status = $6
RETURNING ` + registrationColumns
	row := r.Pool.QueryRow(ctx, query,
		id,
		string(decision.Status),
		decision.ReviewedAt,
		decision.ReviewedBy,
		decision.Notes,
		string(registration.StatusPendingReview),
	)
	reg, err := scanRegistration(row)
	if err == pgx.ErrNoRows {
		return registration.Registration{}, false, nil
	}
	if err != nil {
		return registration.Registration{}, false, err
	}
	return reg, true, nil
}

func (r *RegistrationRepo) Count(ctx context.Context) (int64, error) {
	if r == nil || r.Pool == nil {
		return 0, fmt.Errorf("db not configured")
	}
	var total int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM company_registrations`).Scan(&total)
	return total, err
}

func (r *RegistrationRepo) CountByStatus(ctx context.Context, status registration.RegistrationStatus) (int64, error) {
	if r == nil || r.Pool == nil {
		return 0, fmt.Errorf("db not configured")
	}
	var total int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM company_registrations WHERE status = $1`, string(status)).Scan(&total)
	return total, err
}

func (r *RegistrationRepo) AverageReviewHours(ctx context.Context) (*float64, error) {
	if r == nil || r.Pool == nil {
		return nil, fmt.Errorf("db not configured")
	}
	query := `
SELECT AVG(EXTRACT(EPOCH FROM (reviewed_at - submitted_at)) / 3600.0)
FROM company_registrations
WHERE status IN ($1, $2)
  AND submitted_at IS NOT NULL
  AND reviewed_at IS NOT NULL`
	var avg *float64
	err := r.Pool.QueryRow(ctx, query,
		string(registration.StatusApproved),
		string(registration.StatusRejected),
	).Scan(&avg)
	if err != nil {
		return nil, err
	}
	return avg, nil
}

func scanRegistration(row pgx.Row) (registration.Registration, error) {
	var reg registration.Registration
	var status string
	if err := row.Scan(
		&reg.ID,
		&reg.CompanyEmail,
		&reg.PrimaryContactName,
		&reg.LegalName,
		&reg.RegistrationNumber,
		&reg.VATID,
		&reg.Industry,
		&reg.CompanySize,
		&reg.Description,
		&reg.StakeAmount,
		&status,
		&reg.EmailVerified,
		&reg.VerificationToken,
		&reg.VerificationExpiry,
		&reg.CreatedAt,
		&reg.UpdatedAt,
		&reg.ExpiresAt,
		&reg.SubmittedAt,
		&reg.ReviewedAt,
		&reg.ReviewedBy,
		&reg.ReviewNotes,
	); err != nil {
		return registration.Registration{}, err
	}
	reg.Status = registration.RegistrationStatus(status)
	return reg, nil
}
