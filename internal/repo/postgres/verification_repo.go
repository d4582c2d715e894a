package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const verificationColumns = `
id, registration_id, overall_risk_score, risk_level, confidence,
web_intelligence, sentiment, risk_flags, recommendations, verified_at,
processing_time_ms`

type VerificationRepo struct {
	Pool *pgxpool.Pool
}

func NewVerificationRepo(pool *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{Pool: pool}
}

func (r *VerificationRepo) Insert(ctx context.Context, result registration.VerificationResult) (registration.VerificationResult, error) {
	if r == nil || r.Pool == nil {
		return registration.VerificationResult{}, fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO ml_verification_results (
  registration_id, overall_risk_score, risk_level, confidence,
  web_intelligence, sentiment, risk_flags, recommendations, verified_at,
  processing_time_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err := r.Pool.QueryRow(ctx, query,
		result.RegistrationID,
		result.OverallRiskScore,
		string(result.RiskLevel),
		result.Confidence,
		result.WebIntelligence,
		result.Sentiment,
		result.RiskFlags,
		result.Recommendations,
		result.VerifiedAt,
		result.ProcessingTimeMs,
	).Scan(&result.ID)
	if err != nil {
		return registration.VerificationResult{}, err
	}
	return result, nil
}

func (r *VerificationRepo) ListByRegistration(ctx context.Context, registrationID string) ([]registration.VerificationResult, error) {
	if r == nil || r.Pool == nil {
		return nil, fmt.Errorf("db not configured")
	}
	query := `
SELECT ` + verificationColumns + `
FROM ml_verification_results
WHERE registration_id = $1
ORDER BY verified_at DESC, id DESC`
	rows, err := r.Pool.Query(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []registration.VerificationResult
	for rows.Next() {
		var res registration.VerificationResult
		var level string
		if err := rows.Scan(
			&res.ID,
			&res.RegistrationID,
			&res.OverallRiskScore,
			&level,
			&res.Confidence,
			&res.WebIntelligence,
			&res.Sentiment,
			&res.RiskFlags,
			&res.Recommendations,
			&res.VerifiedAt,
			&res.ProcessingTimeMs,
		); err != nil {
			return nil, err
		}
		res.RiskLevel = registration.RiskLevel(level)
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
