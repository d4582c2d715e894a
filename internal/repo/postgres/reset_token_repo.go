package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const resetTokenColumns = `
id, user_id, token, created_at, expires_at, used, used_at, request_ip`

type ResetTokenRepo struct {
	Pool *pgxpool.Pool
}

func NewResetTokenRepo(pool *pgxpool.Pool) *ResetTokenRepo {
	return &ResetTokenRepo{Pool: pool}
}

func (r *ResetTokenRepo) Insert(ctx context.Context, token registration.ResetToken) (registration.ResetToken, error) {
	if r == nil || r.Pool == nil {
		return registration.ResetToken{}, fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO password_reset_tokens (user_id, token, expires_at, request_ip)
VALUES ($1, $2, $3, $4)
RETURNING ` + resetTokenColumns
	row := r.Pool.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.RequestIP,
	)
	return scanResetToken(row)
}

func (r *ResetTokenRepo) GetByToken(ctx context.Context, token string) (registration.ResetToken, error) {
	if r == nil || r.Pool == nil {
		return registration.ResetToken{}, fmt.Errorf("db not configured")
	}
	query := `SELECT ` + resetTokenColumns + ` FROM password_reset_tokens WHERE token = $1`
	rt, err := scanResetToken(r.Pool.QueryRow(ctx, query, token))
	if err == pgx.ErrNoRows {
		return registration.ResetToken{}, registration.ErrNotFound
	}
	return rt, err
}

func (r *ResetTokenRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	tag, err := r.Pool.Exec(ctx,
		`UPDATE password_reset_tokens SET used = TRUE, used_at = $2 WHERE id = $1 AND NOT used`,
		id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func (r *ResetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if r == nil || r.Pool == nil {
		return 0, fmt.Errorf("db not configured")
	}
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE NOT used AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanResetToken(row pgx.Row) (registration.ResetToken, error) {
	var rt registration.ResetToken
	if err := row.Scan(
		&rt.ID,
		&rt.UserID,
		&rt.Token,
		&rt.CreatedAt,
		&rt.ExpiresAt,
		&rt.Used,
		&rt.UsedAt,
		&rt.RequestIP,
	); err != nil {
		return registration.ResetToken{}, err
	}
	return rt, nil
}
