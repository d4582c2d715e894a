package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const userColumns = `
id, email, password_hash, role, is_active, email_verified, created_at,
last_login_at`

type UserRepo struct {
	Pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{Pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user registration.User) (registration.User, error) {
	if r == nil || r.Pool == nil {
		return registration.User{}, fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO users (email, password_hash, role, is_active, email_verified)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns
	row := r.Pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.EmailVerified,
	)
	return scanUser(row)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (registration.User, error) {
	if r == nil || r.Pool == nil {
		return registration.User{}, fmt.Errorf("db not configured")
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return registration.User{}, registration.ErrNotFound
	}
	return user, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (registration.User, error) {
	if r == nil || r.Pool == nil {
		return registration.User{}, fmt.Errorf("db not configured")
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return registration.User{}, registration.ErrNotFound
	}
	return user, err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if r == nil || r.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (registration.User, error) {
	var user registration.User
	var role string
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.LastLoginAt,
	); err != nil {
		return registration.User{}, err
	}
	user.Role = registration.UserRole(role)
	return user, nil
}
