package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const (
	resetTokenBytes    = 32
	resetTokenLifetime = time.Hour
)

// ResetService issues and consumes single-use password reset tokens.
type ResetService struct {
	Tokens ResetTokenRepository
	Notify Notifier
	Log    *zap.Logger
	Clock  func() time.Time

	// ResetURLBase is the frontend page the emailed link points at; the
	// token is appended as a query parameter.
	ResetURLBase string
}

func NewResetService(tokens ResetTokenRepository, notify Notifier, resetURLBase string, log *zap.Logger) *ResetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResetService{
		Tokens:       tokens,
		Notify:       notify,
		Log:          log,
		Clock:        time.Now,
		ResetURLBase: resetURLBase,
	}
}

// CreateToken mints a token for the user, stores it with a one hour
// expiry, and emails the reset link.
func (s *ResetService) CreateToken(ctx context.Context, user registration.User, requestIP string) (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := s.now()
	if _, err := s.Tokens.Insert(ctx, registration.ResetToken{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(resetTokenLifetime),
		RequestIP: requestIP,
	}); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	if s.Notify != nil {
		resetURL := fmt.Sprintf("%s?token=%s", s.ResetURLBase, token)
		if err := s.Notify.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
			return "", fmt.Errorf("send reset mail: %w", err)
		}
	}

	s.Log.Info("password reset token created",
		zap.String("user_id", user.ID),
		zap.String("request_ip", requestIP))
	return token, nil
}

// Validate looks a token up. Missing, used, and expired all collapse
// into the same ErrInvalidToken so the response does not leak which one
// it was.
func (s *ResetService) Validate(ctx context.Context, token string) (registration.ResetToken, error) {
	stored, err := s.Tokens.GetByToken(ctx, token)
	if err != nil {
		if err == registration.ErrNotFound {
			return registration.ResetToken{}, registration.ErrInvalidToken
		}
		return registration.ResetToken{}, err
	}
	if !stored.Valid(s.now()) {
		return registration.ResetToken{}, registration.ErrInvalidToken
	}
	return stored, nil
}

// MarkUsed consumes the token. Called exactly once, immediately after
// the password change it authorized.
func (s *ResetService) MarkUsed(ctx context.Context, token registration.ResetToken) error {
	return s.Tokens.MarkUsed(ctx, token.ID, s.now())
}

// CleanupExpired removes expired unused tokens. Safe to run alongside
// validation since it only touches rows that already fail Valid.
func (s *ResetService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.Tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.Log.Info("expired reset tokens purged", zap.Int64("count", removed))
	}
	return removed, nil
}

// RunCleanup sweeps expired tokens on the given interval until the
// context is cancelled.
func (s *ResetService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanupExpired(ctx); err != nil {
				s.Log.Error("reset token cleanup failed", zap.Error(err))
			}
		}
	}
}

func (s *ResetService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}
