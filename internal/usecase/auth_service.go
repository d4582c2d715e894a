package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const (
	bcryptCost = 12

	// autoResetThreshold is the failed-attempt count at which a password
	// reset is triggered for the targeted account.
	autoResetThreshold = 3
)

// LoginDenied is the failure returned for bad credentials. Its fields
// drive the response ladder: attempt 2 adds the reset hint, attempt 3+
// reports that a reset mail went out.
type LoginDenied struct {
	Attempts          int
	AttemptsRemaining int
	ShowPasswordReset bool
	ResetEmailSent    bool
}

func (e *LoginDenied) Error() string { return "invalid email or password" }

func (e *LoginDenied) Unwrap() error { return registration.ErrInvalidCredentials }

type LoginResult struct {
	Token string
	User  registration.User
}

// AuthService implements login with IP-based brute force handling,
// account registration, and the password reset flow.
type AuthService struct {
	Users    UserRepository
	Reset    *ResetService
	Attempts FailedLoginTracker
	Tokens   TokenIssuer
	Log      *zap.Logger
	Clock    func() time.Time
}

func NewAuthService(users UserRepository, reset *ResetService, attempts FailedLoginTracker, tokens TokenIssuer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		Users:    users,
		Reset:    reset,
		Attempts: attempts,
		Tokens:   tokens,
		Log:      log,
		Clock:    time.Now,
	}
}

// Login verifies credentials. A success clears the caller IP's failure
// window; a failure increments it and may auto-trigger a password reset
// for the account (only when it exists and is active).
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, &registration.ValidationError{Reason: "email and password are required"}
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, registration.ErrNotFound) {
		return LoginResult{}, err
	}
	exists := err == nil && user.IsActive

	if !exists {
		// Count the attempt even when the account is unknown so probing
		// an address space still trips the window.
		count := s.recordFailure(ctx, email, ip, nil)
		return LoginResult{}, &LoginDenied{Attempts: count}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		count := s.recordFailure(ctx, email, ip, &user)
		denied := &LoginDenied{Attempts: count}
		switch {
		case count >= autoResetThreshold:
			denied.ResetEmailSent = true
		case count == autoResetThreshold-1:
			denied.ShowPasswordReset = true
			denied.AttemptsRemaining = autoResetThreshold - count
		}
		return LoginResult{}, denied
	}

	s.Attempts.Clear(ip)
	if err := s.Users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.Log.Error("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return LoginResult{}, err
	}
	s.Log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email, ip string, user *registration.User) int {
	count := s.Attempts.RecordFailure(ip)
	s.Log.Warn("failed login attempt",
		zap.Int("attempt", count),
		zap.String("email", email),
		zap.String("ip", ip))

	if count >= autoResetThreshold && user != nil && user.IsActive {
		s.Log.Warn("auto-triggering password reset after repeated failures",
			zap.String("email", email),
			zap.String("ip", ip))
		if _, err := s.Reset.CreateToken(ctx, *user, ip); err != nil {
			s.Log.Error("auto password reset failed", zap.String("email", email), zap.Error(err))
		}
	}
	return count
}

// Register creates an account and signs it in. The default role is
// freelancer.
func (s *AuthService) Register(ctx context.Context, email, password string, role registration.UserRole) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, &registration.ValidationError{Reason: "email and password are required"}
	}
	if err := ValidatePassword(password); err != nil {
		return LoginResult{}, err
	}
	if role == "" {
		role = registration.RoleFreelancer
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return LoginResult{}, registration.ErrEmailTaken
	} else if !errors.Is(err, registration.ErrNotFound) {
		return LoginResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return LoginResult{}, err
	}
	user, err := s.Users.Create(ctx, registration.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		return LoginResult{}, err
	}
	s.Log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return LoginResult{Token: token, User: user}, nil
}

// RequestReset issues a reset token when the account exists and is
// active. It reports success either way so the endpoint cannot be used
// to probe for accounts.
func (s *AuthService) RequestReset(ctx context.Context, email, ip string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return &registration.ValidationError{Field: "email", Reason: "email is required"}
	}
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}
	if _, err := s.Reset.CreateToken(ctx, user, ip); err != nil {
		// Still a uniform success to the caller.
		s.Log.Error("password reset request failed", zap.String("email", email), zap.Error(err))
	}
	return nil
}

// ConfirmReset changes the password and consumes the token. The token is
// marked used immediately after the password write so there is no window
// where both the old token and the new password are live.
func (s *AuthService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return &registration.ValidationError{Reason: "token and new password are required"}
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	stored, err := s.Reset.Validate(ctx, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, stored.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.Reset.MarkUsed(ctx, stored); err != nil {
		return err
	}
	s.Log.Info("password reset completed", zap.String("user_id", stored.UserID))
	return nil
}

func (s *AuthService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}
