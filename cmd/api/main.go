package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/ryanki1/JobStream-Workspace/internal/config"
	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	httpapi "github.com/ryanki1/JobStream-Workspace/internal/http"
	"github.com/ryanki1/JobStream-Workspace/internal/infra/email"
	"github.com/ryanki1/JobStream-Workspace/internal/infra/loginguard"
	"github.com/ryanki1/JobStream-Workspace/internal/infra/mlclient"
	"github.com/ryanki1/JobStream-Workspace/internal/infra/token"
	"github.com/ryanki1/JobStream-Workspace/internal/repo/postgres"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

const resetCleanupInterval = 15 * time.Minute

func main() {
	cfg := config.FromEnv()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	store, err := postgres.NewStore(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}
	defer store.Close()

	registrations := postgres.NewRegistrationRepo(store.Pool)
	verifications := postgres.NewVerificationRepo(store.Pool)
	auditLogs := postgres.NewAuditRepo(store.Pool)
	users := postgres.NewUserRepo(store.Pool)
	resetTokens := postgres.NewResetTokenRepo(store.Pool)

	notifier := newNotifier(cfg, logger)
	assessor := newAssessor(cfg, logger)
	tracker := newTracker(cfg, logger)

	jwtService, err := token.NewJWTService(token.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		logger.Fatal("failed to init jwt service", zap.Error(err))
	}

	audit := usecase.NewAuditRecorder(auditLogs, logger)
	reviews := usecase.NewReviewService(registrations, verifications, audit, notifier, logger)
	verificationSvc := usecase.NewVerificationService(registrations, verifications, audit, assessor, logger)
	resetSvc := usecase.NewResetService(resetTokens, notifier, cfg.ResetURLBase, logger)
	authSvc := usecase.NewAuthService(users, resetSvc, tracker, jwtService, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go resetSvc.RunCleanup(ctx, resetCleanupInterval)

	srv := httpapi.NewServer(cfg, httpapi.ServerDeps{
		Reviews:       reviews,
		Verifications: verificationSvc,
		Audit:         audit,
		Auth:          authSvc,
		Verifier:      jwtService,
		Log:           logger,
	})
	if err := srv.Run(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err == nil {
		cfg.Level = parsed
	}
	return cfg.Build()
}

func newNotifier(cfg config.Config, logger *zap.Logger) usecase.Notifier {
	if cfg.SMTPHost == "" {
		logger.Warn("smtp not configured, outbound mail will only be logged")
		return email.NewMailer(email.NewLogSender(logger))
	}
	sender, err := email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		logger.Fatal("failed to init smtp sender", zap.Error(err))
	}
	return email.NewMailer(sender)
}

func newAssessor(cfg config.Config, logger *zap.Logger) usecase.RiskAssessor {
	if cfg.MLProviderURL == "" {
		logger.Warn("ml provider not configured, risk assessments will be unavailable")
		return unavailableAssessor{}
	}
	client, err := mlclient.New(mlclient.Config{
		BaseURL: cfg.MLProviderURL,
		APIKey:  cfg.MLProviderAPIKey,
	})
	if err != nil {
		logger.Fatal("failed to init ml client", zap.Error(err))
	}
	return client
}

func newTracker(cfg config.Config, logger *zap.Logger) usecase.FailedLoginTracker {
	if cfg.LoginTracker == "redis" {
		tracker, err := loginguard.NewRedisTracker(loginguard.RedisTrackerConfig{
			Addr: cfg.RedisAddr,
			Log:  logger,
		})
		if err != nil {
			logger.Fatal("failed to init redis login tracker", zap.Error(err))
		}
		return tracker
	}
	return loginguard.NewMemoryTracker(loginguard.MemoryTrackerConfig{})
}

// unavailableAssessor stands in when no provider is configured.
type unavailableAssessor struct{}

func (unavailableAssessor) Assess(context.Context, registration.Registration) (registration.RiskAssessment, error) {
	return registration.RiskAssessment{}, &registration.UnavailableError{Reason: "risk assessment provider not configured"}
}
