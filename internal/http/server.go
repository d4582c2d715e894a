package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ryanki1/JobStream-Workspace/internal/config"
	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/http/admin"
	"github.com/ryanki1/JobStream-Workspace/internal/http/auth"
	"github.com/ryanki1/JobStream-Workspace/internal/http/authapi"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

type Server struct {
	cfg      config.Config
	r        *gin.Engine
	log      *zap.Logger
	verifier auth.Verifier

	reviews       *usecase.ReviewService
	verifications *usecase.VerificationService
	audit         *usecase.AuditRecorder
	authService   *usecase.AuthService
}

type ServerDeps struct {
	Reviews       *usecase.ReviewService
	Verifications *usecase.VerificationService
	Audit         *usecase.AuditRecorder
	Auth          *usecase.AuthService
	Verifier      auth.Verifier
	Log           *zap.Logger
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:           cfg,
		r:             r,
		log:           log,
		verifier:      deps.Verifier,
		reviews:       deps.Reviews,
		verifications: deps.Verifications,
		audit:         deps.Audit,
		authService:   deps.Auth,
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	s.log.Info("jobstream api listening", zap.String("addr", addr))
	return s.r.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	adminHandler := admin.NewHandler(s.reviews, s.verifications, s.audit)
	authHandler := authapi.NewHandler(s.authService)

	api := s.r.Group("/api")
	{
		api.POST("/auth/login", authHandler.HandleLogin)
		api.POST("/auth/register", authHandler.HandleRegister)
		api.POST("/auth/password-reset/request", authHandler.HandleRequestReset)
		api.POST("/auth/password-reset/confirm", authHandler.HandleConfirmReset)

		adminOnly := auth.Middleware(s.verifier, registration.RoleAdmin)
		adminGroup := api.Group("/admin", adminOnly)
		{
			adminGroup.GET("/registrations/pending", adminHandler.HandleListPending)
			adminGroup.GET("/registrations/:id", adminHandler.HandleGetRegistration)
			adminGroup.POST("/registrations/:id/verify-ml", adminHandler.HandleVerifyML)
			adminGroup.POST("/registrations/:id/approve", adminHandler.HandleApprove)
			adminGroup.POST("/registrations/:id/reject", adminHandler.HandleReject)
			adminGroup.GET("/registrations/:id/audit-history", adminHandler.HandleAuditHistory)
			adminGroup.GET("/registrations/:id/ml-history", adminHandler.HandleMLHistory)
			adminGroup.GET("/audit-logs/recent", adminHandler.HandleRecentAudit)
			adminGroup.GET("/statistics", adminHandler.HandleStatistics)
		}
	}
}
