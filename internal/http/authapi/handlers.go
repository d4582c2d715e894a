// Package authapi serves login, account registration, and the password
// reset flow.
package authapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/http/common"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

type Handler struct {
	Auth *usecase.AuthService
}

func NewHandler(auth *usecase.AuthService) *Handler {
	return &Handler{Auth: auth}
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

func toUserResponse(user registration.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		Role:          string(user.Role),
		EmailVerified: user.EmailVerified,
	}
}

func (h *Handler) HandleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  toUserResponse(result.User),
	})
}

func (h *Handler) HandleRegister(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	role := registration.UserRole(req.Role)
	if role == registration.RoleAdmin {
		// Admin accounts are provisioned out of band.
		common.WriteErrorCode(c, http.StatusForbidden, "FORBIDDEN", "cannot self-register as admin")
		return
	}
	result, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": result.Token,
		"user":  toUserResponse(result.User),
	})
}

// HandleRequestReset always reports success for well-formed requests so
// the endpoint cannot be used to enumerate accounts.
func (h *Handler) HandleRequestReset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if err := h.Auth.RequestReset(c.Request.Context(), req.Email, c.ClientIP()); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "if the account exists, a reset link has been sent",
	})
}

func (h *Handler) HandleConfirmReset(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if err := h.Auth.ConfirmReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
