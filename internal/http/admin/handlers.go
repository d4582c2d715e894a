// Package admin serves the registration review API.
package admin

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
	"github.com/ryanki1/JobStream-Workspace/internal/http/common"
	"github.com/ryanki1/JobStream-Workspace/internal/usecase"
)

type Handler struct {
	Reviews       *usecase.ReviewService
	Verifications *usecase.VerificationService
	Audit         *usecase.AuditRecorder
}

type pendingResponse struct {
	Items      []common.RegistrationResponse `json:"items"`
	Page       int                           `json:"page"`
	PageSize   int                           `json:"pageSize"`
	Total      int64                         `json:"total"`
	TotalPages int                           `json:"totalPages"`
}

func NewHandler(reviews *usecase.ReviewService, verifications *usecase.VerificationService, audit *usecase.AuditRecorder) *Handler {
	return &Handler{Reviews: reviews, Verifications: verifications, Audit: audit}
}

func (h *Handler) HandleListPending(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 20)
	result, err := h.Reviews.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	items := make([]common.RegistrationResponse, 0, len(result.Items))
	for _, reg := range result.Items {
		items = append(items, common.ToRegistrationResponse(reg))
	}
	c.JSON(http.StatusOK, pendingResponse{
		Items:      items,
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) HandleGetRegistration(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.Reviews.GetByID(c.Request.Context(), id)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	verifications := make([]common.VerificationResponse, 0, len(view.Verifications))
	for _, res := range view.Verifications {
		verifications = append(verifications, common.ToVerificationResponse(res))
	}
	c.JSON(http.StatusOK, gin.H{
		"registration":    common.ToRegistrationResponse(view.Registration),
		"mlVerifications": verifications,
	})
}

func (h *Handler) HandleVerifyML(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.Verifications.VerifyCompany(c.Request.Context(), id, common.Reviewer(c, principal))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verification": common.ToVerificationResponse(result)})
}

func (h *Handler) HandleApprove(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
			return
		}
	}
	reg, err := h.Reviews.Approve(c.Request.Context(), id, req.Notes, common.Reviewer(c, principal))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": common.ToRegistrationResponse(reg)})
}

func (h *Handler) HandleReject(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	reg, err := h.Reviews.Reject(c.Request.Context(), id, req.Reason, common.Reviewer(c, principal))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": common.ToRegistrationResponse(reg)})
}

func (h *Handler) HandleAuditHistory(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.Reviews.Registrations.GetByID(c.Request.Context(), id); err != nil {
		common.WriteError(c, err)
		return
	}
	entries, err := h.Audit.History(c.Request.Context(), id)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": toAuditResponses(entries)})
}

func (h *Handler) HandleMLHistory(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	results, err := h.Verifications.History(c.Request.Context(), id)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	resp := make([]common.VerificationResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, common.ToVerificationResponse(res))
	}
	c.JSON(http.StatusOK, gin.H{"verifications": resp})
}

func (h *Handler) HandleRecentAudit(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	entries, err := h.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": toAuditResponses(entries)})
}

func (h *Handler) HandleStatistics(c *gin.Context) {
	stats, err := h.Reviews.Statistics(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	var avg *float64
	if stats.AverageReviewHours != nil {
		rounded := math.Round(*stats.AverageReviewHours*100) / 100
		avg = &rounded
	}
	c.JSON(http.StatusOK, gin.H{
		"totalRegistrations": stats.TotalRegistrations,
		"pendingCount":       stats.PendingCount,
		"approvedCount":      stats.ApprovedCount,
		"rejectedCount":      stats.RejectedCount,
		"emailVerifiedCount": stats.EmailVerifiedCount,
		"averageReviewHours": avg,
	})
}

func toAuditResponses(entries []registration.AuditLog) []common.AuditLogResponse {
	out := make([]common.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, common.ToAuditLogResponse(entry))
	}
	return out
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
