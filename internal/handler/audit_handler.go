package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restau/internal/domain"
	"restau/internal/service"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// Latest handles GET /api/v1/audit/latest
// @Summary Latest audit entries
// @Tags audit
// @Produce json
// @Param limit query int false "Entries to return (1-200)" default(50)
// @Param action query string false "Exact action, e.g. auth.login.failed"
// @Param actor_email query string false "Actor email"
// @Success 200 {object} Response{data=[]domain.AuditLog}
// @Failure 400 {object} ErrorResponseBody "Invalid limit"
// @Failure 403 {object} ErrorResponseBody "Insufficient role"
// @Security BearerAuth
// @Router /audit/latest [get]
func (h *AuditHandler) Latest(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	filter := domain.AuditFilter{
		Action:     c.Query("action"),
		ActorEmail: c.Query("actor_email"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.auditService.Latest(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.auditService.Record(c.Request.Context(), domain.AuditRead, p.Email, "")
	RespondOK(c, entries)
}
