package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/dto"
	"github.com/tockawaffle/jelli-backend/internal/middleware"
)

// auditLogHandler serves the self-scoped audit log listing.
type auditLogHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditLogHandler(as portssvc.AuditSvcFacade) *auditLogHandler {
	return &auditLogHandler{auditService: as}
}

// registerAuditLogRoutes registers the audit log routes.
func registerAuditLogRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditLogHandler(auditService)
	rg.GET("/audit-logs", h.listAuditLogs)
}

// listAuditLogs godoc
// @Summary List own audit logs
// @Description Returns one page of the authenticated user's audit entries plus the total matching-row count. When actionId is given, type and severity filters are ignored.
// @Tags audit
// @Produce json
// @Param limit query int false "Page size (1-100)" default(10)
// @Param offset query int false "Rows to skip" default(0)
// @Param sort query string false "Timestamp order (asc|desc)" default(desc)
// @Param actionId query string false "Exact action filter; suppresses type and severity"
// @Param type query string false "Category filter (authentication|authorization|api|unknown)"
// @Param severity query string false "Severity filter (info|warning|error|severe|unknown)"
// @Success 200 {object} dto.ListAuditLogsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *auditLogHandler) listAuditLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListAuditLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	query := portsrepo.AuditLogQuery{
		SortDesc: req.Sort != "asc",
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	// An action filter implies both category and severity.
	if req.ActionID != "" {
		query.Action = req.ActionID
	} else {
		query.Type = req.Type
		query.Severity = req.Severity
	}

	logs, total, err := h.auditService.ListAuditLogs(c.Request.Context(), userID, query)
	if err != nil {
		logger.Error("Failed to list audit logs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit logs"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAuditLogsResponse(logs, total))
}
