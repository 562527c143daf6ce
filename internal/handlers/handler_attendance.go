package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/dto"
	"github.com/tockawaffle/jelli-backend/internal/middleware"
)

// attendanceHandler handles HTTP requests for the daily clock state machine.
type attendanceHandler struct {
	attendanceService portssvc.AttendanceSvcFacade
	reportingService  portssvc.ReportingSvcFacade
}

// newAttendanceHandler creates a new attendanceHandler.
func newAttendanceHandler(as portssvc.AttendanceSvcFacade, rs portssvc.ReportingSvcFacade) *attendanceHandler {
	return &attendanceHandler{
		attendanceService: as,
		reportingService:  rs,
	}
}

// registerAttendanceRoutes registers all attendance-related routes.
func registerAttendanceRoutes(rg *gin.RouterGroup, as portssvc.AttendanceSvcFacade, rs portssvc.ReportingSvcFacade) {
	h := newAttendanceHandler(as, rs)

	attendance := rg.Group("/attendance")
	{
		attendance.POST("/clock-in", h.transition(domain.TransitionClockIn))
		attendance.POST("/lunch-start", h.transition(domain.TransitionLunchStart))
		attendance.POST("/lunch-end", h.transition(domain.TransitionLunchEnd))
		attendance.POST("/clock-out", h.transition(domain.TransitionClockOut))
		attendance.GET("/today", h.getToday)
		attendance.GET("/summary", h.getSummary)
	}
}

// sessionScope extracts the authenticated user and active organization from
// the request context. A session without an active organization cannot use
// the attendance endpoints.
func sessionScope(c *gin.Context) (string, string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	orgID, ok := middleware.GetOrgIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active organization on session", "code": "NO_ACTIVE_ORG"})
		return "", "", false
	}
	return userID, orgID, true
}

// transition godoc
// @Summary Apply a clock transition
// @Description Applies one of clock-in, lunch-start, lunch-end or clock-out for the authenticated user in their active organization. Policy violations return a stable machine-readable code alongside the message.
// @Tags attendance
// @Accept json
// @Produce json
// @Success 200 {object} dto.AttendanceResponse
// @Failure 400 {object} map[string]string "State or policy violation, carries a code field"
// @Failure 401 {object} map[string]string "No session or not a member"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 409 {object} map[string]string "Concurrent transition lost the race"
// @Security BearerAuth
// @Router /attendance/{transition} [post]
func (h *attendanceHandler) transition(t domain.ClockTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, orgID, ok := sessionScope(c)
		if !ok {
			return
		}

		provenance := domain.ClassifyProvenance(c.Request.UserAgent())
		record, err := h.attendanceService.ClockTransition(c.Request.Context(), userID, orgID, t, provenance)
		if err != nil {
			respondAttendanceError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToAttendanceResponse(record))
	}
}

// getToday godoc
// @Summary Get today's clock record
// @Description Returns the authenticated user's record for the current organization-local day.
// @Tags attendance
// @Produce json
// @Success 200 {object} dto.AttendanceResponse
// @Failure 404 {object} map[string]string "No record yet today"
// @Security BearerAuth
// @Router /attendance/today [get]
func (h *attendanceHandler) getToday(c *gin.Context) {
	userID, orgID, ok := sessionScope(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.GetToday(c.Request.Context(), userID, orgID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No attendance record for today"})
			return
		}
		respondAttendanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAttendanceResponse(record))
}

// getSummary godoc
// @Summary Summarize worked and break time
// @Description Aggregates per-day worked/break time over a date range in the organization's timezone. Defaults to the last 7 days.
// @Tags attendance
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param to query string false "End date (YYYY-MM-DD, inclusive)"
// @Success 200 {object} dto.AttendanceSummaryResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Security BearerAuth
// @Router /attendance/summary [get]
func (h *attendanceHandler) getSummary(c *gin.Context) {
	userID, orgID, ok := sessionScope(c)
	if !ok {
		return
	}

	var req dto.SummaryRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	summary, err := h.reportingService.Summary(c.Request.Context(), userID, orgID, req.From, req.To)
	if err != nil {
		respondAttendanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// respondAttendanceError maps service errors onto the attendance error
// taxonomy. Clock policy violations carry their stable code so clients can
// branch without parsing text.
func respondAttendanceError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var clockErr *apperrors.ClockError
	if errors.As(err, &clockErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": clockErr.Message, "code": clockErr.Code})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not a member of the organization"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "A concurrent transition already updated this record"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Attendance request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
