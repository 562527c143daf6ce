package dto

import (
	"time"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
)

// OperationResponse is one provenance entry of a clock record.
type OperationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// AttendanceResponse defines the data returned for a clock record.
type AttendanceResponse struct {
	AttendanceID     string              `json:"attendanceID"`
	UserID           string              `json:"userID"`
	OrgID            string              `json:"orgID"`
	Date             time.Time           `json:"date"`
	Status           string              `json:"status"`
	ClockIn          *time.Time          `json:"clockIn,omitempty"`
	LunchBreakOut    *time.Time          `json:"lunchBreakOut,omitempty"`
	LunchBreakReturn *time.Time          `json:"lunchBreakReturn,omitempty"`
	ClockOut         *time.Time          `json:"clockOut,omitempty"`
	Operations       []OperationResponse `json:"operation"`
	TimesUpdated     int                 `json:"timesUpdated"`
}

// ToAttendanceResponse converts a domain.Attendance to AttendanceResponse.
func ToAttendanceResponse(a *domain.Attendance) AttendanceResponse {
	ops := make([]OperationResponse, len(a.Operations))
	for i, op := range a.Operations {
		ops[i] = OperationResponse{
			ID:        op.ID,
			Type:      string(op.Type),
			CreatedAt: op.CreatedAt,
		}
	}
	return AttendanceResponse{
		AttendanceID:     a.AttendanceID,
		UserID:           a.UserID,
		OrgID:            a.OrgID,
		Date:             a.Date,
		Status:           string(a.Status),
		ClockIn:          a.ClockIn,
		LunchBreakOut:    a.LunchBreakOut,
		LunchBreakReturn: a.LunchBreakReturn,
		ClockOut:         a.ClockOut,
		Operations:       ops,
		TimesUpdated:     a.TimesUpdated,
	}
}

// SummaryRangeRequest bounds a summary query. Dates are "YYYY-MM-DD" in the
// organization's timezone, both inclusive; an empty range means the last 7 days.
type SummaryRangeRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// DailySummary is one derived per-day reporting row.
type DailySummary struct {
	Date         string `json:"date"`
	Status       string `json:"status"`
	WorkSeconds  int64  `json:"workSeconds"`
	BreakSeconds int64  `json:"breakSeconds"`
	WorkHours    string `json:"workHours"`
	BreakHours   string `json:"breakHours"`
	WasLate      bool   `json:"wasLate"`
	EarlyOut     bool   `json:"earlyOut"`
}

// AttendanceSummaryResponse aggregates daily rows over the requested range.
type AttendanceSummaryResponse struct {
	Days              []DailySummary `json:"days"`
	TotalWorkSeconds  int64          `json:"totalWorkSeconds"`
	TotalBreakSeconds int64          `json:"totalBreakSeconds"`
	TotalWorkHours    string         `json:"totalWorkHours"`
}
