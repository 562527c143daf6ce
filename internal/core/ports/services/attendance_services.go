package services

import (
	"context"
	"time"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	"github.com/tockawaffle/jelli-backend/internal/dto"
)

// AttendanceClockSvc drives the daily clock state machine.
type AttendanceClockSvc interface {
	// ClockTransition validates and applies one transition for the user in
	// the organization, recording the capture provenance. Policy violations
	// surface as *apperrors.ClockError with a stable code.
	ClockTransition(ctx context.Context, userID, orgID string, transition domain.ClockTransition, provenance domain.OperationType) (*domain.Attendance, error)
}

// AttendanceReaderSvc exposes read access to clock records.
type AttendanceReaderSvc interface {
	// GetToday returns the record for the current organization-local day, or
	// apperrors.ErrNotFound before the first clock-in.
	GetToday(ctx context.Context, userID, orgID string) (*domain.Attendance, error)

	// ListRange returns records whose organization-local day falls in [from, to).
	ListRange(ctx context.Context, userID, orgID string, from, to time.Time) ([]domain.Attendance, error)
}

// AttendanceSvcFacade combines all attendance service interfaces.
type AttendanceSvcFacade interface {
	AttendanceClockSvc
	AttendanceReaderSvc
}

// ReportingSvcFacade derives per-day work/break summaries from clock records.
type ReportingSvcFacade interface {
	// Summary aggregates records between the from and to dates (inclusive,
	// YYYY-MM-DD) interpreted in the organization's timezone.
	Summary(ctx context.Context, userID, orgID, from, to string) (*dto.AttendanceSummaryResponse, error)
}
