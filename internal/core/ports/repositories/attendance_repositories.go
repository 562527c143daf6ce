package repositories

import (
	"context"
	"time"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
)

// AttendanceReader defines read operations for attendance records.
type AttendanceReader interface {
	// FindForDay retrieves the record for the organization-local day starting
	// at startOfDay, or apperrors.ErrNotFound when the user has not clocked in.
	FindForDay(ctx context.Context, userID, orgID string, startOfDay time.Time) (*domain.Attendance, error)

	// ListRange retrieves all records for the user in [from, to), oldest first.
	ListRange(ctx context.Context, userID, orgID string, from, to time.Time) ([]domain.Attendance, error)
}

// AttendanceWriter defines write operations for attendance records.
type AttendanceWriter interface {
	// CreateAttendance persists a fresh record. A duplicate
	// (user, org, date) triple yields apperrors.ErrDuplicate.
	CreateAttendance(ctx context.Context, attendance domain.Attendance) error

	// ApplyTransition persists the mutated record with a conditional predicate
	// on the prior status; a concurrent transition that already moved the
	// record off expectedStatus yields apperrors.ErrConflict.
	ApplyTransition(ctx context.Context, attendance domain.Attendance, expectedStatus domain.AttendanceStatus) error
}

// AttendanceRepositoryFacade combines all attendance repository interfaces.
type AttendanceRepositoryFacade interface {
	AttendanceReader
	AttendanceWriter
}
