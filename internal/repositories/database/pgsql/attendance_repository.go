package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	"github.com/tockawaffle/jelli-backend/internal/models"
)

type PgxAttendanceRepository struct {
	BaseRepository
}

func newPgxAttendanceRepository(pool *pgxpool.Pool) portsrepo.AttendanceRepositoryFacade {
	return &PgxAttendanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AttendanceRepositoryFacade = (*PgxAttendanceRepository)(nil)

// uniqueViolation is the Postgres error code raised by the
// (user_id, org_id, date) unique index when a second record for the same
// organization-local day is inserted.
const uniqueViolation = "23505"

func toModelAttendance(d domain.Attendance) (models.Attendance, error) {
	ops, err := json.Marshal(d.Operations)
	if err != nil {
		return models.Attendance{}, fmt.Errorf("failed to encode operations: %w", err)
	}
	return models.Attendance{
		AttendanceID:     d.AttendanceID,
		UserID:           d.UserID,
		OrgID:            d.OrgID,
		Date:             d.Date,
		Status:           string(d.Status),
		ClockIn:          d.ClockIn,
		LunchBreakOut:    d.LunchBreakOut,
		LunchBreakReturn: d.LunchBreakReturn,
		ClockOut:         d.ClockOut,
		Operations:       ops,
		TimesUpdated:     d.TimesUpdated,
		TotalWorkSeconds: d.TotalWorkSeconds,
		TotalBreakSecond: d.TotalBreakSecond,
		WasLate:          d.WasLate,
		EarlyOut:         d.EarlyOut,
	}, nil
}

func toDomainAttendance(m models.Attendance) (domain.Attendance, error) {
	var ops []domain.Operation
	if len(m.Operations) > 0 {
		if err := json.Unmarshal(m.Operations, &ops); err != nil {
			return domain.Attendance{}, fmt.Errorf("failed to decode operations for attendance %s: %w", m.AttendanceID, err)
		}
	}
	return domain.Attendance{
		AttendanceID:     m.AttendanceID,
		UserID:           m.UserID,
		OrgID:            m.OrgID,
		Date:             m.Date,
		Status:           domain.AttendanceStatus(m.Status),
		ClockIn:          m.ClockIn,
		LunchBreakOut:    m.LunchBreakOut,
		LunchBreakReturn: m.LunchBreakReturn,
		ClockOut:         m.ClockOut,
		Operations:       ops,
		TimesUpdated:     m.TimesUpdated,
		TotalWorkSeconds: m.TotalWorkSeconds,
		TotalBreakSecond: m.TotalBreakSecond,
		WasLate:          m.WasLate,
		EarlyOut:         m.EarlyOut,
	}, nil
}

const attendanceColumns = `attendance_id, user_id, org_id, date, status,
		clock_in, lunch_break_out, lunch_break_return, clock_out,
		operations, times_updated, total_work_seconds, total_break_seconds, was_late, early_out`

func scanAttendance(row pgx.Row) (*models.Attendance, error) {
	var m models.Attendance
	err := row.Scan(
		&m.AttendanceID,
		&m.UserID,
		&m.OrgID,
		&m.Date,
		&m.Status,
		&m.ClockIn,
		&m.LunchBreakOut,
		&m.LunchBreakReturn,
		&m.ClockOut,
		&m.Operations,
		&m.TimesUpdated,
		&m.TotalWorkSeconds,
		&m.TotalBreakSecond,
		&m.WasLate,
		&m.EarlyOut,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxAttendanceRepository) FindForDay(ctx context.Context, userID, orgID string, startOfDay time.Time) (*domain.Attendance, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance
		WHERE user_id = $1 AND org_id = $2 AND date >= $3
		ORDER BY date ASC
		LIMIT 1;
	`, attendanceColumns)

	m, err := scanAttendance(r.Pool.QueryRow(ctx, query, userID, orgID, startOfDay))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find attendance for user %s: %w", userID, err)
	}

	d, err := toDomainAttendance(*m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxAttendanceRepository) ListRange(ctx context.Context, userID, orgID string, from, to time.Time) ([]domain.Attendance, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance
		WHERE user_id = $1 AND org_id = $2 AND date >= $3 AND date < $4
		ORDER BY date ASC;
	`, attendanceColumns)

	rows, err := r.Pool.Query(ctx, query, userID, orgID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query attendance range", err)
	}
	defer rows.Close()

	var result []domain.Attendance
	for rows.Next() {
		m, err := scanAttendance(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan attendance row", err)
		}
		d, err := toDomainAttendance(*m)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating attendance rows", err)
	}
	return result, nil
}

func (r *PgxAttendanceRepository) CreateAttendance(ctx context.Context, attendance domain.Attendance) error {
	m, err := toModelAttendance(attendance)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO attendance (
			attendance_id, user_id, org_id, date, status,
			clock_in, lunch_break_out, lunch_break_return, clock_out,
			operations, times_updated, total_work_seconds, total_break_seconds, was_late, early_out
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.AttendanceID, m.UserID, m.OrgID, m.Date, m.Status,
		m.ClockIn, m.LunchBreakOut, m.LunchBreakReturn, m.ClockOut,
		m.Operations, m.TimesUpdated, m.TotalWorkSeconds, m.TotalBreakSecond, m.WasLate, m.EarlyOut,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	return nil
}

// ApplyTransition commits a mutated record conditionally on its prior status.
// Two concurrent transitions can both read the same prior state; the
// predicate makes the second commit match zero rows instead of overwriting.
func (r *PgxAttendanceRepository) ApplyTransition(ctx context.Context, attendance domain.Attendance, expectedStatus domain.AttendanceStatus) error {
	m, err := toModelAttendance(attendance)
	if err != nil {
		return err
	}

	query := `
		UPDATE attendance SET
			status = $1,
			clock_in = $2,
			lunch_break_out = $3,
			lunch_break_return = $4,
			clock_out = $5,
			operations = $6,
			times_updated = $7
		WHERE attendance_id = $8 AND status = $9;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Status, m.ClockIn, m.LunchBreakOut, m.LunchBreakReturn, m.ClockOut,
		m.Operations, m.TimesUpdated,
		m.AttendanceID, string(expectedStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to apply attendance transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}
