package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/dto"
	"github.com/tockawaffle/jelli-backend/internal/utils"
)

const dateLayout = "2006-01-02"

var secondsPerHour = decimal.NewFromInt(3600)

// ReportingService derives per-day work and break summaries from clock
// records. Hour figures use decimal arithmetic so payroll consumers never see
// float drift.
type ReportingService struct {
	attendanceRepo portsrepo.AttendanceRepositoryFacade
	orgRepo        portsrepo.OrganizationRepositoryFacade
	now            func() time.Time
}

var _ portssvc.ReportingSvcFacade = (*ReportingService)(nil)

// ReportingServiceOption customizes service construction.
type ReportingServiceOption func(*ReportingService)

// WithReportingClock injects a custom time source (useful for tests).
func WithReportingClock(clock func() time.Time) ReportingServiceOption {
	return func(s *ReportingService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewReportingService creates a new ReportingService.
func NewReportingService(attendanceRepo portsrepo.AttendanceRepositoryFacade, orgRepo portsrepo.OrganizationRepositoryFacade, opts ...ReportingServiceOption) *ReportingService {
	s := &ReportingService{
		attendanceRepo: attendanceRepo,
		orgRepo:        orgRepo,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Summary aggregates the user's records between the from and to dates
// (inclusive, YYYY-MM-DD) interpreted in the organization's timezone. Empty
// bounds default to the last 7 organization-local days.
func (s *ReportingService) Summary(ctx context.Context, userID, orgID, from, to string) (*dto.AttendanceSummaryResponse, error) {
	org, err := s.orgRepo.FindOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if _, err := s.orgRepo.FindMember(ctx, userID, orgID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user is not a member of the organization", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	loc, err := utils.OrgLocation(org.Settings.Hours.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	today := utils.StartOfDay(s.now().In(loc), loc)

	end := today.AddDate(0, 0, 1)
	if to != "" {
		parsed, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to date", apperrors.ErrValidation)
		}
		end = parsed.AddDate(0, 0, 1)
	}

	start := end.AddDate(0, 0, -7)
	if from != "" {
		parsed, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from date", apperrors.ErrValidation)
		}
		start = parsed
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: from must not be after to", apperrors.ErrValidation)
	}

	records, err := s.attendanceRepo.ListRange(ctx, userID, orgID, start, end)
	if err != nil {
		return nil, err
	}

	resp := &dto.AttendanceSummaryResponse{Days: make([]dto.DailySummary, 0, len(records))}
	for _, rec := range records {
		work, brk := dayTotals(rec, s.now().In(loc))
		resp.Days = append(resp.Days, dto.DailySummary{
			Date:         rec.Date.In(loc).Format(dateLayout),
			Status:       string(rec.Status),
			WorkSeconds:  work,
			BreakSeconds: brk,
			WorkHours:    secondsToHours(work),
			BreakHours:   secondsToHours(brk),
			WasLate:      rec.WasLate,
			EarlyOut:     rec.EarlyOut,
		})
		resp.TotalWorkSeconds += work
		resp.TotalBreakSeconds += brk
	}
	resp.TotalWorkHours = secondsToHours(resp.TotalWorkSeconds)
	return resp, nil
}

// dayTotals returns the work/break seconds for one record. Closed days use
// the persisted counters; an open day is measured up to now.
func dayTotals(rec domain.Attendance, now time.Time) (int64, int64) {
	if rec.Status == domain.StatusClockedOut {
		return rec.TotalWorkSeconds, rec.TotalBreakSecond
	}
	if rec.ClockIn == nil {
		return 0, 0
	}

	var brk int64
	switch {
	case rec.LunchBreakOut != nil && rec.LunchBreakReturn != nil:
		brk = int64(rec.LunchBreakReturn.Sub(*rec.LunchBreakOut).Seconds())
	case rec.LunchBreakOut != nil:
		brk = int64(now.Sub(*rec.LunchBreakOut).Seconds())
	}

	work := int64(now.Sub(*rec.ClockIn).Seconds()) - brk
	if work < 0 {
		work = 0
	}
	if brk < 0 {
		brk = 0
	}
	return work, brk
}

func secondsToHours(seconds int64) string {
	return decimal.NewFromInt(seconds).Div(secondsPerHour).Round(2).String()
}
