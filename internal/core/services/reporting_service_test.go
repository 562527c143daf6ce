package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	"github.com/tockawaffle/jelli-backend/internal/core/services"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	attendanceRepo *MockAttendanceRepository
	orgRepo        *MockOrganizationRepository
	service        *services.ReportingService
	now            time.Time
	org            *domain.Organization
	member         *domain.Member
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.attendanceRepo = new(MockAttendanceRepository)
	s.orgRepo = new(MockOrganizationRepository)
	s.org = &domain.Organization{
		OrgID: testOrgID,
		Name:  "Acme",
		Settings: domain.OrganizationSettings{
			Hours: domain.OrganizationHours{
				Open:        "09:00:00",
				Close:       "18:00:00",
				GracePeriod: 15,
				Timezone:    "UTC",
			},
		},
	}
	s.member = &domain.Member{UserID: testUserID, OrgID: testOrgID, LunchTime: "12:00:00"}
	s.now = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	s.service = services.NewReportingService(s.attendanceRepo, s.orgRepo,
		services.WithReportingClock(func() time.Time { return s.now }))
}

func (s *ReportingServiceTestSuite) expectOrgAndMember() {
	s.orgRepo.On("FindOrganizationByID", mock.Anything, testOrgID).Return(s.org, nil)
	s.orgRepo.On("FindMember", mock.Anything, testUserID, testOrgID).Return(s.member, nil)
}

func (s *ReportingServiceTestSuite) closedDay(date time.Time) domain.Attendance {
	clockIn := date.Add(9 * time.Hour)
	out := date.Add(12 * time.Hour)
	ret := date.Add(12*time.Hour + 45*time.Minute)
	clockOut := date.Add(18 * time.Hour)
	return domain.Attendance{
		AttendanceID:     "att-" + date.Format("2006-01-02"),
		UserID:           testUserID,
		OrgID:            testOrgID,
		Date:             date,
		Status:           domain.StatusClockedOut,
		ClockIn:          &clockIn,
		LunchBreakOut:    &out,
		LunchBreakReturn: &ret,
		ClockOut:         &clockOut,
		TotalWorkSeconds: 8*3600 + 15*60,
		TotalBreakSecond: 45 * 60,
	}
}

func (s *ReportingServiceTestSuite) TestSummary_ExplicitRange() {
	s.expectOrgAndMember()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	records := []domain.Attendance{
		s.closedDay(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		s.closedDay(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)),
	}
	s.attendanceRepo.On("ListRange", mock.Anything, testUserID, testOrgID, start, end).
		Return(records, nil)

	resp, err := s.service.Summary(context.Background(), testUserID, testOrgID, "2025-03-10", "2025-03-11")

	s.Require().NoError(err)
	s.Require().Len(resp.Days, 2)
	s.Equal("2025-03-10", resp.Days[0].Date)
	s.Equal(string(domain.StatusClockedOut), resp.Days[0].Status)
	s.Equal(int64(8*3600+15*60), resp.Days[0].WorkSeconds)
	s.Equal("8.25", resp.Days[0].WorkHours)
	s.Equal("0.75", resp.Days[0].BreakHours)
	s.Equal(int64(2*(8*3600+15*60)), resp.TotalWorkSeconds)
	s.Equal(int64(2*45*60), resp.TotalBreakSeconds)
	s.Equal("16.5", resp.TotalWorkHours)
}

func (s *ReportingServiceTestSuite) TestSummary_DefaultsToLastSevenDays() {
	s.expectOrgAndMember()
	// now is 2025-03-14 15:00 UTC, so the window is [03-08, 03-15)
	start := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	s.attendanceRepo.On("ListRange", mock.Anything, testUserID, testOrgID, start, end).
		Return([]domain.Attendance{}, nil)

	resp, err := s.service.Summary(context.Background(), testUserID, testOrgID, "", "")

	s.Require().NoError(err)
	s.Empty(resp.Days)
	s.Equal("0", resp.TotalWorkHours)
	s.attendanceRepo.AssertExpectations(s.T())
}

func (s *ReportingServiceTestSuite) TestSummary_OpenDayMeasuredToNow() {
	s.expectOrgAndMember()
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	clockIn := day.Add(9 * time.Hour)
	out := day.Add(12 * time.Hour)
	rec := domain.Attendance{
		UserID:        testUserID,
		OrgID:         testOrgID,
		Date:          day,
		Status:        domain.StatusLunchBreakStarted,
		ClockIn:       &clockIn,
		LunchBreakOut: &out,
	}
	s.attendanceRepo.On("ListRange", mock.Anything, testUserID, testOrgID, mock.Anything, mock.Anything).
		Return([]domain.Attendance{rec}, nil)

	// now 15:00: three hours of open break since 12:00, three worked hours
	resp, err := s.service.Summary(context.Background(), testUserID, testOrgID, "", "")

	s.Require().NoError(err)
	s.Require().Len(resp.Days, 1)
	s.Equal(int64(3*3600), resp.Days[0].WorkSeconds)
	s.Equal(int64(3*3600), resp.Days[0].BreakSeconds)
	s.Equal("3", resp.Days[0].WorkHours)
}

func (s *ReportingServiceTestSuite) TestSummary_InvalidRange() {
	s.expectOrgAndMember()

	_, err := s.service.Summary(context.Background(), testUserID, testOrgID, "2025-03-12", "2025-03-10")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.attendanceRepo.AssertNotCalled(s.T(), "ListRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReportingServiceTestSuite) TestSummary_MalformedDate() {
	s.expectOrgAndMember()

	_, err := s.service.Summary(context.Background(), testUserID, testOrgID, "10/03/2025", "")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReportingServiceTestSuite) TestSummary_NotAMember() {
	s.orgRepo.On("FindOrganizationByID", mock.Anything, testOrgID).Return(s.org, nil)
	s.orgRepo.On("FindMember", mock.Anything, testUserID, testOrgID).Return(nil, apperrors.ErrNotFound)

	_, err := s.service.Summary(context.Background(), testUserID, testOrgID, "", "")

	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
