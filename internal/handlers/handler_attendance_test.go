package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/dto"
	"github.com/tockawaffle/jelli-backend/internal/middleware"
	"github.com/tockawaffle/jelli-backend/internal/utils"
)

// --- Mock AttendanceService ---
type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) ClockTransition(ctx context.Context, userID, orgID string, transition domain.ClockTransition, provenance domain.OperationType) (*domain.Attendance, error) {
	args := m.Called(ctx, userID, orgID, transition, provenance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendance), args.Error(1)
}

func (m *MockAttendanceService) GetToday(ctx context.Context, userID, orgID string) (*domain.Attendance, error) {
	args := m.Called(ctx, userID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendance), args.Error(1)
}

func (m *MockAttendanceService) ListRange(ctx context.Context, userID, orgID string, from, to time.Time) ([]domain.Attendance, error) {
	args := m.Called(ctx, userID, orgID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attendance), args.Error(1)
}

var _ portssvc.AttendanceSvcFacade = (*MockAttendanceService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) Summary(ctx context.Context, userID, orgID, from, to string) (*dto.AttendanceSummaryResponse, error) {
	args := m.Called(ctx, userID, orgID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttendanceSummaryResponse), args.Error(1)
}

var _ portssvc.ReportingSvcFacade = (*MockReportingService)(nil)

// --- Test Suite ---
type AttendanceHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	attendanceSvc *MockAttendanceService
	reportingSvc  *MockReportingService
	jwtSecret     string
}

func (suite *AttendanceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.attendanceSvc = new(MockAttendanceService)
	suite.reportingSvc = new(MockReportingService)

	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	registerAttendanceRoutes(v1, suite.attendanceSvc, suite.reportingSvc)
}

func (suite *AttendanceHandlerTestSuite) generateTestToken(userID, orgID string) string {
	token, err := utils.GenerateJWT(userID, orgID, suite.jwtSecret, time.Hour, "jelli-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *AttendanceHandlerTestSuite) request(method, path, token, userAgent string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AttendanceHandlerTestSuite) TestClockIn_Success() {
	now := time.Now()
	record := &domain.Attendance{
		AttendanceID: "att-1",
		UserID:       "user-1",
		OrgID:        "org-1",
		Status:       domain.StatusClockedIn,
		ClockIn:      &now,
		TimesUpdated: 1,
	}
	suite.attendanceSvc.On("ClockTransition",
		mock.Anything, "user-1", "org-1", domain.TransitionClockIn, domain.OperationWebapp).
		Return(record, nil).Once()

	token := suite.generateTestToken("user-1", "org-1")
	w := suite.request(http.MethodPost, "/api/v1/attendance/clock-in", token, "Mozilla/5.0")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AttendanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(string(domain.StatusClockedIn), resp.Status)
	suite.attendanceSvc.AssertExpectations(suite.T())
}

func (suite *AttendanceHandlerTestSuite) TestClockIn_NFCProvenance() {
	record := &domain.Attendance{Status: domain.StatusClockedIn}
	suite.attendanceSvc.On("ClockTransition",
		mock.Anything, "user-1", "org-1", domain.TransitionClockIn, domain.OperationNFC).
		Return(record, nil).Once()

	token := suite.generateTestToken("user-1", "org-1")
	w := suite.request(http.MethodPost, "/api/v1/attendance/clock-in", token, "JelliNFC/2.1 (Android)")

	suite.Equal(http.StatusOK, w.Code)
	suite.attendanceSvc.AssertExpectations(suite.T())
}

func (suite *AttendanceHandlerTestSuite) TestClockIn_PolicyViolationCarriesCode() {
	suite.attendanceSvc.On("ClockTransition",
		mock.Anything, "user-1", "org-1", domain.TransitionClockIn, domain.OperationWebapp).
		Return(nil, apperrors.NewClockError(apperrors.ErrValidation, "CLOCK_IN_ALREADY", "You are already clocked in")).
		Once()

	token := suite.generateTestToken("user-1", "org-1")
	w := suite.request(http.MethodPost, "/api/v1/attendance/clock-in", token, "Mozilla/5.0")

	suite.Equal(http.StatusBadRequest, w.Code)
	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("CLOCK_IN_ALREADY", body["code"])
	suite.Equal("You are already clocked in", body["error"])
}

func (suite *AttendanceHandlerTestSuite) TestClockOut_ConflictOnLostRace() {
	suite.attendanceSvc.On("ClockTransition",
		mock.Anything, "user-1", "org-1", domain.TransitionClockOut, domain.OperationWebapp).
		Return(nil, apperrors.ErrConflict).Once()

	token := suite.generateTestToken("user-1", "org-1")
	w := suite.request(http.MethodPost, "/api/v1/attendance/clock-out", token, "Mozilla/5.0")

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AttendanceHandlerTestSuite) TestTransition_NoActiveOrg() {
	token := suite.generateTestToken("user-1", "")
	w := suite.request(http.MethodPost, "/api/v1/attendance/clock-in", token, "Mozilla/5.0")

	suite.Equal(http.StatusBadRequest, w.Code)
	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("NO_ACTIVE_ORG", body["code"])
	suite.attendanceSvc.AssertNotCalled(suite.T(), "ClockTransition",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AttendanceHandlerTestSuite) TestTransition_NoToken() {
	w := suite.request(http.MethodPost, "/api/v1/attendance/clock-in", "", "Mozilla/5.0")

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AttendanceHandlerTestSuite) TestGetToday_NotFound() {
	suite.attendanceSvc.On("GetToday", mock.Anything, "user-1", "org-1").
		Return(nil, apperrors.ErrNotFound).Once()

	token := suite.generateTestToken("user-1", "org-1")
	w := suite.request(http.MethodGet, "/api/v1/attendance/today", token, "")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AttendanceHandlerTestSuite) TestGetSummary_PassesRange() {
	expected := &dto.AttendanceSummaryResponse{
		Days:           []dto.DailySummary{{Date: "2025-03-10", WorkHours: "8.25"}},
		TotalWorkHours: "8.25",
	}
	suite.reportingSvc.On("Summary", mock.Anything, "user-1", "org-1", "2025-03-10", "2025-03-11").
		Return(expected, nil).Once()

	token := suite.generateTestToken("user-1", "org-1")
	w := suite.request(http.MethodGet, "/api/v1/attendance/summary?from=2025-03-10&to=2025-03-11", token, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AttendanceSummaryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("8.25", resp.TotalWorkHours)
	suite.reportingSvc.AssertExpectations(suite.T())
}

func TestAttendanceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AttendanceHandlerTestSuite))
}
