package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	"github.com/tockawaffle/jelli-backend/internal/core/services"
)

// MockAuditLogRepository is a mock type for the AuditLogRepositoryFacade interface
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) SaveAuditLog(ctx context.Context, entry domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) DeleteAuditLogsByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditLogRepository) ListAuditLogs(ctx context.Context, userID string, query portsrepo.AuditLogQuery) ([]domain.AuditLog, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) CountAuditLogs(ctx context.Context, userID string, query portsrepo.AuditLogQuery) (int64, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).(int64), args.Error(1)
}

type AuditServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAuditLogRepository
	service  *services.AuditService
}

func (s *AuditServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockAuditLogRepository)
	s.service = services.NewAuditService(s.mockRepo)
}

func (s *AuditServiceTestSuite) TestRecordAuditLog_FillsDefaults() {
	s.mockRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.AuditLogID != "" &&
			!e.Timestamp.IsZero() &&
			e.Severity == domain.SeverityUnknown &&
			e.Type == domain.AuditTypeUnknown
	})).Return(nil)

	err := s.service.RecordAuditLog(context.Background(), domain.AuditLog{
		UserID: "user-1",
		Action: "attendance-clock-in",
	})

	s.NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AuditServiceTestSuite) TestRecordAuditLog_KeepsProvidedFields() {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entry := domain.AuditLog{
		AuditLogID: "log-1",
		UserID:     "user-1",
		Action:     "sign-in-email",
		Timestamp:  ts,
		Severity:   domain.SeverityWarning,
		Type:       domain.AuditTypeAuthentication,
	}
	s.mockRepo.On("SaveAuditLog", mock.Anything, entry).Return(nil)

	s.NoError(s.service.RecordAuditLog(context.Background(), entry))
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AuditServiceTestSuite) TestRecordAuditLog_RequiresUserID() {
	err := s.service.RecordAuditLog(context.Background(), domain.AuditLog{Action: "sign-in-email"})

	s.Error(err)
	s.mockRepo.AssertNotCalled(s.T(), "SaveAuditLog", mock.Anything, mock.Anything)
}

func (s *AuditServiceTestSuite) TestListAuditLogs_ReturnsPageAndTotal() {
	query := portsrepo.AuditLogQuery{Limit: 2, SortDesc: true}
	page := []domain.AuditLog{
		{AuditLogID: "log-2", UserID: "user-1"},
		{AuditLogID: "log-1", UserID: "user-1"},
	}
	s.mockRepo.On("ListAuditLogs", mock.Anything, "user-1", query).Return(page, nil)
	s.mockRepo.On("CountAuditLogs", mock.Anything, "user-1", query).Return(int64(7), nil)

	entries, total, err := s.service.ListAuditLogs(context.Background(), "user-1", query)

	s.Require().NoError(err)
	s.Equal(page, entries)
	s.Equal(int64(7), total)
}

func (s *AuditServiceTestSuite) TestListAuditLogs_CountFailurePropagates() {
	query := portsrepo.AuditLogQuery{Limit: 10}
	s.mockRepo.On("ListAuditLogs", mock.Anything, "user-1", query).Return([]domain.AuditLog{}, nil)
	s.mockRepo.On("CountAuditLogs", mock.Anything, "user-1", query).Return(int64(0), errors.New("db down"))

	_, _, err := s.service.ListAuditLogs(context.Background(), "user-1", query)

	s.Error(err)
}

func (s *AuditServiceTestSuite) TestDeleteAuditLogsForUser() {
	s.mockRepo.On("DeleteAuditLogsByUserID", mock.Anything, "user-1").Return(int64(4), nil)

	deleted, err := s.service.DeleteAuditLogsForUser(context.Background(), "user-1")

	s.Require().NoError(err)
	s.Equal(int64(4), deleted)
}

func TestAuditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
