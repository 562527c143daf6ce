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
	"github.com/tockawaffle/jelli-backend/internal/utils"
)

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiry time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateVerificationOTP(ctx context.Context, userID string, otpHash string, expiry time.Time) error {
	args := m.Called(ctx, userID, otpHash, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string, now time.Time) error {
	args := m.Called(ctx, userID, deletedBy, now)
	return args.Error(0)
}

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  *services.UserService
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockUserRepository)
	s.service = services.NewUserService(s.mockRepo)
}

func (s *UserServiceTestSuite) TestAuthenticateUser_Success() {
	hash, err := utils.HashPassword("s3cret")
	s.Require().NoError(err)
	user := &domain.User{UserID: "user-1", Email: "a@example.com", PasswordHash: hash}
	s.mockRepo.On("FindUserByEmail", mock.Anything, "a@example.com").Return(user, nil)

	got, err := s.service.AuthenticateUser(context.Background(), "a@example.com", "s3cret")

	s.Require().NoError(err)
	s.Equal(user, got)
}

func (s *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	hash, err := utils.HashPassword("s3cret")
	s.Require().NoError(err)
	user := &domain.User{UserID: "user-1", PasswordHash: hash}
	s.mockRepo.On("FindUserByEmail", mock.Anything, "a@example.com").Return(user, nil)

	_, err = s.service.AuthenticateUser(context.Background(), "a@example.com", "wrong")

	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *UserServiceTestSuite) TestAuthenticateUser_UnknownEmail() {
	s.mockRepo.On("FindUserByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := s.service.AuthenticateUser(context.Background(), "ghost@example.com", "s3cret")

	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *UserServiceTestSuite) TestAuthenticateUser_GoogleOnlyAccount() {
	user := &domain.User{UserID: "user-1", PasswordHash: ""}
	s.mockRepo.On("FindUserByEmail", mock.Anything, "a@example.com").Return(user, nil)

	_, err := s.service.AuthenticateUser(context.Background(), "a@example.com", "anything")

	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *UserServiceTestSuite) TestFindOrCreateFromGoogle_ExistingUser() {
	user := &domain.User{UserID: "user-1", Email: "a@example.com"}
	s.mockRepo.On("FindUserByEmail", mock.Anything, "a@example.com").Return(user, nil)

	got, err := s.service.FindOrCreateFromGoogle(context.Background(), domain.GoogleUserInfo{
		Email:         "a@example.com",
		VerifiedEmail: true,
	})

	s.Require().NoError(err)
	s.Equal(user, got)
	s.mockRepo.AssertNotCalled(s.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestFindOrCreateFromGoogle_CreatesOnFirstSignIn() {
	s.mockRepo.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, apperrors.ErrNotFound)
	s.mockRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID != "" &&
			u.Email == "new@example.com" &&
			u.Name == "New User" &&
			u.PasswordHash == "" &&
			u.CreatedBy == u.UserID
	})).Return(nil)

	got, err := s.service.FindOrCreateFromGoogle(context.Background(), domain.GoogleUserInfo{
		Email:         "new@example.com",
		Name:          "New User",
		VerifiedEmail: true,
	})

	s.Require().NoError(err)
	s.Equal("new@example.com", got.Email)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestFindOrCreateFromGoogle_RejectsUnverifiedEmail() {
	_, err := s.service.FindOrCreateFromGoogle(context.Background(), domain.GoogleUserInfo{
		Email:         "a@example.com",
		VerifiedEmail: false,
	})

	s.ErrorIs(err, apperrors.ErrUnauthorized)
	s.mockRepo.AssertNotCalled(s.T(), "FindUserByEmail", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestDeleteUser_SelfOnly() {
	s.mockRepo.On("MarkUserDeleted", mock.Anything, "user-1", "user-1", mock.AnythingOfType("time.Time")).
		Return(nil)

	s.NoError(s.service.DeleteUser(context.Background(), "user-1", "user-1"))
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestDeleteUser_OtherUserForbidden() {
	err := s.service.DeleteUser(context.Background(), "user-2", "user-1")

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockRepo.AssertNotCalled(s.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
