package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/utils"
)

// UserService implements user reads, credential checks, and the soft-delete
// lifecycle.
type UserService struct {
	userRepo portsrepo.UserRepositoryFacade
}

var _ portssvc.UserSvcFacade = (*UserService)(nil)

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindUserByEmail(ctx, email)
}

// FindOrCreateFromGoogle resolves the user for a verified Google profile,
// creating one on first sign-in. Google accounts have no local password.
func (s *UserService) FindOrCreateFromGoogle(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	if !info.VerifiedEmail {
		return nil, fmt.Errorf("%w: google account email is not verified", apperrors.ErrUnauthorized)
	}

	existing, err := s.userRepo.FindUserByEmail(ctx, info.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID: uuid.NewString(),
		Name:   info.Name,
		Email:  info.Email,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user from google profile: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
}

func (s *UserService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

func (s *UserService) StoreVerificationOTP(ctx context.Context, userID string, otpHash string, expiry time.Time) error {
	return s.userRepo.UpdateVerificationOTP(ctx, userID, otpHash, expiry)
}

// DeleteUser soft deletes the user. Users may only delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if userID != requestingUserID {
		return apperrors.ErrForbidden
	}
	return s.userRepo.MarkUserDeleted(ctx, userID, requestingUserID, time.Now())
}

// AuthenticateUser checks an email/password pair against the stored hash.
// Unknown emails and wrong passwords return the same error.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to retrieve user for authentication: %w", err)
	}

	if user.PasswordHash == "" {
		// Google-only account, no local credential to check.
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
