package services

import (
	"context"
	"time"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	"golang.org/x/oauth2"
)

// TokenSvcFacade handles JWT access tokens and refresh tokens. Access tokens
// carry the user's active organization id so the attendance endpoints can
// scope every operation without an extra lookup.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a JWT for the user with the given active
	// organization id (may be empty when the user has no organization yet).
	GenerateAccessToken(ctx context.Context, user *domain.User, activeOrgID string) (string, time.Time, error)

	// GenerateRefreshToken creates an opaque refresh token and its expiry.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken validates a refresh token string against
	// the stored hash and returns the associated user.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error)
}

// OTPSvcFacade dispatches one-time verification codes for pre-auth flows.
type OTPSvcFacade interface {
	// SendVerificationOTP generates, stores (hashed) and dispatches an OTP to
	// the user owning the email. otpType is the flow requesting it
	// (e.g. "sign-in", "email-verification").
	SendVerificationOTP(ctx context.Context, email string, otpType string) error
}

// GoogleOAuthHandlerSvcFacade wraps the Google sign-in flow.
type GoogleOAuthHandlerSvcFacade interface {
	// GenerateStateString creates a CSRF state token for the OAuth round trip.
	GenerateStateString(ctx context.Context) (string, error)

	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string

	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)

	// GetVerifiedUserInfo validates the ID token in the exchange result and
	// returns the Google profile.
	GetVerifiedUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)
}
