package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/dto"
	"github.com/tockawaffle/jelli-backend/internal/middleware"
	"github.com/tockawaffle/jelli-backend/internal/platform/config"
	"github.com/tockawaffle/jelli-backend/internal/utils"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// oauthStateCookie carries the CSRF state across the Google redirect.
const oauthStateCookie = "oauth_state"

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	cfg                *config.Config
	userService        portssvc.UserSvcFacade
	tokenService       portssvc.TokenSvcFacade
	otpService         portssvc.OTPSvcFacade
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *AuthHandler {
	return &AuthHandler{
		cfg:                cfg,
		userService:        services.User,
		tokenService:       services.Token,
		otpService:         services.OTP,
		googleOAuthService: services.GoogleOAuth,
	}
}

// registerAuthRoutes sets up the pre-auth routes. These sit outside the JWT
// group; the audit after-hook classifies them through the unauth descriptor
// registry.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, audit gin.HandlerFunc) {
	h := NewAuthHandler(cfg, services)

	// Rate limit: 5 requests per minute per IP on credential endpoints
	rate, _ := limiter.NewRateFromFormatted("5-M")
	ipLimiter := limiter.New(memory.NewStore(), rate)
	limitMiddleware := middleware.RateLimit(ipLimiter)

	auth := r.Group("/auth", audit)
	{
		auth.POST("/sign-in/email", limitMiddleware, h.SignInEmail)
		auth.POST("/send-verification-otp", limitMiddleware, h.SendVerificationOTP)
		auth.GET("/sign-in/google", h.GoogleLogin)
		auth.GET("/sign-in/callback/google", h.GoogleCallback)
		auth.POST("/refresh-token", h.RefreshToken)
		auth.POST("/sign-out", h.SignOut)
	}
}

// issueSession generates the access/refresh pair, persists the refresh hash,
// and sets the refresh cookie. The cookie value carries the user id so the
// refresh endpoint can locate the stored hash without a session.
func (h *AuthHandler) issueSession(c *gin.Context, userID, activeOrgID string) (*dto.LoginResponse, error) {
	ctx := c.Request.Context()

	user, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := h.tokenService.GenerateAccessToken(ctx, user, activeOrgID)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpiry, err := h.tokenService.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := h.userService.UpdateRefreshToken(ctx, user.UserID, utils.HashOpaqueToken(refreshToken), refreshExpiry); err != nil {
		return nil, err
	}

	maxAge := int(h.cfg.RefreshTokenExpiryDuration.Seconds())
	c.SetCookie(h.cfg.RefreshTokenCookieName, user.UserID+":"+refreshToken, maxAge,
		h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)

	return &dto.LoginResponse{Token: accessToken, ExpiresAt: expiresAt}, nil
}

// SignInEmail godoc
// @Summary Sign in with email and password
// @Description Authenticates a user and returns a JWT access token; the refresh token is set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.SignInEmailRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid email or password"
// @Router /auth/sign-in/email [post]
func (h *AuthHandler) SignInEmail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SignInEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		logger.Error("Sign-in failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign-in failed"})
		return
	}

	resp, err := h.issueSession(c, user.UserID, req.OrgID)
	if err != nil {
		logger.Error("Failed to issue session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session"})
		return
	}

	middleware.SetUserIDInContext(c, user.UserID)
	c.JSON(http.StatusOK, resp)
}

// SendVerificationOTP godoc
// @Summary Dispatch a one-time verification code
// @Description Generates and dispatches a one-time code for the given flow. The response does not reveal whether the email exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SendVerificationOTPRequest true "Email and flow type"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /auth/send-verification-otp [post]
func (h *AuthHandler) SendVerificationOTP(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SendVerificationOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.otpService.SendVerificationOTP(c.Request.Context(), req.Email, req.Type); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to dispatch verification code", slog.String("error", err.Error()))
		}
		// Fall through: an unknown email gets the same response as a known one.
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a code has been sent"})
}

// GoogleLogin godoc
// @Summary Start the Google sign-in flow
// @Description Redirects the browser to Google's consent screen with a CSRF state cookie.
// @Tags auth
// @Success 307
// @Router /auth/sign-in/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := h.googleOAuthService.GenerateStateString(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start Google sign-in"})
		return
	}

	c.SetCookie(oauthStateCookie, state, 600, "/auth", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuthService.GetGoogleLoginURL(c.Request.Context(), state))
}

// GoogleCallback godoc
// @Summary Complete the Google sign-in flow
// @Description Validates the CSRF state, exchanges the authorization code, verifies the ID token, finds or creates the user and issues a session.
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "CSRF state"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]string "Missing code or state mismatch"
// @Failure 401 {object} map[string]string "ID token rejected"
// @Router /auth/sign-in/callback/google [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code or state"})
		return
	}
	if cookieState, err := c.Cookie(oauthStateCookie); err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "OAuth state mismatch"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/auth", "", h.cfg.IsProduction, true)

	token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		msg := "Failed to communicate with Google"
		status := http.StatusBadGateway
		if strings.Contains(strings.ToLower(err.Error()), "invalid_grant") {
			msg = "Invalid or expired authorization code"
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	info, err := h.googleOAuthService.GetVerifiedUserInfo(ctx, token)
	if err != nil {
		logger.Error("Google ID token validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google ID token"})
		return
	}

	user, err := h.userService.FindOrCreateFromGoogle(ctx, *info)
	if err != nil {
		logger.Error("Failed to resolve user from Google profile", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process Google sign-in"})
		return
	}

	resp, err := h.issueSession(c, user.UserID, "")
	if err != nil {
		logger.Error("Failed to issue session", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session"})
		return
	}

	// Expose the new session to the audit after-hook's callback descriptor.
	middleware.SetUserIDInContext(c, user.UserID)
	c.JSON(http.StatusOK, resp)
}

// refreshCookieParts splits the refresh cookie into its user id and token.
func refreshCookieParts(value string) (string, string, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// RefreshToken godoc
// @Summary Refresh the access token
// @Description Rotates the refresh token from the HTTP-only cookie and returns a fresh access token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} map[string]string "Missing, invalid or expired refresh token"
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	cookie, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token required"})
		return
	}
	userID, rawToken, ok := refreshCookieParts(cookie)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, rawToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrRefreshTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
			return
		}
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}
		logger.Error("Refresh token validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	// Rotation: the old token is replaced in the same response.
	resp, err := h.issueSession(c, user.UserID, "")
	if err != nil {
		logger.Error("Failed to rotate refresh token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	middleware.SetUserIDInContext(c, user.UserID)
	c.JSON(http.StatusOK, dto.RefreshTokenResponse{Token: resp.Token, ExpiresAt: resp.ExpiresAt})
}

// SignOut godoc
// @Summary Sign out
// @Description Clears the stored refresh token and expires the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if cookie, err := c.Cookie(h.cfg.RefreshTokenCookieName); err == nil {
		if userID, _, ok := refreshCookieParts(cookie); ok {
			if err := h.userService.ClearRefreshToken(c.Request.Context(), userID); err != nil {
				logger.Error("Failed to clear refresh token", slog.String("error", err.Error()))
			}
			middleware.SetUserIDInContext(c, userID)
		}
	}

	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
