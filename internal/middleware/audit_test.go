package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
)

// MockAuditWriter is a mock type for the AuditWriterSvc interface
type MockAuditWriter struct {
	mock.Mock
}

func (m *MockAuditWriter) RecordAuditLog(ctx context.Context, entry domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditWriter) DeleteAuditLogsForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserReader is a mock type for the UserReaderSvc interface
type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserReader) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newRecorder(audit *MockAuditWriter, users *MockUserReader) *AuditRecorder {
	var unauth []UnauthHandler
	if users != nil {
		unauth = DefaultUnauthHandlers(users)
	}
	return NewAuditRecorder(audit, AuditOptions{
		BasePaths:                  []string{"/api/v1", "/auth"},
		MergeDefaultIgnoredActions: true,
		MergeDefaultSeverityMap:    true,
		UnauthHandlers:             unauth,
	})
}

// withSession mimics the auth middleware storing the session user id in the
// request context.
func withSession(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestActionFromPath(t *testing.T) {
	r := newRecorder(new(MockAuditWriter), nil)

	cases := map[string]string{
		"/api/v1/attendance/clock-in":    "attendance-clock-in",
		"/api/v1/attendance/lunch-start": "attendance-lunch-start",
		"/api/v1/audit-logs":             "audit-logs",
		"/api/v1/users/me":               "users-me",
		"/auth/sign-in/email":            "sign-in-email",
		"/auth/sign-in/callback/google":  "callback-google",
		"/auth/send-verification-otp":    "send-verification-otp",
		"/auth/refresh-token":            "refresh-token",
		"/health":                        "health",
		"/":                              "",
	}
	for path, want := range cases {
		assert.Equal(t, want, r.ActionFromPath(path), path)
	}
}

func TestAuditMiddleware_AuthenticatedWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	audit.On("RecordAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.Action == "attendance-clock-in" &&
			e.UserID == "user-1" &&
			e.Severity == domain.SeverityInfo &&
			e.Type == domain.AuditTypeAPI
	})).Return(nil)

	r := gin.New()
	r.POST("/api/v1/attendance/clock-in", withSession("user-1"), newRecorder(audit, nil).Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "CLOCKED_IN"})
	})

	w := serve(r, http.MethodPost, "/api/v1/attendance/clock-in", "")

	assert.Equal(t, http.StatusOK, w.Code)
	audit.AssertExpectations(t)
}

func TestAuditMiddleware_IgnoredActionSkipped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)

	r := gin.New()
	r.GET("/api/v1/attendance/today", withSession("user-1"), newRecorder(audit, nil).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/api/v1/attendance/today", "")

	audit.AssertNotCalled(t, "RecordAuditLog", mock.Anything, mock.Anything)
}

func TestAuditMiddleware_FailedRequestSkipped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)

	r := gin.New()
	r.POST("/api/v1/attendance/clock-in", withSession("user-1"), newRecorder(audit, nil).Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "already clocked in"})
	})

	serve(r, http.MethodPost, "/api/v1/attendance/clock-in", "")

	audit.AssertNotCalled(t, "RecordAuditLog", mock.Anything, mock.Anything)
}

func TestAuditMiddleware_PersistFailureDoesNotFailRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	audit.On("RecordAuditLog", mock.Anything, mock.Anything).Return(errors.New("db down"))

	r := gin.New()
	r.POST("/api/v1/attendance/clock-out", withSession("user-1"), newRecorder(audit, nil).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodPost, "/api/v1/attendance/clock-out", "")

	assert.Equal(t, http.StatusOK, w.Code)
	audit.AssertExpectations(t)
}

func TestAuditMiddleware_SeverityOverride(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	audit.On("RecordAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.Severity == domain.SeveritySevere
	})).Return(nil)

	r := gin.New()
	r.POST("/api/v1/attendance/clock-in", withSession("user-1"), newRecorder(audit, nil).Middleware(), func(c *gin.Context) {
		OverrideAuditSeverity(c, domain.SeveritySevere)
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodPost, "/api/v1/attendance/clock-in", "")

	audit.AssertExpectations(t)
}

func TestAuditMiddleware_SignInEmailResolvedByLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	users := new(MockUserReader)
	users.On("GetUserByEmail", mock.Anything, "a@example.com").
		Return(&domain.User{UserID: "user-7", Email: "a@example.com"}, nil)
	audit.On("RecordAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.Action == "sign-in-email" &&
			e.UserID == "user-7" &&
			e.Severity == domain.SeverityWarning
	})).Return(nil)

	r := gin.New()
	r.POST("/auth/sign-in/email", newRecorder(audit, users).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodPost, "/auth/sign-in/email", `{"email":"a@example.com","password":"x"}`)

	audit.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestAuditMiddleware_UnknownEmailDropsEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	users := new(MockUserReader)
	users.On("GetUserByEmail", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.ErrNotFound)

	r := gin.New()
	r.POST("/auth/sign-in/email", newRecorder(audit, users).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodPost, "/auth/sign-in/email", `{"email":"ghost@example.com","password":"x"}`)

	audit.AssertNotCalled(t, "RecordAuditLog", mock.Anything, mock.Anything)
}

func TestAuditMiddleware_OTPActionAnnotatedWithType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	users := new(MockUserReader)
	users.On("GetUserByEmail", mock.Anything, "a@example.com").
		Return(&domain.User{UserID: "user-7"}, nil)
	audit.On("RecordAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.Action == "send-verification-otp (sign-in)" && e.UserID == "user-7"
	})).Return(nil)

	r := gin.New()
	r.POST("/auth/send-verification-otp", newRecorder(audit, users).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodPost, "/auth/send-verification-otp", `{"email":"a@example.com","type":"sign-in"}`)

	audit.AssertExpectations(t)
}

func TestAuditMiddleware_CallbackUsesSessionFromHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	users := new(MockUserReader)
	audit.On("RecordAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.Action == "callback-google" && e.UserID == "user-9"
	})).Return(nil)

	r := gin.New()
	r.GET("/auth/sign-in/callback/google", newRecorder(audit, users).Middleware(), func(c *gin.Context) {
		SetUserIDInContext(c, "user-9")
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/auth/sign-in/callback/google", "")

	audit.AssertExpectations(t)
}

func TestAuditMiddleware_ClearedSessionDropsEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	users := new(MockUserReader)

	r := gin.New()
	r.POST("/api/v1/attendance/clock-out", withSession("user-1"), newRecorder(audit, users).Middleware(), func(c *gin.Context) {
		// an account-removal handler clears the identity after committing
		ClearUserFromContext(c)
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodPost, "/api/v1/attendance/clock-out", "")

	audit.AssertNotCalled(t, "RecordAuditLog", mock.Anything, mock.Anything)
}

func TestBeforeDeleteUser_PurgesRows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	audit.On("DeleteAuditLogsForUser", mock.Anything, "user-1").Return(int64(3), nil)

	r := gin.New()
	r.DELETE("/api/v1/users/me", withSession("user-1"), newRecorder(audit, nil).BeforeDeleteUser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodDelete, "/api/v1/users/me", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	audit.AssertExpectations(t)
}

func TestBeforeDeleteUser_NoSessionRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)

	handlerRan := false
	r := gin.New()
	r.DELETE("/api/v1/users/me", newRecorder(audit, nil).BeforeDeleteUser(), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodDelete, "/api/v1/users/me", "")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerRan)
	audit.AssertNotCalled(t, "DeleteAuditLogsForUser", mock.Anything, mock.Anything)
}

func TestBeforeDeleteUser_PurgeFailureDoesNotBlockDeletion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := new(MockAuditWriter)
	audit.On("DeleteAuditLogsForUser", mock.Anything, "user-1").Return(int64(0), errors.New("db down"))

	r := gin.New()
	r.DELETE("/api/v1/users/me", withSession("user-1"), newRecorder(audit, nil).BeforeDeleteUser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodDelete, "/api/v1/users/me", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
}
