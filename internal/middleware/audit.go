package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
)

// maxAuditBodyBytes bounds how much of a request body the audit hook buffers
// for user-id resolution on pre-auth flows.
const maxAuditBodyBytes = 4 << 10

// auditBodyKey holds the buffered request body prefix in the Gin context.
const auditBodyKey = "auditBody"

// severityOverrideKey holds a per-request severity override set by a handler.
const severityOverrideKey = "auditSeverityOverride"

// UnauthHandler resolves audit events for requests that finish without an
// authenticated session (social callbacks, OTP dispatch). Descriptors are
// evaluated in registration order; the first whose Match returns true wins.
type UnauthHandler struct {
	// Match tests the derived action string.
	Match func(action string) bool

	// ResolveUserID extracts the acting user's id, e.g. from the session a
	// callback handler just created, or by email lookup against the buffered
	// request body. An empty result drops the event.
	ResolveUserID func(c *gin.Context, body []byte) string

	// FormatAction optionally rewrites the action before persistence.
	// Nil keeps the derived action.
	FormatAction func(action string, body []byte) string

	// Severity is the fixed severity for events this descriptor resolves.
	Severity domain.AuditSeverity
}

// AuditOptions configures the audit recorder. All classification tables are
// threaded through construction so tests can substitute them without global
// state.
type AuditOptions struct {
	// BasePaths are route-group prefixes stripped from the request path
	// before the action is derived, e.g. "/api/v1" and "/auth". The first
	// matching prefix wins.
	BasePaths []string

	// IgnoredActions are dropped without a write. When
	// MergeDefaultIgnoredActions is true the built-in ignore list is added.
	IgnoredActions             []string
	MergeDefaultIgnoredActions bool

	// CustomSeverityMap overrides per-action severity. When
	// MergeDefaultSeverityMap is true, actions missing from the custom map
	// fall back to the built-in map.
	CustomSeverityMap       map[string]domain.AuditSeverity
	MergeDefaultSeverityMap bool

	// CustomTypeMap overrides the action category lookup.
	CustomTypeMap map[string]domain.AuditLogType

	// UnauthHandlers is the descriptor registry for sessionless flows.
	UnauthHandlers []UnauthHandler

	// EnableLogging turns on diagnostics for dropped events.
	EnableLogging bool
}

// AuditRecorder turns the request lifecycle into audit rows. Persistence is
// best-effort: a failed write is logged and never fails the request that
// triggered it.
type AuditRecorder struct {
	audit       portssvc.AuditWriterSvc
	ignored     map[string]bool
	severityMap map[string]domain.AuditSeverity
	typeMap     map[string]domain.AuditLogType
	unauth      []UnauthHandler
	basePaths   []string
	verbose     bool
}

// NewAuditRecorder builds the recorder, merging the configured tables with
// the built-in defaults per the options.
func NewAuditRecorder(audit portssvc.AuditWriterSvc, opts AuditOptions) *AuditRecorder {
	ignored := make(map[string]bool)
	if opts.MergeDefaultIgnoredActions {
		for _, action := range domain.DefaultIgnoredActions() {
			ignored[action] = true
		}
	}
	for _, action := range opts.IgnoredActions {
		ignored[action] = true
	}

	severityMap := make(map[string]domain.AuditSeverity)
	if opts.MergeDefaultSeverityMap {
		for action, severity := range domain.DefaultSeverityMap() {
			severityMap[action] = severity
		}
	}
	for action, severity := range opts.CustomSeverityMap {
		severityMap[action] = severity
	}

	typeMap := domain.DefaultTypeMap()
	for action, t := range opts.CustomTypeMap {
		typeMap[action] = t
	}

	return &AuditRecorder{
		audit:       audit,
		ignored:     ignored,
		severityMap: severityMap,
		typeMap:     typeMap,
		unauth:      opts.UnauthHandlers,
		basePaths:   opts.BasePaths,
		verbose:     opts.EnableLogging,
	}
}

// ActionFromPath derives the audit action from a request path: the last two
// non-empty segments joined by "-" after the group prefix is stripped.
// "/api/v1/attendance/clock-in" becomes "attendance-clock-in",
// "/auth/sign-in/callback/google" becomes "callback-google".
func (r *AuditRecorder) ActionFromPath(path string) string {
	trimmed := path
	for _, prefix := range r.basePaths {
		if strings.HasPrefix(path, prefix) {
			trimmed = strings.TrimPrefix(path, prefix)
			break
		}
	}
	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(trimmed, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return ""
	}
	if len(segments) == 1 {
		return segments[0]
	}
	return strings.Join(segments[len(segments)-2:], "-")
}

// OverrideAuditSeverity sets a per-request severity that takes precedence
// over every classification map for the event this request produces.
func OverrideAuditSeverity(c *gin.Context, severity domain.AuditSeverity) {
	c.Set(severityOverrideKey, severity)
}

// BeforeDeleteUser is the before-hook for account deletion. It removes the
// user's audit rows while the user id is still resolvable; the deletion
// handler runs afterwards. A missing session is the one fatal error here.
func (r *AuditRecorder) BeforeDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		deleted, err := r.audit.DeleteAuditLogsForUser(c.Request.Context(), userID)
		if err != nil {
			// The deletion service re-runs the purge transactionally; a
			// failure here must not block the account deletion itself.
			GetLoggerFromCtx(c.Request.Context()).Error("Failed to purge audit logs before account deletion",
				slog.String("error", err.Error()))
		} else if r.verbose {
			GetLoggerFromCtx(c.Request.Context()).Info("Purged audit logs before account deletion",
				slog.Int64("rows", deleted))
		}

		c.Next()
	}
}

// Middleware is the after-hook recording one audit row per qualifying
// request. The body prefix is buffered before the handler runs so pre-auth
// descriptors can resolve a user id from it afterwards.
func (r *AuditRecorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			peeked, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBodyBytes))
			if err == nil {
				c.Set(auditBodyKey, peeked)
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(peeked), c.Request.Body))
			}
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		action := r.ActionFromPath(c.Request.URL.Path)
		if action == "" || r.ignored[action] {
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context())
		entry := domain.AuditLog{
			Action:    action,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		// Authenticated branch: the auth middleware stored the session's
		// user id in the request context.
		if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
			entry.UserID = userID
			entry.Severity = r.resolveSeverity(c, action)
			entry.Type = r.resolveType(action)
			r.persist(c, logger, entry)
			return
		}

		// Unauthenticated branch: scan the descriptor registry.
		for _, handler := range r.unauth {
			if !handler.Match(action) {
				continue
			}
			body, _ := c.Get(auditBodyKey)
			bodyBytes, _ := body.([]byte)

			userID := handler.ResolveUserID(c, bodyBytes)
			if userID == "" {
				if r.verbose {
					logger.Warn("Dropping audit event, no resolvable user id", slog.String("action", action))
				}
				return
			}

			if handler.FormatAction != nil {
				entry.Action = handler.FormatAction(action, bodyBytes)
			}
			entry.UserID = userID
			entry.Severity = handler.Severity
			if override, ok := severityOverride(c); ok {
				entry.Severity = override
			}
			entry.Type = r.resolveType(action)
			r.persist(c, logger, entry)
			return
		}

		if r.verbose {
			logger.Warn("Dropping audit event, no descriptor matched", slog.String("action", action))
		}
	}
}

func (r *AuditRecorder) resolveSeverity(c *gin.Context, action string) domain.AuditSeverity {
	if override, ok := severityOverride(c); ok {
		return override
	}
	if severity, ok := r.severityMap[action]; ok {
		return severity
	}
	return domain.SeverityUnknown
}

func (r *AuditRecorder) resolveType(action string) domain.AuditLogType {
	if t, ok := r.typeMap[action]; ok {
		return t
	}
	return domain.AuditTypeUnknown
}

func severityOverride(c *gin.Context) (domain.AuditSeverity, bool) {
	val, exists := c.Get(severityOverrideKey)
	if !exists {
		return "", false
	}
	severity, ok := val.(domain.AuditSeverity)
	return severity, ok
}

func (r *AuditRecorder) persist(c *gin.Context, logger *slog.Logger, entry domain.AuditLog) {
	if err := r.audit.RecordAuditLog(c.Request.Context(), entry); err != nil {
		logger.Error("Failed to persist audit log",
			slog.String("action", entry.Action),
			slog.String("error", err.Error()))
	}
}

// DefaultUnauthHandlers returns the built-in descriptor registry for
// sessionless flows: social sign-in callbacks, email sign-in, and OTP
// dispatch. Email-based resolvers look the user up through the user service.
func DefaultUnauthHandlers(users portssvc.UserReaderSvc) []UnauthHandler {
	resolveByEmail := func(c *gin.Context, body []byte) string {
		var payload struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(body, &payload); err != nil || payload.Email == "" {
			return ""
		}
		user, err := users.GetUserByEmail(c.Request.Context(), payload.Email)
		if err != nil {
			return ""
		}
		return user.UserID
	}

	resolveFromSession := func(c *gin.Context, _ []byte) string {
		userID, _ := GetUserIDFromContext(c)
		return userID
	}

	return []UnauthHandler{
		{
			Match:         func(action string) bool { return strings.HasPrefix(action, "callback-") },
			ResolveUserID: resolveFromSession,
			Severity:      domain.SeverityWarning,
		},
		{
			Match:         func(action string) bool { return action == "sign-in-email" },
			ResolveUserID: resolveByEmail,
			Severity:      domain.SeverityWarning,
		},
		{
			Match:         func(action string) bool { return action == "refresh-token" || action == "sign-out" },
			ResolveUserID: resolveFromSession,
			Severity:      domain.SeverityInfo,
		},
		{
			Match:         func(action string) bool { return action == "send-verification-otp" },
			ResolveUserID: resolveByEmail,
			FormatAction: func(action string, body []byte) string {
				var payload struct {
					Type string `json:"type"`
				}
				if err := json.Unmarshal(body, &payload); err != nil || payload.Type == "" {
					return action
				}
				return action + " (" + payload.Type + ")"
			},
			Severity: domain.SeverityWarning,
		},
	}
}
