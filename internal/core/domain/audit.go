package domain

import "time"

// AuditSeverity classifies how sensitive an audited action is.
type AuditSeverity string

const (
	SeverityInfo    AuditSeverity = "info"
	SeverityWarning AuditSeverity = "warning"
	SeverityError   AuditSeverity = "error"
	SeveritySevere  AuditSeverity = "severe"
	SeverityUnknown AuditSeverity = "unknown"
)

// AuditLogType categorizes the audited action.
type AuditLogType string

const (
	AuditTypeAuthentication AuditLogType = "authentication"
	AuditTypeAuthorization  AuditLogType = "authorization"
	AuditTypeAPI            AuditLogType = "api"
	AuditTypeUnknown        AuditLogType = "unknown"
)

// AuditLog is one append-only audit record, created once per qualifying
// request and never updated. Rows are bulk-deleted only when the owning user
// account is removed.
type AuditLog struct {
	AuditLogID string        `json:"auditLogID"`
	UserID     string        `json:"userID"`
	Action     string        `json:"action"`
	Timestamp  time.Time     `json:"timestamp"`
	IPAddress  string        `json:"ipAddress"`
	UserAgent  string        `json:"userAgent"`
	Severity   AuditSeverity `json:"severity"`
	Type       AuditLogType  `json:"type"`
}

// DefaultIgnoredActions lists high-frequency, low-value actions that are not
// audited unless the operator opts out of merging the default ignore list.
func DefaultIgnoredActions() []string {
	return []string{
		"get-session",
		"users-me",
		"list-sessions",
		"list-organizations",
		"get-full-organization",
		"list-members",
		"attendance-today",
		"attendance-summary",
		"audit-logs",
		"health",
	}
}

// DefaultSeverityMap maps actions to their built-in severity. Lookups missing
// here (and in any custom map) fall back to SeverityUnknown.
func DefaultSeverityMap() map[string]AuditSeverity {
	return map[string]AuditSeverity{
		"sign-in-email":          SeverityWarning,
		"sign-out":               SeverityInfo,
		"sign-up-email":          SeverityWarning,
		"callback-google":        SeverityWarning,
		"send-verification-otp":  SeverityWarning,
		"refresh-token":          SeverityInfo,
		"delete-user":            SeveritySevere,
		"change-password":        SeveritySevere,
		"attendance-clock-in":    SeverityInfo,
		"attendance-lunch-start": SeverityInfo,
		"attendance-lunch-end":   SeverityInfo,
		"attendance-clock-out":   SeverityInfo,
		"update-member":          SeverityWarning,
		"remove-member":          SeveritySevere,
	}
}

// DefaultTypeMap maps actions to their audit category; missing actions are
// AuditTypeUnknown.
func DefaultTypeMap() map[string]AuditLogType {
	return map[string]AuditLogType{
		"sign-in-email":          AuditTypeAuthentication,
		"sign-out":               AuditTypeAuthentication,
		"sign-up-email":          AuditTypeAuthentication,
		"callback-google":        AuditTypeAuthentication,
		"send-verification-otp":  AuditTypeAuthentication,
		"refresh-token":          AuditTypeAuthentication,
		"change-password":        AuditTypeAuthentication,
		"delete-user":            AuditTypeAuthorization,
		"update-member":          AuditTypeAuthorization,
		"remove-member":          AuditTypeAuthorization,
		"attendance-clock-in":    AuditTypeAPI,
		"attendance-lunch-start": AuditTypeAPI,
		"attendance-lunch-end":   AuditTypeAPI,
		"attendance-clock-out":   AuditTypeAPI,
	}
}
