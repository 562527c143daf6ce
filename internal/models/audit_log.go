package models

import "time"

// AuditLog is the append-only DB row produced by the audit middleware.
type AuditLog struct {
	AuditLogID string    `db:"audit_log_id"`
	UserID     string    `db:"user_id"`
	Action     string    `db:"action"`
	Timestamp  time.Time `db:"timestamp"`
	IPAddress  string    `db:"ip_address"`
	UserAgent  string    `db:"user_agent"`
	Severity   string    `db:"severity"`
	Type       string    `db:"type"`
}
