package repositories

import (
	"context"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
)

// AuditLogQuery narrows and pages an audit log listing. Action takes
// precedence: when set, Type and Severity are ignored by callers building the
// query (an action implies both).
type AuditLogQuery struct {
	Action   string
	Type     string
	Severity string
	SortDesc bool
	Limit    int
	Offset   int
}

// AuditLogWriter defines write operations for audit logs.
type AuditLogWriter interface {
	// SaveAuditLog appends one audit entry. Entries are never updated.
	SaveAuditLog(ctx context.Context, entry domain.AuditLog) error

	// DeleteAuditLogsByUserID removes every entry owned by the user. Used by
	// the account-deletion cascade.
	DeleteAuditLogsByUserID(ctx context.Context, userID string) (int64, error)
}

// AuditLogReader defines read operations for audit logs. All reads are scoped
// to a single user id.
type AuditLogReader interface {
	ListAuditLogs(ctx context.Context, userID string, query AuditLogQuery) ([]domain.AuditLog, error)

	// CountAuditLogs runs an independent count over the same predicate as
	// ListAuditLogs so clients can paginate without knowing row totals.
	CountAuditLogs(ctx context.Context, userID string, query AuditLogQuery) (int64, error)
}

// AuditLogRepositoryFacade combines all audit log repository interfaces.
type AuditLogRepositoryFacade interface {
	AuditLogWriter
	AuditLogReader
}
