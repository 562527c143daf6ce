package services

import (
	"context"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
)

// AuditWriterSvc persists audit entries and handles the deletion cascade.
type AuditWriterSvc interface {
	// RecordAuditLog appends one entry. Callers treat failures as
	// best-effort; the middleware never propagates them.
	RecordAuditLog(ctx context.Context, entry domain.AuditLog) error

	// DeleteAuditLogsForUser removes every entry for the user, returning the
	// number of rows removed.
	DeleteAuditLogsForUser(ctx context.Context, userID string) (int64, error)
}

// AuditReaderSvc lists a user's own audit entries.
type AuditReaderSvc interface {
	// ListAuditLogs returns one page plus the total matching-row count from
	// an independent count query.
	ListAuditLogs(ctx context.Context, userID string, query portsrepo.AuditLogQuery) ([]domain.AuditLog, int64, error)
}

// AuditSvcFacade combines all audit service interfaces.
type AuditSvcFacade interface {
	AuditWriterSvc
	AuditReaderSvc
}
