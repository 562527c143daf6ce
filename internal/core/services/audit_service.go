package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
)

// AuditService persists audit entries and serves the self-scoped listing.
type AuditService struct {
	auditRepo portsrepo.AuditLogRepositoryFacade
	now       func() time.Time
}

var _ portssvc.AuditSvcFacade = (*AuditService)(nil)

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditLogRepositoryFacade) *AuditService {
	return &AuditService{auditRepo: auditRepo, now: time.Now}
}

// RecordAuditLog appends one entry, filling the id and timestamp when absent.
func (s *AuditService) RecordAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.UserID == "" {
		return fmt.Errorf("audit entry requires a user id")
	}
	if entry.AuditLogID == "" {
		entry.AuditLogID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityUnknown
	}
	if entry.Type == "" {
		entry.Type = domain.AuditTypeUnknown
	}
	return s.auditRepo.SaveAuditLog(ctx, entry)
}

// DeleteAuditLogsForUser removes every entry owned by the user.
func (s *AuditService) DeleteAuditLogsForUser(ctx context.Context, userID string) (int64, error) {
	return s.auditRepo.DeleteAuditLogsByUserID(ctx, userID)
}

// ListAuditLogs returns one page of the user's own entries plus the total
// matching-row count.
func (s *AuditService) ListAuditLogs(ctx context.Context, userID string, query portsrepo.AuditLogQuery) ([]domain.AuditLog, int64, error) {
	entries, err := s.auditRepo.ListAuditLogs(ctx, userID, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.auditRepo.CountAuditLogs(ctx, userID, query)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
