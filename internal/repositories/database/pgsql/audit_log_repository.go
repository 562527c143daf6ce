package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	"github.com/tockawaffle/jelli-backend/internal/models"
)

type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditLogRepositoryFacade = (*PgxAuditLogRepository)(nil)

func toDomainAuditLog(m models.AuditLog) domain.AuditLog {
	return domain.AuditLog{
		AuditLogID: m.AuditLogID,
		UserID:     m.UserID,
		Action:     m.Action,
		Timestamp:  m.Timestamp,
		IPAddress:  m.IPAddress,
		UserAgent:  m.UserAgent,
		Severity:   domain.AuditSeverity(m.Severity),
		Type:       domain.AuditLogType(m.Type),
	}
}

func (r *PgxAuditLogRepository) SaveAuditLog(ctx context.Context, entry domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (audit_log_id, user_id, action, timestamp, ip_address, user_agent, severity, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.AuditLogID,
		entry.UserID,
		entry.Action,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		string(entry.Severity),
		string(entry.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit log: %w", err)
	}
	return nil
}

func (r *PgxAuditLogRepository) DeleteAuditLogsByUserID(ctx context.Context, userID string) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM audit_logs WHERE user_id = $1;`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs for user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// buildFilter renders the WHERE clause shared by ListAuditLogs and
// CountAuditLogs so both run over the identical predicate. Action implies
// type and severity, so it suppresses both.
func buildFilter(userID string, query portsrepo.AuditLogQuery) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	switch {
	case query.Action != "":
		args = append(args, query.Action)
		clauses = append(clauses, fmt.Sprintf("action = $%d", len(args)))
	default:
		if query.Type != "" {
			args = append(args, query.Type)
			clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
		}
		if query.Severity != "" {
			args = append(args, query.Severity)
			clauses = append(clauses, fmt.Sprintf("severity = $%d", len(args)))
		}
	}

	return strings.Join(clauses, " AND "), args
}

func (r *PgxAuditLogRepository) ListAuditLogs(ctx context.Context, userID string, query portsrepo.AuditLogQuery) ([]domain.AuditLog, error) {
	where, args := buildFilter(userID, query)

	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}

	args = append(args, query.Limit, query.Offset)
	sql := fmt.Sprintf(`
		SELECT audit_log_id, user_id, action, timestamp, ip_address, user_agent, severity, type
		FROM audit_logs
		WHERE %s
		ORDER BY timestamp %s
		LIMIT $%d OFFSET $%d;
	`, where, direction, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query audit logs", err)
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		var m models.AuditLog
		if err := rows.Scan(
			&m.AuditLogID,
			&m.UserID,
			&m.Action,
			&m.Timestamp,
			&m.IPAddress,
			&m.UserAgent,
			&m.Severity,
			&m.Type,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit log row", err)
		}
		result = append(result, toDomainAuditLog(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating audit log rows", err)
	}
	return result, nil
}

func (r *PgxAuditLogRepository) CountAuditLogs(ctx context.Context, userID string, query portsrepo.AuditLogQuery) (int64, error) {
	where, args := buildFilter(userID, query)

	var total int64
	sql := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs WHERE %s;`, where)
	if err := r.Pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return total, nil
}
