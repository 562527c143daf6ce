package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AttendanceRepo:   newPgxAttendanceRepository(dbPool),
		OrganizationRepo: newPgxOrganizationRepository(dbPool),
		AuditLogRepo:     newPgxAuditLogRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
	}
}
