package services

import (
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/platform/config"
	"github.com/tockawaffle/jelli-backend/internal/platform/notifier"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, n notifier.Notifier) *portssvc.ServiceContainer {
	if n == nil {
		n = notifier.Noop{}
	}

	container := &portssvc.ServiceContainer{}

	container.Attendance = NewAttendanceService(
		repos.AttendanceRepo,
		repos.OrganizationRepo,
		WithClockNotifier(n),
	)
	container.Reporting = NewReportingService(repos.AttendanceRepo, repos.OrganizationRepo)
	container.Audit = NewAuditService(repos.AuditLogRepo)
	container.User = NewUserService(repos.UserRepo)

	// Token and OTP services sit on top of the user service.
	container.Token = NewTokenService(cfg, container.User)
	container.OTP = NewOTPService(cfg, container.User, n)
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)

	return container
}
