package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tockawaffle/jelli-backend/cmd/docs"
	portssvc "github.com/tockawaffle/jelli-backend/internal/core/ports/services"
	"github.com/tockawaffle/jelli-backend/internal/middleware"
	"github.com/tockawaffle/jelli-backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// One audit recorder observes both the pre-auth and authenticated groups.
	recorder := middleware.NewAuditRecorder(services.Audit, middleware.AuditOptions{
		BasePaths:                  []string{"/api/v1", "/auth"},
		MergeDefaultIgnoredActions: true,
		MergeDefaultSeverityMap:    true,
		UnauthHandlers:             middleware.DefaultUnauthHandlers(services.User),
		EnableLogging:              !cfg.IsProduction,
	})

	// Health check stays outside the audit pipeline
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	// Pre-auth routes (sign-in, OTP dispatch, OAuth round trip)
	registerAuthRoutes(r, cfg, services, recorder.Middleware())

	// Authenticated API surface
	setupAPIV1Routes(r, cfg, services, recorder)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	recorder *middleware.AuditRecorder,
) {
	// Apply AuthMiddleware and the audit after-hook to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret), recorder.Middleware())

	registerAttendanceRoutes(v1, services.Attendance, services.Reporting)
	registerAuditLogRoutes(v1, services.Audit)
	registerUserRoutes(v1, services.User, recorder.BeforeDeleteUser())
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
